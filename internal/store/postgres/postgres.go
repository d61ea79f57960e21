// Package postgres implements catalog.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

//go:embed schema.sql
var schemaSQL string

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Migrate creates the catalog tables if they do not exist.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Store implements catalog.Store using PostgreSQL.
type Store struct {
	db DB
}

var _ catalog.Store = (*Store)(nil)

// New creates a PostgreSQL-backed store.
func New(db DB) *Store {
	return &Store{db: db}
}

const productColumns = `id, sku, name, base_price::text, category, status, created_at, updated_at`

const variantColumns = `id, product_id, sku, barcode, price_override::text, weight::text, image_url, enabled, option_values`

func (s *Store) ListProducts(ctx context.Context) ([]catalog.ProductWithVariants, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.ProductWithVariants, error) {
		p, err := scanProduct(row)
		return catalog.ProductWithVariants{Product: p, Variants: []catalog.Variant{}}, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	if len(products) == 0 {
		return products, nil
	}

	variants, err := s.loadVariants(ctx, "")
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(products))
	for i := range products {
		byID[products[i].ID] = i
	}
	for _, v := range variants {
		if i, ok := byID[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*catalog.ProductWithVariants, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %q: %w", id, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	variants, err := s.loadVariants(ctx, id)
	if err != nil {
		return nil, err
	}
	return &catalog.ProductWithVariants{Product: p, Variants: variants}, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		INSERT INTO products (id, sku, name, base_price, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)`

	_, err := s.db.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.BasePrice.String(), p.Category, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %q: %w", p.ID, catalog.ErrAlreadyExists)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		UPDATE products
		SET sku = $1, name = $2, base_price = $3::numeric, category = $4, status = $5, updated_at = $6
		WHERE id = $7`

	ct, err := s.db.Exec(ctx, query,
		p.SKU, p.Name, p.BasePrice.String(), p.Category, string(p.Status), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %q: %w", p.ID, catalog.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %q: %w", id, catalog.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateVariant(ctx context.Context, v *catalog.Variant) error {
	options, err := json.Marshal(nonNilRefs(v.OptionValues))
	if err != nil {
		return fmt.Errorf("marshal option values: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO variants (id, product_id, sku, barcode, price_override, weight, image_url, enabled, option_values)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8, $9)`

	_, err = tx.Exec(ctx, query,
		v.ID, v.ProductID, v.SKU, v.Barcode,
		decimalArg(v.PriceOverride), decimalArg(v.Weight),
		v.ImageURL, v.Enabled, options,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return fmt.Errorf("product %q: %w", v.ProductID, catalog.ErrNotFound)
		case isUniqueViolation(err):
			return fmt.Errorf("variant %q: %w", v.SKU, catalog.ErrAlreadyExists)
		}
		return fmt.Errorf("insert variant: %w", err)
	}

	if err := insertStock(ctx, tx, v); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) UpdateVariant(ctx context.Context, v *catalog.Variant) error {
	options, err := json.Marshal(nonNilRefs(v.OptionValues))
	if err != nil {
		return fmt.Errorf("marshal option values: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE variants
		SET sku = $1, barcode = $2, price_override = $3::numeric, weight = $4::numeric,
		    image_url = $5, enabled = $6, option_values = $7
		WHERE id = $8 AND product_id = $9`

	ct, err := tx.Exec(ctx, query,
		v.SKU, v.Barcode, decimalArg(v.PriceOverride), decimalArg(v.Weight),
		v.ImageURL, v.Enabled, options, v.ID, v.ProductID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("variant %q: %w", v.SKU, catalog.ErrAlreadyExists)
		}
		return fmt.Errorf("update variant: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("variant %q: %w", v.ID, catalog.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM variant_stock WHERE variant_id = $1`, v.ID); err != nil {
		return fmt.Errorf("clear stock: %w", err)
	}
	if err := insertStock(ctx, tx, v); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) DeleteVariant(ctx context.Context, productID, variantID string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM variants WHERE id = $1 AND product_id = $2`, variantID, productID)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("variant %q: %w", variantID, catalog.ErrNotFound)
	}
	return nil
}

func (s *Store) ListFacilities(ctx context.Context) ([]catalog.Facility, error) {
	rows, err := s.db.Query(ctx, `SELECT id, code, name, kind FROM facilities ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	facilities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Facility, error) {
		var f catalog.Facility
		var kind string
		err := row.Scan(&f.ID, &f.Code, &f.Name, &kind)
		f.Kind = catalog.FacilityKind(kind)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan facilities: %w", err)
	}
	return facilities, nil
}

func (s *Store) CreateFacility(ctx context.Context, f *catalog.Facility) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO facilities (id, code, name, kind) VALUES ($1, $2, $3, $4)`,
		f.ID, f.Code, f.Name, string(f.Kind),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("facility %q: %w", f.Code, catalog.ErrAlreadyExists)
		}
		return fmt.Errorf("insert facility: %w", err)
	}
	return nil
}

// loadVariants returns variants with their stock, for one product or, when
// productID is empty, for all products.
func (s *Store) loadVariants(ctx context.Context, productID string) ([]catalog.Variant, error) {
	variantSQL := `SELECT ` + variantColumns + ` FROM variants`
	stockSQL := `SELECT s.variant_id, s.facility_id, s.quantity FROM variant_stock s JOIN variants v ON v.id = s.variant_id`
	var args []any
	if productID != "" {
		variantSQL += ` WHERE product_id = $1`
		stockSQL += ` WHERE v.product_id = $1`
		args = append(args, productID)
	}
	variantSQL += ` ORDER BY seq`
	stockSQL += ` ORDER BY s.variant_id, s.facility_id`

	rows, err := s.db.Query(ctx, variantSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	variants, err := pgx.CollectRows(rows, scanVariant)
	if err != nil {
		return nil, fmt.Errorf("scan variants: %w", err)
	}
	if len(variants) == 0 {
		return variants, nil
	}

	rows, err = s.db.Query(ctx, stockSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]int, len(variants))
	for i := range variants {
		byID[variants[i].ID] = i
	}
	for rows.Next() {
		var variantID string
		var st catalog.StockAssignment
		if err := rows.Scan(&variantID, &st.FacilityID, &st.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		if i, ok := byID[variantID]; ok {
			variants[i].Stock = append(variants[i].Stock, st)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock: %w", err)
	}
	return variants, nil
}

func insertStock(ctx context.Context, tx pgx.Tx, v *catalog.Variant) error {
	for _, st := range v.Stock {
		_, err := tx.Exec(ctx,
			`INSERT INTO variant_stock (variant_id, facility_id, quantity) VALUES ($1, $2, $3)`,
			v.ID, st.FacilityID, st.Quantity,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("facility %q: %w", st.FacilityID, catalog.ErrNotFound)
			}
			return fmt.Errorf("insert stock: %w", err)
		}
	}
	return nil
}

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var p catalog.Product
	var price, status string
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &price, &p.Category, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.Status = catalog.ProductStatus(status)
	if p.BasePrice, err = decimal.NewFromString(price); err != nil {
		return p, fmt.Errorf("parse base_price %q: %w", price, err)
	}
	return p, nil
}

func scanVariant(row pgx.CollectableRow) (catalog.Variant, error) {
	var v catalog.Variant
	var price, weight *string
	var options []byte

	err := row.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Barcode, &price, &weight, &v.ImageURL, &v.Enabled, &options)
	if err != nil {
		return v, err
	}
	if v.PriceOverride, err = parseNullDecimal(price); err != nil {
		return v, fmt.Errorf("parse price_override: %w", err)
	}
	if v.Weight, err = parseNullDecimal(weight); err != nil {
		return v, fmt.Errorf("parse weight: %w", err)
	}
	if err := json.Unmarshal(options, &v.OptionValues); err != nil {
		return v, fmt.Errorf("decode option_values: %w", err)
	}
	v.OptionValues = nonNilRefs(v.OptionValues)
	return v, nil
}

func parseNullDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// decimalArg passes an optional decimal as text, nil for SQL NULL.
func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nonNilRefs(refs []catalog.OptionValueRef) []catalog.OptionValueRef {
	if refs == nil {
		return []catalog.OptionValueRef{}
	}
	return refs
}

// isUniqueViolation reports SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports SQLSTATE 23503.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

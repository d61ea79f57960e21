package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

// ListProducts returns every product with its variants.
func (s *Service) ListProducts(ctx context.Context) ([]catalog.ProductWithVariants, error) {
	return s.store.ListProducts(ctx)
}

// GetProduct returns one product with its variants.
func (s *Service) GetProduct(ctx context.Context, id string) (*catalog.ProductWithVariants, error) {
	return s.store.GetProduct(ctx, id)
}

// CreateProduct validates in and stores a new product. A missing id is
// generated and a missing status defaults to draft.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*catalog.ProductWithVariants, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &catalog.Product{
		ID:        in.ID,
		SKU:       in.SKU,
		Name:      in.Name,
		BasePrice: in.BasePrice,
		Category:  in.Category,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = catalog.StatusDraft
	}

	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &catalog.ProductWithVariants{Product: *p, Variants: []catalog.Variant{}}, nil
}

// UpdateProduct replaces the writable fields of product id. The id in the
// input is ignored.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*catalog.ProductWithVariants, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	current, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	p := current.Product
	p.SKU = in.SKU
	p.Name = in.Name
	p.BasePrice = in.BasePrice
	p.Category = in.Category
	if in.Status != "" {
		p.Status = in.Status
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	current.Product = p
	return current, nil
}

// DeleteProduct removes a product and its variants.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

// CreateVariant validates in and adds a variant to product productID.
func (s *Service) CreateVariant(ctx context.Context, productID string, in VariantInput) (*catalog.Variant, error) {
	if err := s.checkVariantInput(ctx, &in); err != nil {
		return nil, err
	}

	v := variantFromInput(productID, in)
	if v.ID == "" {
		v.ID = uuid.New().String()
	}

	if err := s.store.CreateVariant(ctx, v); err != nil {
		return nil, fmt.Errorf("create variant: %w", err)
	}
	return v, nil
}

// UpdateVariant replaces variant variantID of product productID.
func (s *Service) UpdateVariant(ctx context.Context, productID, variantID string, in VariantInput) (*catalog.Variant, error) {
	if err := s.checkVariantInput(ctx, &in); err != nil {
		return nil, err
	}

	v := variantFromInput(productID, in)
	v.ID = variantID

	if err := s.store.UpdateVariant(ctx, v); err != nil {
		return nil, fmt.Errorf("update variant: %w", err)
	}
	return v, nil
}

// DeleteVariant removes one variant.
func (s *Service) DeleteVariant(ctx context.Context, productID, variantID string) error {
	return s.store.DeleteVariant(ctx, productID, variantID)
}

// checkVariantInput validates in and verifies its stock facilities exist.
func (s *Service) checkVariantInput(ctx context.Context, in *VariantInput) error {
	if err := Validate(in); err != nil {
		return err
	}
	if len(in.Stock) == 0 {
		return nil
	}

	facilities, err := s.store.ListFacilities(ctx)
	if err != nil {
		return fmt.Errorf("list facilities: %w", err)
	}
	known := make(map[string]bool, len(facilities))
	for _, f := range facilities {
		known[f.ID] = true
	}

	verr := &ValidationError{}
	for _, st := range in.Stock {
		if !known[st.FacilityID] {
			verr.add("stock", fmt.Sprintf("facility %q does not exist", st.FacilityID))
		}
	}
	return verr.orNil()
}

// variantFromInput builds a variant, filling option names and values from
// raw "<option>-<value>" ids when the input leaves them out.
func variantFromInput(productID string, in VariantInput) *catalog.Variant {
	refs := make([]catalog.OptionValueRef, len(in.OptionValues))
	for i, ref := range in.OptionValues {
		if ref.Option == "" {
			ref = catalog.ParseOptionValueID(ref.ID)
		}
		refs[i] = ref
	}

	stock := append([]catalog.StockAssignment{}, in.Stock...)

	return &catalog.Variant{
		ID:            in.ID,
		ProductID:     productID,
		OptionValues:  refs,
		SKU:           in.SKU,
		Barcode:       in.Barcode,
		PriceOverride: in.PriceOverride,
		Weight:        in.Weight,
		ImageURL:      in.ImageURL,
		Enabled:       in.Enabled,
		Stock:         stock,
	}
}

// ListFacilities returns every facility.
func (s *Service) ListFacilities(ctx context.Context) ([]catalog.Facility, error) {
	return s.store.ListFacilities(ctx)
}

// CreateFacility validates in and stores a new facility.
func (s *Service) CreateFacility(ctx context.Context, in FacilityInput) (*catalog.Facility, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	f := &catalog.Facility{
		ID:   uuid.New().String(),
		Code: in.Code,
		Name: in.Name,
		Kind: in.Kind,
	}
	if err := s.store.CreateFacility(ctx, f); err != nil {
		return nil, fmt.Errorf("create facility: %w", err)
	}
	return f, nil
}

// Package catalog defines the product catalog domain: products, variants,
// option values, facilities and the Store boundary that persists them.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the publication state of a product.
type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
	StatusDraft    ProductStatus = "draft"
)

// Valid reports whether s is one of the known statuses.
func (s ProductStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDraft:
		return true
	}
	return false
}

// AvailabilityTier summarizes how much stock a product has.
type AvailabilityTier string

const (
	InStock    AvailabilityTier = "in_stock"
	LowStock   AvailabilityTier = "low_stock"
	OutOfStock AvailabilityTier = "out_of_stock"
)

// LowStockThreshold is the total stock at or below which a product is low on stock.
const LowStockThreshold = 10

// FacilityKind is the type of a physical stock location.
type FacilityKind string

const (
	FacilityWarehouse FacilityKind = "warehouse"
	FacilityStore     FacilityKind = "store"
)

// Product holds product-level attributes.
type Product struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
	Category  string          `json:"category,omitempty"`
	Status    ProductStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductWithVariants is a product and the variants it owns, in display order.
type ProductWithVariants struct {
	Product
	Variants []Variant `json:"variants"`
}

// VariantCount returns the number of variants.
func (p ProductWithVariants) VariantCount() int {
	return len(p.Variants)
}

// TotalStock sums stock across every variant and facility.
func (p ProductWithVariants) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.TotalStock()
	}
	return total
}

// Availability derives the tier from TotalStock.
func (p ProductWithVariants) Availability() AvailabilityTier {
	switch total := p.TotalStock(); {
	case total <= 0:
		return OutOfStock
	case total <= LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

// Options groups the option values used by the product's variants.
func (p ProductWithVariants) Options() OptionSet {
	return GroupOptions(p.Variants)
}

// FindVariantBySKU returns the variant with the given SKU, if any.
// Empty SKUs never match.
func (p ProductWithVariants) FindVariantBySKU(sku string) (Variant, bool) {
	if sku == "" {
		return Variant{}, false
	}
	for _, v := range p.Variants {
		if v.SKU == sku {
			return v, true
		}
	}
	return Variant{}, false
}

// Variant is one purchasable configuration of a product.
type Variant struct {
	ID            string            `json:"id"`
	ProductID     string            `json:"product_id"`
	OptionValues  []OptionValueRef  `json:"option_values"`
	SKU           string            `json:"sku,omitempty"`
	Barcode       string            `json:"barcode,omitempty"`
	PriceOverride *decimal.Decimal  `json:"price_override,omitempty"`
	Weight        *decimal.Decimal  `json:"weight,omitempty"`
	ImageURL      string            `json:"image_url,omitempty"`
	Enabled       bool              `json:"enabled"`
	Stock         []StockAssignment `json:"stock"`
}

// OptionValueIDs returns the raw option-value identifiers in order.
func (v Variant) OptionValueIDs() []string {
	ids := make([]string, len(v.OptionValues))
	for i, ref := range v.OptionValues {
		ids[i] = ref.ID
	}
	return ids
}

// TotalStock sums the quantities across facilities.
func (v Variant) TotalStock() int {
	total := 0
	for _, s := range v.Stock {
		total += s.Quantity
	}
	return total
}

// StockAt returns the quantity assigned to the facility, 0 when unassigned.
func (v Variant) StockAt(facilityID string) int {
	for _, s := range v.Stock {
		if s.FacilityID == facilityID {
			return s.Quantity
		}
	}
	return 0
}

// StockAssignment is the quantity of a variant held at one facility.
type StockAssignment struct {
	FacilityID string `json:"facility_id"`
	Quantity   int    `json:"quantity"`
}

// Facility is a warehouse or store holding stock.
type Facility struct {
	ID   string       `json:"id"`
	Code string       `json:"code"`
	Name string       `json:"name"`
	Kind FacilityKind `json:"kind"`
}

// AllVariants flattens the variants of every product, preserving order.
func AllVariants(products []ProductWithVariants) []Variant {
	var out []Variant
	for _, p := range products {
		out = append(out, p.Variants...)
	}
	return out
}

package catalog

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a product, variant or facility does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique identifier (id, SKU, facility code) is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalid is returned when an entity fails validation.
	ErrInvalid = errors.New("invalid")
)

// Store persists the catalog. Imports and exports work on snapshots returned
// by the List methods; nothing in the CSV layer holds on to store state.
type Store interface {
	ListProducts(ctx context.Context) ([]ProductWithVariants, error)
	GetProduct(ctx context.Context, id string) (*ProductWithVariants, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	// DeleteProduct removes the product and every variant it owns.
	DeleteProduct(ctx context.Context, id string) error

	// CreateVariant fails with ErrNotFound if the owning product is missing and
	// with ErrAlreadyExists if the SKU is already used within that product.
	CreateVariant(ctx context.Context, v *Variant) error
	UpdateVariant(ctx context.Context, v *Variant) error
	DeleteVariant(ctx context.Context, productID, variantID string) error

	ListFacilities(ctx context.Context) ([]Facility, error)
	CreateFacility(ctx context.Context, f *Facility) error
}

// Package memory provides an in-process catalog.Store. Products, variants
// and facilities keep insertion order so fixtures are deterministic.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

// Store is a mutex-guarded catalog.Store. Values are copied in and out, so
// callers never share memory with the store.
type Store struct {
	mu         sync.RWMutex
	products   []*catalog.ProductWithVariants
	facilities []catalog.Facility
}

var _ catalog.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Seed creates a store holding copies of products and facilities.
func Seed(products []catalog.ProductWithVariants, facilities []catalog.Facility) *Store {
	s := New()
	for i := range products {
		cp := cloneProduct(&products[i])
		s.products = append(s.products, cp)
	}
	s.facilities = append(s.facilities, facilities...)
	return s
}

func (s *Store) ListProducts(_ context.Context) ([]catalog.ProductWithVariants, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.ProductWithVariants, len(s.products))
	for i, p := range s.products {
		out[i] = *cloneProduct(p)
	}
	return out, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*catalog.ProductWithVariants, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, _ := s.find(id)
	if p == nil {
		return nil, fmt.Errorf("product %q: %w", id, catalog.ErrNotFound)
	}
	return cloneProduct(p), nil
}

func (s *Store) CreateProduct(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, _ := s.find(p.ID); existing != nil {
		return fmt.Errorf("product %q: %w", p.ID, catalog.ErrAlreadyExists)
	}
	s.products = append(s.products, &catalog.ProductWithVariants{Product: *p, Variants: []catalog.Variant{}})
	return nil
}

func (s *Store) UpdateProduct(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, _ := s.find(p.ID)
	if existing == nil {
		return fmt.Errorf("product %q: %w", p.ID, catalog.ErrNotFound)
	}
	existing.Product = *p
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, i := s.find(id)
	if i < 0 {
		return fmt.Errorf("product %q: %w", id, catalog.ErrNotFound)
	}
	s.products = slices.Delete(s.products, i, i+1)
	return nil
}

func (s *Store) CreateVariant(_ context.Context, v *catalog.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _ := s.find(v.ProductID)
	if p == nil {
		return fmt.Errorf("product %q: %w", v.ProductID, catalog.ErrNotFound)
	}
	for _, existing := range p.Variants {
		if existing.ID == v.ID {
			return fmt.Errorf("variant %q: %w", v.ID, catalog.ErrAlreadyExists)
		}
		if v.SKU != "" && existing.SKU == v.SKU {
			return fmt.Errorf("variant sku %q: %w", v.SKU, catalog.ErrAlreadyExists)
		}
	}
	p.Variants = append(p.Variants, cloneVariant(*v))
	return nil
}

func (s *Store) UpdateVariant(_ context.Context, v *catalog.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _ := s.find(v.ProductID)
	if p == nil {
		return fmt.Errorf("product %q: %w", v.ProductID, catalog.ErrNotFound)
	}

	idx := -1
	for i, existing := range p.Variants {
		if existing.ID == v.ID {
			idx = i
			continue
		}
		if v.SKU != "" && existing.SKU == v.SKU {
			return fmt.Errorf("variant sku %q: %w", v.SKU, catalog.ErrAlreadyExists)
		}
	}
	if idx < 0 {
		return fmt.Errorf("variant %q: %w", v.ID, catalog.ErrNotFound)
	}
	p.Variants[idx] = cloneVariant(*v)
	return nil
}

func (s *Store) DeleteVariant(_ context.Context, productID, variantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _ := s.find(productID)
	if p == nil {
		return fmt.Errorf("product %q: %w", productID, catalog.ErrNotFound)
	}
	i := slices.IndexFunc(p.Variants, func(v catalog.Variant) bool { return v.ID == variantID })
	if i < 0 {
		return fmt.Errorf("variant %q: %w", variantID, catalog.ErrNotFound)
	}
	p.Variants = slices.Delete(p.Variants, i, i+1)
	return nil
}

func (s *Store) ListFacilities(_ context.Context) ([]catalog.Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.facilities), nil
}

func (s *Store) CreateFacility(_ context.Context, f *catalog.Facility) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.facilities {
		if existing.ID == f.ID || existing.Code == f.Code {
			return fmt.Errorf("facility %q: %w", f.Code, catalog.ErrAlreadyExists)
		}
	}
	s.facilities = append(s.facilities, *f)
	return nil
}

// find returns the product and its index, or nil and -1. Caller holds mu.
func (s *Store) find(id string) (*catalog.ProductWithVariants, int) {
	for i, p := range s.products {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func cloneProduct(p *catalog.ProductWithVariants) *catalog.ProductWithVariants {
	cp := &catalog.ProductWithVariants{Product: p.Product, Variants: make([]catalog.Variant, len(p.Variants))}
	for i, v := range p.Variants {
		cp.Variants[i] = cloneVariant(v)
	}
	return cp
}

func cloneVariant(v catalog.Variant) catalog.Variant {
	v.OptionValues = slices.Clone(v.OptionValues)
	v.Stock = slices.Clone(v.Stock)
	return v
}

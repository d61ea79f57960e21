package core

// validation.go checks catalog CRUD input before it reaches the store.
//
// Struct rules live in validate tags and are enforced by go-playground
// validator. Decimal and nested quantity rules the tags cannot express are
// checked by hand and reported through the same ValidationError.

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ProductInput is the writable part of a product.
type ProductInput struct {
	ID        string                `json:"id" validate:"omitempty,max=64"`
	SKU       string                `json:"sku" validate:"required,max=64"`
	Name      string                `json:"name" validate:"required,max=255"`
	BasePrice decimal.Decimal       `json:"base_price"`
	Category  string                `json:"category" validate:"max=128"`
	Status    catalog.ProductStatus `json:"status" validate:"omitempty,oneof=active inactive draft"`
}

// VariantInput is the writable part of a variant.
type VariantInput struct {
	ID            string                    `json:"id" validate:"omitempty,max=64"`
	OptionValues  []catalog.OptionValueRef  `json:"option_values"`
	SKU           string                    `json:"sku" validate:"max=64"`
	Barcode       string                    `json:"barcode" validate:"max=64"`
	PriceOverride *decimal.Decimal          `json:"price_override"`
	Weight        *decimal.Decimal          `json:"weight"`
	ImageURL      string                    `json:"image_url" validate:"omitempty,url"`
	Enabled       bool                      `json:"enabled"`
	Stock         []catalog.StockAssignment `json:"stock"`
}

// FacilityInput is the writable part of a facility.
type FacilityInput struct {
	Code string               `json:"code" validate:"required,max=32"`
	Name string               `json:"name" validate:"required,max=255"`
	Kind catalog.FacilityKind `json:"kind" validate:"required,oneof=warehouse store"`
}

// ValidationError lists invalid fields. It unwraps to catalog.ErrInvalid.
type ValidationError struct {
	fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, len(names))
	for i, name := range names {
		msgs[i] = fmt.Sprintf("field '%s' %s", name, e.fields[name])
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return catalog.ErrInvalid
}

// Fields returns field names mapped to their messages.
func (e *ValidationError) Fields() map[string]string {
	return e.fields
}

func (e *ValidationError) add(field, msg string) {
	if e.fields == nil {
		e.fields = make(map[string]string)
	}
	if _, exists := e.fields[field]; !exists {
		e.fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.fields) == 0 {
		return nil
	}
	return e
}

// Validate checks a ProductInput, VariantInput or FacilityInput.
func Validate(in any) error {
	verr := &ValidationError{}

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			verr.add(jsonFieldName(fe), msgForTag(fe))
		}
	}

	switch v := in.(type) {
	case ProductInput:
		checkNonNegative(verr, "base_price", &v.BasePrice)
	case *ProductInput:
		checkNonNegative(verr, "base_price", &v.BasePrice)
	case VariantInput:
		checkVariant(verr, &v)
	case *VariantInput:
		checkVariant(verr, v)
	}

	return verr.orNil()
}

func checkVariant(verr *ValidationError, v *VariantInput) {
	checkNonNegative(verr, "price_override", v.PriceOverride)
	checkNonNegative(verr, "weight", v.Weight)

	seen := make(map[string]bool, len(v.Stock))
	for _, s := range v.Stock {
		if s.FacilityID == "" {
			verr.add("stock", "facility_id is required")
		}
		if s.Quantity < 0 {
			verr.add("stock", "quantity must be greater than or equal to 0")
		}
		if seen[s.FacilityID] {
			verr.add("stock", fmt.Sprintf("facility %q listed twice", s.FacilityID))
		}
		seen[s.FacilityID] = true
	}

	for _, ref := range v.OptionValues {
		if ref.ID == "" {
			verr.add("option_values", "id is required")
		}
	}
}

func checkNonNegative(verr *ValidationError, field string, d *decimal.Decimal) {
	if d != nil && d.IsNegative() {
		verr.add(field, "must be greater than or equal to 0")
	}
}

// jsonFieldName converts a validator namespace field to its JSON name.
func jsonFieldName(fe validator.FieldError) string {
	switch name := fe.Field(); name {
	case "SKU":
		return "sku"
	case "ID":
		return "id"
	case "ImageURL":
		return "image_url"
	default:
		return toSnakeCase(name)
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

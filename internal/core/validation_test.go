package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

func TestValidate_Product(t *testing.T) {
	tests := []struct {
		name       string
		in         ProductInput
		wantFields []string
	}{
		{
			name: "valid",
			in:   ProductInput{SKU: "TEE", Name: "T-Shirt", BasePrice: decimal.RequireFromString("19.99"), Status: catalog.StatusActive},
		},
		{
			name: "empty status allowed",
			in:   ProductInput{SKU: "TEE", Name: "T-Shirt"},
		},
		{
			name:       "missing name and sku",
			in:         ProductInput{},
			wantFields: []string{"name", "sku"},
		},
		{
			name:       "bad status",
			in:         ProductInput{SKU: "TEE", Name: "T-Shirt", Status: "archived"},
			wantFields: []string{"status"},
		},
		{
			name:       "negative price",
			in:         ProductInput{SKU: "TEE", Name: "T-Shirt", BasePrice: decimal.NewFromInt(-1)},
			wantFields: []string{"base_price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if !errors.Is(err, catalog.ErrInvalid) {
				t.Error("ValidationError does not unwrap to catalog.ErrInvalid")
			}
			for _, f := range tt.wantFields {
				if _, ok := verr.Fields()[f]; !ok {
					t.Errorf("missing field %q in %v", f, verr.Fields())
				}
			}
			if len(verr.Fields()) != len(tt.wantFields) {
				t.Errorf("Fields() = %v, want exactly %v", verr.Fields(), tt.wantFields)
			}
		})
	}
}

func TestValidate_Variant(t *testing.T) {
	neg := decimal.NewFromInt(-5)

	tests := []struct {
		name      string
		in        VariantInput
		wantField string
	}{
		{"valid", VariantInput{SKU: "TEE-R", ImageURL: "https://cdn.example.com/r.png"}, ""},
		{"bad url", VariantInput{ImageURL: "not a url"}, "image_url"},
		{"negative weight", VariantInput{Weight: &neg}, "weight"},
		{"negative stock", VariantInput{Stock: []catalog.StockAssignment{{FacilityID: "f1", Quantity: -1}}}, "stock"},
		{"duplicate facility", VariantInput{Stock: []catalog.StockAssignment{{FacilityID: "f1"}, {FacilityID: "f1"}}}, "stock"},
		{"empty option id", VariantInput{OptionValues: []catalog.OptionValueRef{{Option: "color"}}}, "option_values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if _, ok := verr.Fields()[tt.wantField]; !ok {
				t.Errorf("Fields() = %v, want %q", verr.Fields(), tt.wantField)
			}
		})
	}
}

func TestValidate_Facility(t *testing.T) {
	if err := Validate(FacilityInput{Code: "WH1", Name: "Main", Kind: catalog.FacilityWarehouse}); err != nil {
		t.Errorf("Validate(valid facility) = %v", err)
	}
	err := Validate(FacilityInput{Code: "WH1", Name: "Main", Kind: "depot"})
	if !errors.Is(err, catalog.ErrInvalid) {
		t.Errorf("Validate(bad kind) = %v, want ErrInvalid", err)
	}
}

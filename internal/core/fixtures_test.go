package core

import (
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

func refs(ids ...string) []catalog.OptionValueRef {
	out := make([]catalog.OptionValueRef, len(ids))
	for i, id := range ids {
		out[i] = catalog.ParseOptionValueID(id)
	}
	return out
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// testProducts returns a t-shirt with color and size options and a cap with
// a material option.
func testProducts() []catalog.ProductWithVariants {
	return []catalog.ProductWithVariants{
		{
			Product: catalog.Product{
				ID:        "p1",
				SKU:       "TEE",
				Name:      "T-Shirt",
				BasePrice: decimal.RequireFromString("19.99"),
				Status:    catalog.StatusActive,
			},
			Variants: []catalog.Variant{
				{
					ID:            "v1",
					ProductID:     "p1",
					SKU:           "TEE-RED-M",
					OptionValues:  refs("color-red", "size-m"),
					PriceOverride: dec("21.5"),
					Enabled:       true,
					Stock:         []catalog.StockAssignment{{FacilityID: "f1", Quantity: 4}, {FacilityID: "f2", Quantity: 1}},
				},
				{
					ID:           "v2",
					ProductID:    "p1",
					SKU:          "TEE-BLUE-L",
					Barcode:      "0001",
					OptionValues: refs("color-blue", "size-l"),
					Weight:       dec("0.25"),
					Stock:        []catalog.StockAssignment{{FacilityID: "f1", Quantity: 2}},
				},
			},
		},
		{
			Product: catalog.Product{
				ID:        "p2",
				SKU:       "CAP",
				Name:      "Cap, wool",
				BasePrice: decimal.RequireFromString("12"),
				Status:    catalog.StatusDraft,
			},
			Variants: []catalog.Variant{
				{
					ID:           "v3",
					ProductID:    "p2",
					SKU:          "CAP-WOOL",
					OptionValues: refs("material-wool"),
					Enabled:      true,
				},
			},
		},
	}
}

func testFacilities() []catalog.Facility {
	return []catalog.Facility{
		{ID: "f1", Code: "WH1", Name: "Main warehouse", Kind: catalog.FacilityWarehouse},
		{ID: "f2", Code: "ST1", Name: "Downtown store", Kind: catalog.FacilityStore},
	}
}

package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

// benchCatalog builds n products with four color/size variants each.
func benchCatalog(n int) ([]catalog.ProductWithVariants, []catalog.Facility) {
	facilities := []catalog.Facility{
		{ID: "f1", Code: "WH1", Kind: catalog.FacilityWarehouse},
		{ID: "f2", Code: "ST1", Kind: catalog.FacilityStore},
	}
	colors := []string{"red", "blue"}
	sizes := []string{"s", "m"}

	products := make([]catalog.ProductWithVariants, n)
	for i := range products {
		id := fmt.Sprintf("p%d", i)
		p := catalog.ProductWithVariants{
			Product: catalog.Product{ID: id, SKU: "SKU" + id, Name: "Product " + id, BasePrice: decimal.NewFromInt(int64(i))},
		}
		for _, c := range colors {
			for _, s := range sizes {
				p.Variants = append(p.Variants, catalog.Variant{
					ID:           fmt.Sprintf("%s-%s-%s", id, c, s),
					ProductID:    id,
					SKU:          fmt.Sprintf("%s-%s-%s", strings.ToUpper(id), c, s),
					OptionValues: refs("color-"+c, "size-"+s),
					Enabled:      true,
					Stock:        []catalog.StockAssignment{{FacilityID: "f1", Quantity: i % 7}},
				})
			}
		}
		products[i] = p
	}
	return products, facilities
}

func exportString(b *testing.B, fn func(io.Writer) error) string {
	b.Helper()
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		b.Fatal(err)
	}
	return buf.String()
}

// BenchmarkParseDecimal covers the money formats seen in price columns.
func BenchmarkParseDecimal(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"$1,234.56",
		"(123.45)",
		"  999.99  ",
		"€1234.56",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			parseDecimal(tc)
		}
	}
}

func BenchmarkParseOptionIDs(b *testing.B) {
	for i := 0; i < b.N; i++ {
		parseOptionIDs(`["color-red","size-m","material-wool"]`)
	}
}

func BenchmarkCleanCell(b *testing.B) {
	testCases := []string{"simple", "  padded  ", "=\"00123\"", ""}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			cleanCell(tc)
		}
	}
}

func BenchmarkSplitLines_Large(b *testing.B) {
	products, _ := benchCatalog(2000)
	data := exportString(b, func(w io.Writer) error { return ExportVariants(w, products) })

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		splitLines(data)
	}
}

func BenchmarkImportVariants(b *testing.B) {
	products, _ := benchCatalog(500)
	data := exportString(b, func(w io.Writer) error { return ExportVariants(w, products) })

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ImportVariants(data, products)
	}
}

func BenchmarkImportProducts_Conflicts(b *testing.B) {
	products, _ := benchCatalog(500)
	var sb strings.Builder
	sb.WriteString(productsHeader + "\n")
	for _, p := range products {
		fmt.Fprintf(&sb, "%s,%s,1.00,color,red|green\n", p.ID, p.Name)
	}
	data := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := ImportProducts(data, products)
		if len(res.Conflicts) != len(products) {
			b.Fatalf("conflicts = %d, want %d", len(res.Conflicts), len(products))
		}
	}
}

func BenchmarkImportInventoryMatrix(b *testing.B) {
	products, facilities := benchCatalog(500)
	data := exportString(b, func(w io.Writer) error { return ExportInventoryMatrix(w, products, facilities) })
	variants := catalog.AllVariants(products)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ImportInventoryMatrix(data, facilities, variants)
	}
}

func BenchmarkExportProducts(b *testing.B) {
	products, _ := benchCatalog(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ExportProducts(io.Discard, products)
	}
}

func BenchmarkReadUpload(b *testing.B) {
	products, _ := benchCatalog(1000)
	data := "\xEF\xBB\xBF" + exportString(b, func(w io.Writer) error { return ExportVariants(w, products) })

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadUpload(strings.NewReader(data), DefaultMaxFileSize); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseDecimalParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			parseDecimal("$1,234,567.89")
		}
	})
}

func BenchmarkImportAllocs(b *testing.B) {
	products, _ := benchCatalog(50)
	data := exportString(b, func(w io.Writer) error { return ExportVariants(w, products) })

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ImportVariants(data, products)
	}
}

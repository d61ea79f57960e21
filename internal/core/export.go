package core

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

// OptionValueSeparator joins the values of one option inside an
// option_values_<X> cell.
const OptionValueSeparator = "|"

const (
	optionNamePrefix   = "option_name_"
	optionValuesPrefix = "option_values_"
)

var (
	productBaseHeader = []string{"product_id", "product_name", "base_price"}

	variantHeader = []string{
		"variant_id", "product_id", "sku", "barcode", "enabled",
		"price_override", "weight", "image_url", "option_values", "inventory_global",
	}

	inventoryHeader = []string{"facility_code", "variant_sku", "qty", "product_id"}
)

// ExportProducts writes one row per product. Option columns are the union of
// option names across every product, sorted, each as an option_name_<X> and
// option_values_<X> pair. Products that lack an option leave both cells empty.
// A "|" or backslash inside a value is escaped with a backslash.
func ExportProducts(w io.Writer, products []catalog.ProductWithVariants) error {
	options := make([]catalog.OptionSet, len(products))
	seen := make(map[string]bool)
	var names []string
	for i, p := range products {
		options[i] = p.Options()
		for name := range options[i] {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	header := append([]string{}, productBaseHeader...)
	for _, name := range names {
		header = append(header, optionNamePrefix+name, optionValuesPrefix+name)
	}

	cw := newCSVWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write products header: %w", err)
	}

	for i, p := range products {
		row := []string{p.ID, p.Name, p.BasePrice.String()}
		for _, name := range names {
			values, ok := options[i][name]
			if !ok {
				row = append(row, "", "")
				continue
			}
			row = append(row, name, joinOptionValues(values))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write product %s: %w", p.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportVariants writes one row per variant with option_values as a JSON
// array of raw option-value ids and inventory_global as total stock.
func ExportVariants(w io.Writer, products []catalog.ProductWithVariants) error {
	cw := newCSVWriter(w)
	if err := cw.Write(variantHeader); err != nil {
		return fmt.Errorf("write variants header: %w", err)
	}

	for _, p := range products {
		for _, v := range p.Variants {
			row := []string{
				v.ID,
				p.ID,
				v.SKU,
				v.Barcode,
				strconv.FormatBool(v.Enabled),
				formatDecimal(v.PriceOverride),
				formatDecimal(v.Weight),
				v.ImageURL,
				formatOptionIDs(v.OptionValueIDs()),
				strconv.Itoa(v.TotalStock()),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write variant %s: %w", v.ID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportInventoryMatrix writes one row for every product, variant and
// facility combination with the stock held there, 0 when unassigned.
func ExportInventoryMatrix(w io.Writer, products []catalog.ProductWithVariants, facilities []catalog.Facility) error {
	cw := newCSVWriter(w)
	if err := cw.Write(inventoryHeader); err != nil {
		return fmt.Errorf("write inventory header: %w", err)
	}

	for _, p := range products {
		for _, v := range p.Variants {
			for _, f := range facilities {
				row := []string{f.Code, v.SKU, strconv.Itoa(v.StockAt(f.ID)), p.ID}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("write inventory %s/%s: %w", f.Code, v.SKU, err)
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

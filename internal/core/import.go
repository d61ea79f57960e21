package core

// import.go validates CSV text against a catalog snapshot.
//
// Importers never touch the store. Each data row is checked on its own and
// ends up either processed (possibly with a warning or a conflict) or skipped
// with exactly one error. A bad row never stops the rows after it.

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

// Positions of the variants columns.
const (
	colVariantID = iota
	colVariantProductID
	colVariantSKU
	colVariantBarcode
	colVariantEnabled
	colVariantPrice
	colVariantWeight
	colVariantImageURL
	colVariantOptionValues
	colVariantInventory
)

// Positions of the inventory columns.
const (
	colInventoryFacility = iota
	colInventorySKU
	colInventoryQty
)

// minPositionalColumns is the fewest cells a variants or inventory row may have.
const minPositionalColumns = 3

// ImportProducts checks product rows against existing products. Rows for
// known products whose option columns disagree with the product's current
// options raise a product_options conflict; unknown product ids are new
// products and never conflict.
func ImportProducts(csvData string, existing []catalog.ProductWithVariants) ImportResult {
	res := newResult(KindProducts)

	lines := splitLines(csvData)
	if len(lines) == 0 {
		return *res
	}

	header, err := parseLine(lines[0].Text)
	if err != nil {
		res.Errors = append(res.Errors, ImportError{Row: lines[0].Number, Kind: ErrorParse, Message: "invalid header: " + err.Error()})
		return *res
	}
	idx := MakeHeaderIndex(header)
	pairs := optionColumnPairs(header)

	byID := make(map[string]catalog.ProductWithVariants, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
	}

	for _, line := range lines[1:] {
		row, err := parseLine(line.Text)
		if err != nil {
			res.skip(ImportError{Row: line.Number, Kind: ErrorParse, Message: err.Error()})
			continue
		}

		productID := idx.cell(row, "product_id")
		if productID == "" {
			res.skip(ImportError{Row: line.Number, Field: "product_id", Kind: ErrorValidation, Message: "required"})
			continue
		}

		if _, err := parseDecimal(idx.cell(row, "base_price")); err != nil {
			res.skip(ImportError{Row: line.Number, Field: "base_price", Kind: ErrorParse, Message: err.Error()})
			continue
		}

		if product, ok := byID[productID]; ok {
			current := product.Options()
			incoming := rowOptions(row, pairs)
			if differing := detectOptionConflict(current, incoming); len(differing) > 0 {
				res.addOptionConflict(line.Number, productID, current, incoming, differing)
			}
		}

		res.ProcessedRows++
	}

	return *res
}

// optionColumn locates one option_name_<X>/option_values_<X> header pair.
type optionColumn struct {
	suffix    string
	namePos   int
	valuesPos int
}

// optionColumnPairs pairs option_name_<X> headers with their option_values_<X>
// partner. A name header without a values header is ignored.
func optionColumnPairs(header []string) []optionColumn {
	values := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(cleanCell(h))
		if suffix, ok := strings.CutPrefix(h, optionValuesPrefix); ok {
			if _, dup := values[suffix]; !dup {
				values[suffix] = i
			}
		}
	}

	var pairs []optionColumn
	for i, h := range header {
		h = strings.ToLower(cleanCell(h))
		suffix, ok := strings.CutPrefix(h, optionNamePrefix)
		if !ok {
			continue
		}
		if vp, ok := values[suffix]; ok {
			pairs = append(pairs, optionColumn{suffix: suffix, namePos: i, valuesPos: vp})
		}
	}
	return pairs
}

// rowOptions builds the option set named by a product row. Pairs with an
// empty name cell or no values are not applicable to the row.
func rowOptions(row []string, pairs []optionColumn) catalog.OptionSet {
	set := make(catalog.OptionSet)
	for _, p := range pairs {
		name := cellAt(row, p.namePos)
		if name == "" {
			continue
		}
		for _, v := range splitOptionValues(cellAt(row, p.valuesPos)) {
			set.Add(name, v)
		}
	}
	return set
}

// ImportVariants checks variant rows. A row must name an existing product;
// a SKU already used under that product is reported as an update.
func ImportVariants(csvData string, existing []catalog.ProductWithVariants) ImportResult {
	res := newResult(KindVariants)

	byID := make(map[string]catalog.ProductWithVariants, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
	}

	for _, line := range dataLines(csvData) {
		row, err := parsePositional(line)
		if err != nil {
			res.skip(*err)
			continue
		}

		productID := cellAt(row, colVariantProductID)
		product, ok := byID[productID]
		if !ok {
			res.skip(ImportError{
				Row:     line.Number,
				Field:   "product_id",
				Kind:    ErrorReference,
				Message: fmt.Sprintf("product %q not found", productID),
			})
			continue
		}

		if err := checkVariantFields(line.Number, row); err != nil {
			res.skip(*err)
			continue
		}

		sku := cellAt(row, colVariantSKU)
		if _, exists := product.FindVariantBySKU(sku); exists {
			res.warn(line.Number, "variant with SKU %q already exists on product %q and will update", sku, productID)
		}

		res.ProcessedRows++
	}

	return *res
}

// checkVariantFields validates the typed optional cells of a variant row.
func checkVariantFields(rowNum int, row []string) *ImportError {
	fail := func(field string, err error) *ImportError {
		return &ImportError{Row: rowNum, Field: field, Kind: ErrorParse, Message: err.Error()}
	}

	if _, err := parseBool(cellAt(row, colVariantEnabled)); err != nil {
		return fail("enabled", err)
	}
	if _, err := parseDecimal(cellAt(row, colVariantPrice)); err != nil {
		return fail("price_override", err)
	}
	if _, err := parseDecimal(cellAt(row, colVariantWeight)); err != nil {
		return fail("weight", err)
	}
	if _, err := parseOptionIDs(cellAt(row, colVariantOptionValues)); err != nil {
		return fail("option_values", err)
	}
	if inv := cellAt(row, colVariantInventory); inv != "" {
		if _, ok := parseQuantity(inv); !ok {
			return fail("inventory_global", fmt.Errorf("must be a non-negative integer, got %q", inv))
		}
	}
	return nil
}

// ImportInventoryMatrix checks stock rows against known facilities and
// variants. Facility, SKU and quantity are checked in that order and the
// first failure skips the row.
func ImportInventoryMatrix(csvData string, facilities []catalog.Facility, variants []catalog.Variant) ImportResult {
	res := newResult(KindInventory)

	facilityCodes := make(map[string]bool, len(facilities))
	for _, f := range facilities {
		facilityCodes[f.Code] = true
	}
	skus := make(map[string]bool, len(variants))
	for _, v := range variants {
		if v.SKU != "" {
			skus[v.SKU] = true
		}
	}

	for _, line := range dataLines(csvData) {
		row, perr := parsePositional(line)
		if perr != nil {
			res.skip(*perr)
			continue
		}

		code := cellAt(row, colInventoryFacility)
		if !facilityCodes[code] {
			res.skip(ImportError{
				Row:     line.Number,
				Field:   "facility_code",
				Kind:    ErrorReference,
				Message: fmt.Sprintf("facility %q not found", code),
			})
			continue
		}

		sku := cellAt(row, colInventorySKU)
		if !skus[sku] {
			res.skip(ImportError{
				Row:     line.Number,
				Field:   "variant_sku",
				Kind:    ErrorReference,
				Message: fmt.Sprintf("variant with SKU %q not found", sku),
			})
			continue
		}

		qty := cellAt(row, colInventoryQty)
		if _, ok := parseQuantity(qty); !ok {
			res.skip(ImportError{
				Row:     line.Number,
				Field:   "qty",
				Kind:    ErrorValidation,
				Message: fmt.Sprintf("must be a non-negative integer, got %q", qty),
			})
			continue
		}

		res.ProcessedRows++
	}

	return *res
}

// dataLines returns every non-blank line after the header.
func dataLines(csvData string) []csvLine {
	lines := splitLines(csvData)
	if len(lines) <= 1 {
		return nil
	}
	return lines[1:]
}

// parsePositional tokenizes a positional row and checks its width.
func parsePositional(line csvLine) ([]string, *ImportError) {
	row, err := parseLine(line.Text)
	if err != nil {
		return nil, &ImportError{Row: line.Number, Kind: ErrorParse, Message: err.Error()}
	}
	if len(row) < minPositionalColumns {
		return nil, &ImportError{
			Row:     line.Number,
			Kind:    ErrorParse,
			Message: fmt.Sprintf("expected at least %d columns, got %d", minPositionalColumns, len(row)),
		}
	}
	return row, nil
}

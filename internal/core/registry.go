package core

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

// ErrUnsupportedKind is returned for an import or export kind that is not registered.
// It is the only error that aborts an import before any row is read.
var ErrUnsupportedKind = errors.New("unsupported import kind")

// Snapshot is the catalog state an import is validated against.
type Snapshot struct {
	Products   []catalog.ProductWithVariants
	Facilities []catalog.Facility
}

// KindInfo describes one CSV shape for listings.
type KindInfo struct {
	Kind    ImportKind `json:"kind"`
	Label   string     `json:"label"`
	Columns []string   `json:"columns"`
}

// KindDefinition binds a kind to its importer and exporter.
type KindDefinition struct {
	Info   KindInfo
	Import func(csvData string, snap Snapshot) ImportResult
	Export func(w io.Writer, snap Snapshot) error
}

var registry = map[ImportKind]KindDefinition{
	KindProducts: {
		Info: KindInfo{
			Kind:    KindProducts,
			Label:   "Products",
			Columns: append(append([]string{}, productBaseHeader...), optionNamePrefix+"<X>", optionValuesPrefix+"<X>"),
		},
		Import: func(csvData string, snap Snapshot) ImportResult {
			return ImportProducts(csvData, snap.Products)
		},
		Export: func(w io.Writer, snap Snapshot) error {
			return ExportProducts(w, snap.Products)
		},
	},
	KindVariants: {
		Info: KindInfo{Kind: KindVariants, Label: "Variants", Columns: variantHeader},
		Import: func(csvData string, snap Snapshot) ImportResult {
			return ImportVariants(csvData, snap.Products)
		},
		Export: func(w io.Writer, snap Snapshot) error {
			return ExportVariants(w, snap.Products)
		},
	},
	KindInventory: {
		Info: KindInfo{Kind: KindInventory, Label: "Inventory matrix", Columns: inventoryHeader},
		Import: func(csvData string, snap Snapshot) ImportResult {
			return ImportInventoryMatrix(csvData, snap.Facilities, catalog.AllVariants(snap.Products))
		},
		Export: func(w io.Writer, snap Snapshot) error {
			return ExportInventoryMatrix(w, snap.Products, snap.Facilities)
		},
	},
}

// ParseKind normalizes s and returns the matching kind.
func ParseKind(s string) (ImportKind, error) {
	kind := ImportKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
	return kind, nil
}

// Get returns the definition of kind.
func Get(kind ImportKind) (KindDefinition, error) {
	def, ok := registry[kind]
	if !ok {
		return KindDefinition{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	return def, nil
}

// All returns every kind, sorted by kind name.
func All() []KindInfo {
	result := make([]KindInfo, 0, len(registry))
	for _, def := range registry {
		result = append(result, def.Info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})
	return result
}

// RunImport validates csvData as kind against snap.
func RunImport(kind ImportKind, csvData string, snap Snapshot) (ImportResult, error) {
	def, err := Get(kind)
	if err != nil {
		return ImportResult{}, err
	}
	return def.Import(csvData, snap), nil
}

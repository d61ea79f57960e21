package core

import (
	"fmt"
	"reflect"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

// conflictID builds the stable identifier of a conflict from its type, the
// product it concerns and the first row that raised it.
func conflictID(t ConflictType, productID string, firstRow int) string {
	return fmt.Sprintf("%s:%s:%d", t, productID, firstRow)
}

// detectOptionConflict compares a product's current options with the options
// named by an incoming row. It returns the differing option names, or nil when
// every option present on both sides has the same value set.
func detectOptionConflict(existing, incoming catalog.OptionSet) []string {
	if len(existing) == 0 || len(incoming) == 0 {
		return nil
	}
	return existing.Diff(incoming)
}

// addOptionConflict records a product_options conflict for row. Rows for the
// same product proposing the same option set share one conflict.
func (r *ImportResult) addOptionConflict(row int, productID string, existing, incoming catalog.OptionSet, differing []string) {
	for i := range r.Conflicts {
		c := &r.Conflicts[i]
		if c.Type == ConflictProductOptions && c.ProductID == productID && reflect.DeepEqual(c.NewOptions, incoming) {
			c.Rows = append(c.Rows, row)
			return
		}
	}

	r.Conflicts = append(r.Conflicts, ImportConflict{
		ID:               conflictID(ConflictProductOptions, productID, row),
		Type:             ConflictProductOptions,
		ProductID:        productID,
		ExistingOptions:  existing,
		NewOptions:       incoming,
		DifferingOptions: differing,
		Rows:             []int{row},
	})
}

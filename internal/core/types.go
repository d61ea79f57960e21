// Package core provides the business logic for catalog CSV import and export.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"fmt"
	"time"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

// ImportKind identifies one of the supported CSV shapes.
type ImportKind string

const (
	KindProducts  ImportKind = "products"
	KindVariants  ImportKind = "variants"
	KindInventory ImportKind = "inventory"
)

// ErrorKind classifies a row-level import error.
type ErrorKind string

const (
	// ErrorParse covers rows that could not be tokenized or had malformed fields.
	ErrorParse ErrorKind = "parse"
	// ErrorReference covers unknown product, variant or facility references.
	ErrorReference ErrorKind = "reference"
	// ErrorValidation covers well-formed values that break a rule (negative qty).
	ErrorValidation ErrorKind = "validation"
)

// ConflictType names what kind of mismatch a conflict describes.
type ConflictType string

const (
	ConflictProductOptions  ConflictType = "product_options"
	ConflictVariantUpdate   ConflictType = "variant_update"
	ConflictFacilityUnknown ConflictType = "facility_unknown"
)

// ImportError is a row that was skipped.
type ImportError struct {
	Row     int       `json:"row"`
	Field   string    `json:"field,omitempty"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e ImportError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ImportWarning is a processed row the user should know about.
type ImportWarning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportConflict is a mismatch between a product's current option set and the
// option set implied by one or more incoming rows.
type ImportConflict struct {
	ID               string            `json:"id"`
	Type             ConflictType      `json:"type"`
	ProductID        string            `json:"product_id"`
	ExistingOptions  catalog.OptionSet `json:"existing_options"`
	NewOptions       catalog.OptionSet `json:"new_options"`
	DifferingOptions []string          `json:"differing_options"`
	Rows             []int             `json:"rows"`
}

// ImportResult describes what an import would do. It is advisory: nothing is
// written while it is produced.
type ImportResult struct {
	Kind          ImportKind       `json:"kind"`
	ProcessedRows int              `json:"processed_rows"`
	SkippedRows   int              `json:"skipped_rows"`
	Errors        []ImportError    `json:"errors"`
	Warnings      []ImportWarning  `json:"warnings"`
	Conflicts     []ImportConflict `json:"conflicts"`
}

func newResult(kind ImportKind) *ImportResult {
	return &ImportResult{
		Kind:      kind,
		Errors:    []ImportError{},
		Warnings:  []ImportWarning{},
		Conflicts: []ImportConflict{},
	}
}

// skip records err and counts the row as skipped.
func (r *ImportResult) skip(err ImportError) {
	r.Errors = append(r.Errors, err)
	r.SkippedRows++
}

func (r *ImportResult) warn(row int, format string, args ...any) {
	r.Warnings = append(r.Warnings, ImportWarning{Row: row, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any row was skipped with an error.
func (r *ImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Conflict returns the conflict with the given id.
func (r *ImportResult) Conflict(id string) (ImportConflict, bool) {
	for _, c := range r.Conflicts {
		if c.ID == id {
			return c, true
		}
	}
	return ImportConflict{}, false
}

// ImportSession keeps an import preview and the user's conflict selection
// between the upload and the proceed request.
type ImportSession struct {
	ID        string       `json:"id"`
	Kind      ImportKind   `json:"kind"`
	FileName  string       `json:"file_name"`
	Result    ImportResult `json:"result"`
	Selected  []string     `json:"selected"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// ProceedResult is returned once the proceed gate passes.
type ProceedResult struct {
	ImportID          string           `json:"import_id"`
	Kind              ImportKind       `json:"kind"`
	ProcessedRows     int              `json:"processed_rows"`
	AcceptedConflicts []ImportConflict `json:"accepted_conflicts"`
	Applied           bool             `json:"applied"`
}

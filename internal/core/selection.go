package core

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrImportHasErrors blocks proceeding while any row was skipped with an error.
	ErrImportHasErrors = errors.New("import has row errors")

	// ErrNoConflictSelected blocks proceeding until at least one conflict is accepted.
	ErrNoConflictSelected = errors.New("no conflict selected")

	// ErrUnknownConflict is returned when a conflict id is not part of the result.
	ErrUnknownConflict = errors.New("unknown conflict")
)

// Selection is the set of conflict ids the user has accepted, in the order
// they were selected.
type Selection []string

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	return slices.Contains(s, id)
}

// Toggle selects id if it is not selected and deselects it otherwise. It
// returns the new selection and whether id is now selected.
func (s Selection) Toggle(result *ImportResult, id string) (Selection, bool, error) {
	if _, ok := result.Conflict(id); !ok {
		return s, false, fmt.Errorf("%w: %s", ErrUnknownConflict, id)
	}
	if i := slices.Index(s, id); i >= 0 {
		return slices.Delete(slices.Clone(s), i, i+1), false, nil
	}
	return append(slices.Clone(s), id), true, nil
}

// Accepted returns the selected conflicts in result order.
func (s Selection) Accepted(result *ImportResult) []ImportConflict {
	accepted := []ImportConflict{}
	for _, c := range result.Conflicts {
		if s.Has(c.ID) {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

// CanProceed reports whether the import may be applied: it must have no row
// errors and, when it has conflicts, at least one of them must be selected.
func CanProceed(result *ImportResult, selection Selection) error {
	if result.HasErrors() {
		return fmt.Errorf("%w: %d rows skipped", ErrImportHasErrors, len(result.Errors))
	}
	if len(result.Conflicts) > 0 && len(selection.Accepted(result)) == 0 {
		return ErrNoConflictSelected
	}
	return nil
}

package core

import (
	"errors"
	"reflect"
	"testing"
)

func resultWithConflicts(ids ...string) *ImportResult {
	res := newResult(KindProducts)
	for _, id := range ids {
		res.Conflicts = append(res.Conflicts, ImportConflict{ID: id, Type: ConflictProductOptions})
	}
	return res
}

func TestSelection_Toggle(t *testing.T) {
	res := resultWithConflicts("product_options:p1:2", "product_options:p2:3")

	var sel Selection
	sel, on, err := sel.Toggle(res, "product_options:p2:3")
	if err != nil || !on {
		t.Fatalf("first toggle = (%v, %v), want selected", on, err)
	}
	sel, on, err = sel.Toggle(res, "product_options:p1:2")
	if err != nil || !on {
		t.Fatalf("second toggle = (%v, %v), want selected", on, err)
	}

	accepted := sel.Accepted(res)
	if len(accepted) != 2 || accepted[0].ID != "product_options:p1:2" {
		t.Errorf("Accepted() = %v, want result order", accepted)
	}

	sel, on, err = sel.Toggle(res, "product_options:p2:3")
	if err != nil || on {
		t.Fatalf("third toggle = (%v, %v), want deselected", on, err)
	}
	if !reflect.DeepEqual(sel, Selection{"product_options:p1:2"}) {
		t.Errorf("selection = %v", sel)
	}

	if _, _, err := sel.Toggle(res, "product_options:p9:9"); !errors.Is(err, ErrUnknownConflict) {
		t.Errorf("toggle unknown = %v, want ErrUnknownConflict", err)
	}
}

func TestSelection_ToggleDoesNotAlias(t *testing.T) {
	res := resultWithConflicts("a", "b")
	base := Selection{"a"}

	next, _, err := base.Toggle(res, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(next) != 0 || !reflect.DeepEqual(base, Selection{"a"}) {
		t.Errorf("base = %v next = %v, want base untouched", base, next)
	}
}

func TestCanProceed(t *testing.T) {
	withErrors := resultWithConflicts()
	withErrors.skip(ImportError{Row: 2, Field: "qty", Kind: ErrorValidation, Message: "bad"})

	withErrorsAndSelection := resultWithConflicts("a")
	withErrorsAndSelection.skip(ImportError{Row: 3, Kind: ErrorParse, Message: "bad"})

	tests := []struct {
		name      string
		result    *ImportResult
		selection Selection
		wantErr   error
	}{
		{"clean import", resultWithConflicts(), nil, nil},
		{"row errors", withErrors, nil, ErrImportHasErrors},
		{"errors win over selection", withErrorsAndSelection, Selection{"a"}, ErrImportHasErrors},
		{"conflicts without selection", resultWithConflicts("a", "b"), nil, ErrNoConflictSelected},
		{"stale selection only", resultWithConflicts("a"), Selection{"zzz"}, ErrNoConflictSelected},
		{"one conflict selected", resultWithConflicts("a", "b"), Selection{"b"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanProceed(tt.result, tt.selection)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CanProceed() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanProceed() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

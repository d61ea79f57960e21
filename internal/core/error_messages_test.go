package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"unsupported kind", fmt.Errorf("preview: %w", ErrUnsupportedKind), "IMP001"},
		{"proceed blocked by errors", fmt.Errorf("%w: 2 rows skipped", ErrImportHasErrors), "IMP002"},
		{"no conflict selected", ErrNoConflictSelected, "IMP003"},
		{"unknown conflict", fmt.Errorf("%w: x", ErrUnknownConflict), "IMP004"},
		{"limiter full", ErrTooManyImports, "IMP005"},
		{"file too large", fmt.Errorf("%w (10 bytes)", ErrFileTooLarge), "FILE001"},
		{"empty file", ErrEmptyFile, "FILE002"},
		{"no file", ErrNoFile, "FILE003"},
		{"session missing", fmt.Errorf("get import: %w", ErrSessionNotFound), "SES001"},
		{"cancelled", context.Canceled, "SES002"},
		{"deadline", fmt.Errorf("acquire: %w", context.DeadlineExceeded), "SES003"},
		{"catalog not found", fmt.Errorf("product p1: %w", catalog.ErrNotFound), "CAT001"},
		{"catalog duplicate", catalog.ErrAlreadyExists, "CAT002"},
		{"catalog invalid", catalog.ErrInvalid, "CAT003"},
		{"pg duplicate key", errors.New("ERROR: duplicate key value violates unique constraint"), "DB001"},
		{"pg foreign key", errors.New("insert or update violates foreign key constraint"), "DB002"},
		{"case insensitive", errors.New("dial tcp: CONNECTION REFUSED"), "DB003"},
		{"rate limited", ErrRateLimited, "RATE001"},
		{"unknown error", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	want := "The uploaded file is empty (Code: FILE002). Please upload a CSV file with a header and data rows"
	if got := FormatUserError(ErrEmptyFile); got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !IsUserFacing(ErrNoConflictSelected) {
		t.Error("IsUserFacing(ErrNoConflictSelected) = false")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("IsUserFacing(boom) = true")
	}
}

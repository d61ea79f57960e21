package core

// streaming.go turns an uploaded file into import text.
//
// Uploads are read once, fully, because the importers work on whole text.
// The reader chain strips a byte order mark (a UTF-16 BOM also transcodes
// the file to UTF-8), caps the number of bytes read and replaces invalid
// UTF-8 so row messages stay printable.

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrEmptyFile is returned for an upload with no content after the BOM.
	ErrEmptyFile = errors.New("file is empty")
)

// WrapForImport returns r with BOM handling applied.
func WrapForImport(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}

// ReadUpload reads at most maxSize bytes of r and returns the decoded text.
// A maxSize of zero or less disables the cap.
func ReadUpload(r io.Reader, maxSize int64) (string, error) {
	src := r
	if maxSize > 0 {
		src = io.LimitReader(r, maxSize+1)
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if maxSize > 0 && int64(len(raw)) > maxSize {
		return "", fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, maxSize)
	}

	decoded, err := io.ReadAll(WrapForImport(strings.NewReader(string(raw))))
	if err != nil {
		return "", fmt.Errorf("decode upload: %w", err)
	}

	text := strings.ToValidUTF8(string(decoded), "�")
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyFile
	}
	return text, nil
}

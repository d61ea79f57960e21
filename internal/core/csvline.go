package core

// csvline.go tokenizes import text one physical line at a time.
//
// Every line is parsed as an independent CSV record so a malformed row can be
// reported and skipped without losing the rows after it. The trade-off is that
// a quoted field containing an embedded newline is not supported: the line
// split happens before quote handling, so a quoted field left open at the end
// of its line is a parse error on that row.

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// errUnterminatedQuote reports a quoted field that does not close on its line.
var errUnterminatedQuote = errors.New("quoted field not closed before end of line")

// csvLine is one non-blank physical line of import text.
type csvLine struct {
	Number int // 1-based line number in the file
	Text   string
}

// splitLines splits text into lines, dropping blank ones and a trailing CR.
func splitLines(text string) []csvLine {
	raw := strings.Split(text, "\n")
	lines := make([]csvLine, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, csvLine{Number: i + 1, Text: l})
	}
	return lines
}

// parseLine parses a single CSV record. Quoted fields may contain commas and
// doubled quotes; a bare quote inside an unquoted field is kept literally so
// JSON cells such as ["color-red"] survive unquoted.
func parseLine(line string) ([]string, error) {
	if hasOpenQuote(line) {
		return nil, errUnterminatedQuote
	}
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	record, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []string{}, nil
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, pe.Err
		}
		return nil, err
	}
	return record, nil
}

// hasOpenQuote reports whether a field of line opens with a quote that is
// still open at the end of the line. Inside a quoted field a doubled quote is
// an escape, and a quote is closing only before a comma or the line end,
// matching the lazy quote handling of parseLine.
func hasOpenQuote(line string) bool {
	inQuotes, fieldStart := false, true
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuotes:
			if c != '"' {
				continue
			}
			switch {
			case i+1 == len(line) || line[i+1] == ',':
				inQuotes = false
			case line[i+1] == '"':
				i++
			}
		case c == ',':
			fieldStart = true
		case c == '"' && fieldStart:
			inQuotes, fieldStart = true, false
		default:
			fieldStart = false
		}
	}
	return inQuotes
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(cleanCell(h))
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

// cell returns the cleaned value of column name, or "" if absent.
func (h HeaderIndex) cell(row []string, name string) string {
	pos, ok := h[strings.ToLower(name)]
	if !ok || pos >= len(row) {
		return ""
	}
	return cleanCell(row[pos])
}

// cellAt returns the cleaned value at pos, or "" when the row is shorter.
func cellAt(row []string, pos int) string {
	if pos >= len(row) {
		return ""
	}
	return cleanCell(row[pos])
}

// cleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace and the Excel formula wrapper ="...".
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

// newCSVWriter returns a writer using LF line endings.
func newCSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = false
	return cw
}

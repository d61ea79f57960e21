package core

// convert.go turns spreadsheet cell text into typed values.
//
// The parsers accept what people actually paste into CSV files: currency
// symbols and thousands separators in prices, accounting parentheses for
// negatives, and yes/no, true/false or 1/0 for booleans. An empty cell is
// "absent" and reported separately from a malformed one.

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// parseDecimal parses a price-like cell. Returns nil for an empty cell.
func parseDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "").Replace(s)
	s = strings.TrimSpace(s)
	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return nil, fmt.Errorf("invalid number %q", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return &d, nil
}

// parseBool accepts true/false, yes/no, t/f, y/n and 1/0. An empty cell is false.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("must be yes/no, true/false, or 1/0")
	}
}

// parseQuantity accepts only non-negative base-10 integers.
func parseQuantity(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// parseOptionIDs decodes a JSON array of option-value ids. Empty means none.
func parseOptionIDs(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, fmt.Errorf("option_values must be a JSON array of strings: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// formatDecimal renders an optional decimal, "" when absent.
func formatDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// formatOptionIDs encodes option-value ids as a JSON array, never "null".
func formatOptionIDs(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// optionValueEscape escapes the separator and itself inside option values.
const optionValueEscape = '\\'

// joinOptionValues joins values with "|". A "|" or backslash inside a value
// is prefixed with a backslash.
func joinOptionValues(values []string) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteString(OptionValueSeparator)
		}
		for _, r := range v {
			if r == '|' || r == optionValueEscape {
				b.WriteRune(optionValueEscape)
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitOptionValues splits an option_values_<X> cell on unescaped "|",
// trimming and dropping empty or repeated values. A backslash makes the next
// character literal.
func splitOptionValues(s string) []string {
	var (
		out  []string
		part strings.Builder
	)
	seen := make(map[string]bool)
	flush := func() {
		v := strings.TrimSpace(part.String())
		part.Reset()
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}

	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			part.WriteRune(r)
			escaped = false
		case r == optionValueEscape:
			escaped = true
		case r == '|':
			flush()
		default:
			part.WriteRune(r)
		}
	}
	flush()
	return out
}

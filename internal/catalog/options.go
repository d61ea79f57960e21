package catalog

import (
	"sort"
	"strings"
)

// OptionValueRef references one option value used by a variant.
//
// ID is the raw identifier stored on the variant and written to CSV exports.
// Option and Value are explicit; when Option is empty the name is derived
// from ID by splitting on the first hyphen.
type OptionValueRef struct {
	ID     string `json:"id"`
	Option string `json:"option,omitempty"`
	Value  string `json:"value,omitempty"`
}

// ParseOptionValueID derives an OptionValueRef from a raw "<option>-<value>" id.
// An id without a hyphen yields an empty option name with the whole id as value.
func ParseOptionValueID(id string) OptionValueRef {
	name, value, ok := strings.Cut(id, "-")
	if !ok {
		return OptionValueRef{ID: id, Value: id}
	}
	return OptionValueRef{ID: id, Option: name, Value: value}
}

// OptionName returns the explicit option name, falling back to the id prefix.
func (r OptionValueRef) OptionName() string {
	if r.Option != "" {
		return r.Option
	}
	return ParseOptionValueID(r.ID).Option
}

// OptionValue returns the explicit value, falling back to the id suffix.
func (r OptionValueRef) OptionValue() string {
	if r.Option != "" || r.Value != "" {
		return r.Value
	}
	return ParseOptionValueID(r.ID).Value
}

// OptionSet maps option names to their distinct values, sorted.
type OptionSet map[string][]string

// Names returns the option names in alphabetical order.
func (s OptionSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add records value under name, keeping values distinct and sorted.
func (s OptionSet) Add(name, value string) {
	values := s[name]
	i := sort.SearchStrings(values, value)
	if i < len(values) && values[i] == value {
		return
	}
	values = append(values, "")
	copy(values[i+1:], values[i:])
	values[i] = value
	s[name] = values
}

// Diff returns the option names present in both sets whose value sets differ,
// in alphabetical order. Names present in only one set are ignored.
func (s OptionSet) Diff(other OptionSet) []string {
	var differing []string
	for _, name := range s.Names() {
		theirs, ok := other[name]
		if !ok {
			continue
		}
		if !sameValues(s[name], theirs) {
			differing = append(differing, name)
		}
	}
	return differing
}

func sameValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := seen[v]; !ok {
			return false
		}
	}
	return true
}

// GroupOptions collects the option values of the given variants by option name.
// References without an option name are skipped.
func GroupOptions(variants []Variant) OptionSet {
	set := make(OptionSet)
	for _, v := range variants {
		for _, ref := range v.OptionValues {
			name := ref.OptionName()
			if name == "" {
				continue
			}
			set.Add(name, ref.OptionValue())
		}
	}
	return set
}

// Package builtin contains the transformers used by the filing loader.
package builtin

import (
	"strings"

	"filingload/pkg/records"
)

// NormalizeName trims, lowercases and replaces whitespace runs with "_".
// Unicode spaces such as NBSP count as whitespace.
// NormalizeName(NormalizeName(s)) == NormalizeName(s).
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

// NormalizeNames normalizes every name and makes the result unique.
func NormalizeNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeName(n)
	}
	return records.UniqueNames(out)
}

// NormalizeColumns renames every column of the set to its normalized form.
type NormalizeColumns struct{}

func (NormalizeColumns) Apply(s *records.Set) *records.Set {
	if s == nil {
		return s
	}
	s.RenameAll(NormalizeNames(s.Columns))
	return s
}

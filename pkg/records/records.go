// Package records holds the in-memory tabular model shared by the parser,
// the transformers and the storage backends.
package records

import "fmt"

// Record maps a column name to its value. Values are string, nil (SQL NULL),
// float64 or time.Time depending on how far the record has been cleaned.
type Record map[string]any

// Set is an ordered, in-memory table: Columns fixes the column order used for
// DDL and inserts, Rows carries one Record per data line.
type Set struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// RenameAll replaces the column names positionally: Columns[i] becomes
// names[i] and every row is rekeyed accordingly. names must have the same
// length as Columns and hold unique values.
func (s *Set) RenameAll(names []string) {
	if len(names) != len(s.Columns) {
		return
	}
	old := s.Columns
	for i, r := range s.Rows {
		nr := make(Record, len(names))
		for j, c := range old {
			if v, ok := r[c]; ok {
				nr[names[j]] = v
			}
		}
		s.Rows[i] = nr
	}
	s.Columns = append([]string(nil), names...)
}

// Values returns the rows as positional slices aligned to Columns. Missing
// keys become nil.
func (s *Set) Values() [][]any {
	out := make([][]any, len(s.Rows))
	for i, r := range s.Rows {
		row := make([]any, len(s.Columns))
		for j, c := range s.Columns {
			row[j] = r[c]
		}
		out[i] = row
	}
	return out
}

// UniqueNames returns names with later duplicates suffixed _2, _3, ... in
// order of appearance. Suffixed names never collide with existing ones.
func UniqueNames(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	used := make(map[string]struct{}, len(names))
	for i, n := range names {
		if _, dup := used[n]; !dup {
			out[i] = n
			used[n] = struct{}{}
			continue
		}
		for k := 2; ; k++ {
			cand := fmt.Sprintf("%s_%d", n, k)
			_, taken := used[cand]
			_, exists := seen[cand]
			if !taken && !exists {
				out[i] = cand
				used[cand] = struct{}{}
				break
			}
		}
	}
	return out
}

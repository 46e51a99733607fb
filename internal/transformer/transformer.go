// Package transformer defines the per-file record transforms run between
// parsing and writing.
package transformer

import "filingload/pkg/records"

// Transformer rewrites a record set. Implementations may mutate the set in
// place and return it.
type Transformer interface {
	Apply(*records.Set) *records.Set
}

// Func adapts a plain function to Transformer.
type Func func(*records.Set) *records.Set

func (f Func) Apply(s *records.Set) *records.Set { return f(s) }

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in *records.Set) *records.Set {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

package builtin

import "filingload/pkg/records"

// EmptyToNull replaces every remaining empty string with nil.
type EmptyToNull struct{}

func (EmptyToNull) Apply(s *records.Set) *records.Set {
	for _, r := range s.Rows {
		for k, v := range r {
			if v == "" {
				r[k] = nil
			}
		}
	}
	return s
}

// Clean applies numeric and date cleaning per a Classification.
func Clean(c Classification) CleanColumns {
	return CleanColumns{Classification: c}
}

// CleanColumns cleans numeric columns and then date columns.
type CleanColumns struct {
	Classification Classification
}

func (c CleanColumns) Apply(s *records.Set) *records.Set {
	s = CleanNumericColumns{Columns: c.Classification.Numeric}.Apply(s)
	return CleanDateColumns{Columns: c.Classification.Date}.Apply(s)
}

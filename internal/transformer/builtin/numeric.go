package builtin

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"filingload/pkg/records"
)

var currencyStripper = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "")

// CleanNumeric converts v to a float64 or nil. Strings lose currency symbols,
// thousands separators and all whitespace before parsing. Values that do not
// parse, NaN and infinities become nil. float64 inputs pass through, so
// CleanNumeric(CleanNumeric(v)) == CleanNumeric(v).
func CleanNumeric(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		s := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, currencyStripper.Replace(x))
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return finite(f)
	default:
		return nil
	}
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// CleanNumericColumns applies CleanNumeric to every value of Columns.
type CleanNumericColumns struct {
	Columns []string
}

func (c CleanNumericColumns) Apply(s *records.Set) *records.Set {
	for _, r := range s.Rows {
		for _, col := range c.Columns {
			if v, ok := r[col]; ok {
				r[col] = CleanNumeric(v)
			}
		}
	}
	return s
}

package builtin

import (
	"regexp"
	"strings"
)

// Class is the cleaning class of a column.
type Class int

const (
	Text Class = iota
	Numeric
	Date
)

func (c Class) String() string {
	switch c {
	case Numeric:
		return "numeric"
	case Date:
		return "date"
	default:
		return "text"
	}
}

// ParseClass maps "numeric", "date" or "text" to a Class.
func ParseClass(s string) (Class, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric":
		return Numeric, true
	case "date":
		return Date, true
	case "text", "":
		return Text, true
	}
	return Text, false
}

// Rule assigns Class to columns whose name matches Match and not Exclude.
type Rule struct {
	Class   Class
	Match   *regexp.Regexp
	Exclude *regexp.Regexp // optional
}

func (r Rule) applies(col string) bool {
	if r.Match == nil || !r.Match.MatchString(col) {
		return false
	}
	return r.Exclude == nil || !r.Exclude.MatchString(col)
}

// DefaultRules classify monetary and count columns as numeric and calendar
// columns as date. Names are matched case-insensitively as substrings.
var DefaultRules = []Rule{
	{
		Class:   Numeric,
		Match:   regexp.MustCompile(`(?i)amount|amt|total|number|num|count|fee|price|cost|balance`),
		Exclude: regexp.MustCompile(`(?i)id|seq`),
	},
	{
		Class: Date,
		Match: regexp.MustCompile(`(?i)date|day|month|year|dt|posted|filedate|signature_date|effectivedate|first_sale_date`),
	},
}

// Classifier assigns each column the class of the first applicable rule.
// Columns no rule applies to are Text.
type Classifier struct {
	Rules []Rule
}

// NewClassifier returns a Classifier using DefaultRules.
func NewClassifier() Classifier { return Classifier{Rules: DefaultRules} }

// ClassOf returns the class for one column name.
func (c Classifier) ClassOf(col string) Class {
	for _, r := range c.Rules {
		if r.applies(col) {
			return r.Class
		}
	}
	return Text
}

// Classification is the outcome of classifying a column list.
type Classification struct {
	Numeric []string
	Date    []string
	classes map[string]Class
}

// Classify classifies cols in order.
func (c Classifier) Classify(cols []string) Classification {
	out := Classification{classes: make(map[string]Class, len(cols))}
	for _, col := range cols {
		cl := c.ClassOf(col)
		out.classes[col] = cl
		switch cl {
		case Numeric:
			out.Numeric = append(out.Numeric, col)
		case Date:
			out.Date = append(out.Date, col)
		}
	}
	return out
}

// Of returns the class recorded for col, Text when unknown.
func (c Classification) Of(col string) Class { return c.classes[col] }

// Package csv reads delimited filing exports: it samples the header, scans
// for structurally malformed rows and parses whole files into a records.Set.
//
// All entry points take a datasource.TextSource plus the encoding chosen by
// the charset detector, so every pass sees the same decoded text.
package csv

// Defaults applied by Options.withDefaults.
const (
	DefaultComma         = '\t'
	DefaultSampleRows    = 50
	DefaultMaxReport     = 20
	DefaultPreviewFields = 10
)

// Options configures sampling and scanning. Zero fields take the defaults.
type Options struct {
	// Comma is the field delimiter; tab unless set.
	Comma rune

	// SampleRows bounds how many rows SampleHeader reads, header included.
	SampleRows int

	// MaxReport bounds how many malformed rows ScanBadRows records.
	MaxReport int

	// PreviewFields bounds how many leading fields each bad row keeps.
	PreviewFields int
}

func (o Options) withDefaults() Options {
	if o.Comma == 0 {
		o.Comma = DefaultComma
	}
	if o.SampleRows <= 0 {
		o.SampleRows = DefaultSampleRows
	}
	if o.MaxReport <= 0 {
		o.MaxReport = DefaultMaxReport
	}
	if o.PreviewFields <= 0 {
		o.PreviewFields = DefaultPreviewFields
	}
	return o
}

// Package remap projects the columns of one CSV layout onto another: headers
// are normalized, each target column is filled from its mapped source column
// and everything else is dropped. Values are copied as text, unvalidated.
package remap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	csvparser "filingload/internal/parser/csv"
	"filingload/internal/transformer/builtin"
)

// Default file names of the Form C submission import.
const (
	DefaultSource = "FORM_C_SUBMISSION.csv"
	DefaultOutput = "FORM_C_SUBMISSION_for_import.csv"
)

// Mapping fills Target from the normalized Source column.
type Mapping struct {
	Target string `yaml:"target"`
	Source string `yaml:"source"`
}

// DefaultMappings is the submission layout expected by the import table.
var DefaultMappings = []Mapping{
	{Target: "submission_id", Source: "accession_number"},
	{Target: "cik", Source: "cik"},
	{Target: "filing_date", Source: "filing_date"},
	{Target: "intermediary", Source: "intermediary"},
	{Target: "portal", Source: "file_number"},
}

// Stats describes one remap.
type Stats struct {
	Rows int
	// SourceColumns are the normalized input headers.
	SourceColumns []string
	// Missing lists targets whose source column was absent; they are written
	// as empty cells.
	Missing []string
}

// LoadMappings reads an ordered list of {target, source} pairs from YAML.
func LoadMappings(path string) ([]Mapping, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("remap: read mapping: %w", err)
	}
	var m []Mapping
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("remap: decode mapping %s: %w", path, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("remap: mapping %s is empty", path)
	}
	for i, mm := range m {
		if mm.Target == "" {
			return nil, fmt.Errorf("remap: mapping %s: entry %d has no target", path, i)
		}
	}
	return m, nil
}

// Remap reads CSV from r and writes the projected CSV to w.
func Remap(r io.Reader, w io.Writer, mappings []Mapping) (Stats, error) {
	if len(mappings) == 0 {
		mappings = DefaultMappings
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Stats{}, fmt.Errorf("remap: %w", csvparser.ErrNoHeader)
	}
	if err != nil {
		return Stats{}, fmt.Errorf("remap: read header: %w", err)
	}
	cols := builtin.NormalizeNames(csvparser.StripHeaderBOM(hdr))

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	st := Stats{SourceColumns: cols}
	src := make([]int, len(mappings))
	out := make([]string, len(mappings))
	for i, m := range mappings {
		out[i] = m.Target
		j, ok := index[builtin.NormalizeName(m.Source)]
		if !ok {
			j = -1
			st.Missing = append(st.Missing, m.Target)
		}
		src[i] = j
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(out); err != nil {
		return st, fmt.Errorf("remap: write header: %w", err)
	}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return st, fmt.Errorf("remap: record %d: %w", st.Rows+2, err)
		}
		for i, j := range src {
			out[i] = ""
			if j >= 0 && j < len(row) {
				out[i] = row[j]
			}
		}
		if err := cw.Write(out); err != nil {
			return st, fmt.Errorf("remap: write: %w", err)
		}
		st.Rows++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return st, fmt.Errorf("remap: flush: %w", err)
	}
	return st, nil
}

// RemapFile remaps the CSV at src into a new file at dst.
func RemapFile(src, dst string, mappings []Mapping) (Stats, error) {
	in, err := os.Open(src)
	if err != nil {
		return Stats{}, fmt.Errorf("remap: %w", err)
	}
	defer in.Close()

	log.Infof("remap: reading %s", src)
	out, err := os.Create(dst)
	if err != nil {
		return Stats{}, fmt.Errorf("remap: %w", err)
	}

	st, err := Remap(in, out, mappings)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("remap: close %s: %w", dst, cerr)
	}
	if err != nil {
		return st, err
	}
	log.Infof("remap: source_columns=%v", st.SourceColumns)
	if len(st.Missing) > 0 {
		log.Warnf("remap: no source column for %v; written empty", st.Missing)
	}
	log.Infof("remap: wrote %d rows to %s", st.Rows, dst)
	return st, nil
}

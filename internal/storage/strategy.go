package storage

import (
	"fmt"
	"strconv"
	"time"

	"filingload/internal/ddl"
)

// Default batch sizes of the typed and text strategies.
const (
	DefaultBatchSize         = 1000
	DefaultFallbackBatchSize = 500
)

// WriteStrategy is one way of writing a table. Strategies are tried in order
// until one succeeds.
type WriteStrategy struct {
	Name string
	// AsText renders every value as text and declares every column TEXT.
	AsText    bool
	BatchSize int
}

// WriteStrategies returns the default order: a typed write, then an all-text
// write with a smaller batch. Non-positive sizes take the defaults.
func WriteStrategies(batchSize, fallbackBatchSize int) []WriteStrategy {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if fallbackBatchSize <= 0 {
		fallbackBatchSize = DefaultFallbackBatchSize
	}
	return []WriteStrategy{
		{Name: "typed", BatchSize: batchSize},
		{Name: "text", AsText: true, BatchSize: fallbackBatchSize},
	}
}

// Request builds the WriteRequest for this strategy. The text strategy
// copies rows; the typed one passes them through.
func (s WriteStrategy) Request(table ddl.TableDef, mode WriteMode, rows [][]any) WriteRequest {
	req := WriteRequest{Table: table, Mode: mode, Rows: rows, BatchSize: s.BatchSize}
	if !s.AsText {
		return req
	}
	req.Table = table.AsText()
	req.Rows = make([][]any, len(rows))
	for i, row := range rows {
		out := make([]any, len(row))
		for j, v := range row {
			out[j] = TextValue(v)
		}
		req.Rows[i] = out
	}
	return req
}

// TextValue renders v as text. nil stays nil; dates render as YYYY-MM-DD.
func TextValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.DateOnly)
	default:
		return fmt.Sprint(x)
	}
}

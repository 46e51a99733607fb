package storage

import (
	"context"
	"errors"
	"testing"
)

func makeRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{i, "x"}
	}
	return rows
}

// TestLoadBatches_Basic verifies rows are grouped into batches and copyFn is
// called with the expected counts. It also checks the total equals the sum of
// all successful copyFn returns.
func TestLoadBatches_Basic(t *testing.T) {
	t.Parallel()

	var sizes []int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		sizes = append(sizes, len(rows))
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), []string{"c1", "c2"}, makeRows(7), 3, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 7 {
		t.Fatalf("total rows %d, want 7", total)
	}
	if len(sizes) != 3 || sizes[0] != 3 || sizes[1] != 3 || sizes[2] != 1 {
		t.Fatalf("batch sizes %v, want [3 3 1]", sizes)
	}
}

// TestLoadBatches_ErrorPropagation ensures the first copy error is propagated
// and processing stops after that batch.
func TestLoadBatches_ErrorPropagation(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("copy failed")
	var batches int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		batches++
		if batches == 2 {
			return 0, wantErr
		}
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), []string{"c"}, makeRows(5), 2, copyFn)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want error %v, got %v", wantErr, err)
	}
	if total != 2 || batches != 2 {
		t.Fatalf("total=%d batches=%d, want 2/2", total, batches)
	}
}

func TestLoadBatches_Validation(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }
	if _, err := LoadBatches(context.Background(), nil, nil, 0, noop); err == nil {
		t.Fatalf("expected error for batchSize 0")
	}
	if _, err := LoadBatches(context.Background(), nil, nil, 1, nil); err == nil {
		t.Fatalf("expected error for nil copyFn")
	}
	if n, err := LoadBatches(context.Background(), nil, nil, 10, noop); err != nil || n != 0 {
		t.Fatalf("empty input: n=%d err=%v", n, err)
	}
}

func TestLoadBatches_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, err := LoadBatches(ctx, nil, makeRows(3), 1, func(context.Context, []string, [][]any) (int64, error) {
		called = true
		return 1, nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("err=%v called=%v, want context.Canceled and no copy", err, called)
	}
}

func TestMaxRowsPerStatement(t *testing.T) {
	t.Parallel()

	tests := []struct{ batch, cols, maxParams, want int }{
		{1000, 10, 65535, 1000},
		{1000, 100, 65535, 655},
		{1000, 70000, 65535, 1},
		{500, 0, 65535, 500},
	}
	for _, tt := range tests {
		if got := MaxRowsPerStatement(tt.batch, tt.cols, tt.maxParams); got != tt.want {
			t.Errorf("MaxRowsPerStatement(%d,%d,%d) = %d, want %d", tt.batch, tt.cols, tt.maxParams, got, tt.want)
		}
	}
}

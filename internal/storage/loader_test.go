package storage

import (
	"context"
	"errors"
	"testing"
)

func feed(rows ...[]any) <-chan []any {
	ch := make(chan []any, len(rows))
	for _, r := range rows {
		ch <- r
	}
	close(ch)
	return ch
}

func TestLoadBatches_FlushesBySize(t *testing.T) {
	t.Parallel()

	var calls [][][]any
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		cp := make([][]any, len(rows))
		copy(cp, rows)
		calls = append(calls, cp)
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), []string{"a"},
		feed([]any{1}, []any{2}, []any{3}, []any{4}, []any{5}), 2, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(calls) != 3 {
		t.Fatalf("flushes = %d, want 3 (2+2+1)", len(calls))
	}
	if len(calls[2]) != 1 || calls[2][0][0] != 5 {
		t.Fatalf("final partial batch = %#v, want [[5]]", calls[2])
	}
}

func TestLoadBatches_EmptyInput(t *testing.T) {
	t.Parallel()

	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		t.Fatal("copyFn must not be called for empty input")
		return 0, nil
	}
	total, err := LoadBatches(context.Background(), []string{"a"}, feed(), 10, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}
}

func TestLoadBatches_PropagatesCopyError(t *testing.T) {
	t.Parallel()

	boom := errors.New("copy failed")
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return 0, boom
	}
	_, err := LoadBatches(context.Background(), []string{"a"}, feed([]any{1}, []any{2}), 2, copyFn)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestLoadBatches_InvalidArgs(t *testing.T) {
	t.Parallel()

	if _, err := LoadBatches(context.Background(), nil, feed(), 0, nil); err == nil {
		t.Fatal("expected error for batchSize 0")
	}
	if _, err := LoadBatches(context.Background(), nil, feed(), 1, nil); err == nil {
		t.Fatal("expected error for nil copyFn")
	}
}

func TestLoadBatches_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := make(chan []any) // never closed, never written
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return int64(len(rows)), nil
	}
	_, err := LoadBatches(ctx, []string{"a"}, in, 2, copyFn)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

package parquetout

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"actdata/pkg/records"
)

var testColumns = []Column{
	{Name: "region_code", Kind: String},
	{Name: "paid", Kind: Double},
	{Name: "loss_date", Kind: Timestamp},
}

func openParquet(t *testing.T, path string) *parquet.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	st, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		t.Fatalf("parquet.OpenFile: %v", err)
	}
	return pf
}

func TestWriter_ChunksBecomeRowGroups(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.parquet")
	w, err := Create(path, testColumns)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	chunk1 := []records.Record{
		{"region_code": "East", "paid": 100.0, "loss_date": ts},
		{"region_code": "West", "paid": 250.0, "loss_date": ts},
	}
	chunk2 := []records.Record{
		{"region_code": "99", "paid": 0.0, "loss_date": nil},
	}
	if err := w.AppendChunk(chunk1); err != nil {
		t.Fatalf("AppendChunk 1: %v", err)
	}
	if err := w.AppendChunk(chunk2); err != nil {
		t.Fatalf("AppendChunk 2: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pf := openParquet(t, path)
	if got := pf.NumRows(); got != 3 {
		t.Fatalf("NumRows = %d, want 3", got)
	}
	if got := len(pf.RowGroups()); got != 2 {
		t.Fatalf("row groups = %d, want 2 (one per chunk)", got)
	}
}

func TestWriter_EmptyChunkIsNoOp(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.parquet")
	w, err := Create(path, testColumns)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := w.AppendChunk(nil); err != nil {
		t.Fatalf("AppendChunk(nil): %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pf := openParquet(t, path)
	if got := pf.NumRows(); got != 0 {
		t.Fatalf("NumRows = %d, want 0", got)
	}
}

func TestWriter_ZeroChunksStillValidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.parquet")
	w, err := Create(path, testColumns)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pf := openParquet(t, path)
	// The full column schema must survive even with no rows.
	fields := pf.Schema().Fields()
	if len(fields) != len(testColumns) {
		t.Fatalf("schema fields = %d, want %d", len(fields), len(testColumns))
	}
}

func TestWriter_TruncatesExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.parquet")
	if err := os.WriteFile(path, []byte("stale previous run"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Create(path, testColumns)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := w.AppendChunk([]records.Record{{"region_code": "East", "paid": 1.0}}); err != nil {
		t.Fatalf("AppendChunk: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pf := openParquet(t, path)
	if got := pf.NumRows(); got != 1 {
		t.Fatalf("NumRows = %d, want 1 (previous contents replaced)", got)
	}
}

func TestCreate_NoColumns(t *testing.T) {
	t.Parallel()

	if _, err := Create(filepath.Join(t.TempDir(), "x.parquet"), nil); err == nil {
		t.Fatal("expected error for empty column set")
	}
}

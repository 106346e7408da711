// Package parquetout writes row chunks to a single Parquet file. Each
// AppendChunk call closes one row group, so the output file's row groups
// mirror the pipeline's chunk boundaries in arrival order; nothing is re-read
// or reordered after being written.
package parquetout

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"actdata/pkg/records"
)

// Kind is the physical/logical type of an output column.
type Kind int

const (
	// String is an optional UTF-8 byte array column.
	String Kind = iota
	// Double is an optional 64-bit floating point column.
	Double
	// Timestamp is an optional millisecond-precision timestamp column.
	Timestamp
)

// Column describes one output column.
type Column struct {
	Name string
	Kind Kind
}

// Writer appends record chunks to a Parquet file.
type Writer struct {
	f    *os.File
	gw   *parquet.GenericWriter[map[string]any]
	cols []Column
}

// Create opens (truncating) the output file and prepares a writer with the
// given column set. Cross-run append is not representable in Parquet, so an
// existing file at path is overwritten; there is no overwrite protection.
func Create(path string, cols []Column) (*Writer, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("parquetout: no columns")
	}

	group := parquet.Group{}
	for _, c := range cols {
		switch c.Kind {
		case String:
			group[c.Name] = parquet.Optional(parquet.String())
		case Double:
			group[c.Name] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
		case Timestamp:
			group[c.Name] = parquet.Optional(parquet.Timestamp(parquet.Millisecond))
		default:
			return nil, fmt.Errorf("parquetout: column %s: unknown kind %d", c.Name, c.Kind)
		}
	}
	schema := parquet.NewSchema("dataset", group)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("parquetout: create %s: %w", path, err)
	}

	gw := parquet.NewGenericWriter[map[string]any](f, schema,
		parquet.Compression(&parquet.Snappy),
	)
	return &Writer{f: f, gw: gw, cols: cols}, nil
}

// AppendChunk writes rows as one row group. Cells missing from a record (or
// nil) become nulls. Values must match the column kind declared at Create.
func (w *Writer) AppendChunk(rows []records.Record) error {
	if len(rows) == 0 {
		return nil
	}

	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		m := make(map[string]any, len(w.cols))
		for _, c := range w.cols {
			if v, ok := r[c.Name]; ok && v != nil {
				m[c.Name] = v
			}
		}
		out[i] = m
	}

	if _, err := w.gw.Write(out); err != nil {
		return fmt.Errorf("parquetout: write chunk: %w", err)
	}
	// One row group per chunk keeps the append contract observable in the
	// file layout.
	if err := w.gw.Flush(); err != nil {
		return fmt.Errorf("parquetout: flush chunk: %w", err)
	}
	return nil
}

// Close finalizes the file footer. A writer closed with no chunks written
// still produces a valid zero-row file carrying the full column schema.
func (w *Writer) Close() error {
	if err := w.gw.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("parquetout: close: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("parquetout: close file: %w", err)
	}
	return nil
}

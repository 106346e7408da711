// Package metadata reads the column-restoration metadata table: one row per
// encoded column of the main dataset, naming the lookup table that maps its
// numeric surrogate codes back to categorical values.
package metadata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Required metadata columns.
const (
	colOriginal    = "original_column_name"
	colLookupTable = "lookup_table_reference"
	colLookupKey   = "lookup_key_column_name"
)

// Mapping describes one encoded column and how to restore it.
type Mapping struct {
	// OriginalColumn is the column name in the main dataset. A mapping whose
	// column is absent from the dataset is a no-op.
	OriginalColumn string

	// LookupTable identifies the side table holding the code→value pairs.
	LookupTable string

	// LookupKey is the surrogate-key column name inside the lookup table.
	LookupKey string
}

// Load reads the metadata CSV at path and returns the mappings in file order.
// Restoration is applied in this order, one column at a time.
func Load(path string) ([]Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads metadata rows from r. The first row must be a header containing
// the three required columns; extra columns are ignored.
func Parse(r io.Reader) ([]Mapping, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("metadata: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("metadata: read header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		idx[strings.ToLower(h)] = i
	}
	for _, want := range []string{colOriginal, colLookupTable, colLookupKey} {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("metadata: missing required column %q", want)
		}
	}

	var out []Mapping
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("metadata: line %d: %w", line, err)
		}
		m := Mapping{
			OriginalColumn: field(row, idx[colOriginal]),
			LookupTable:    field(row, idx[colLookupTable]),
			LookupKey:      field(row, idx[colLookupKey]),
		}
		if m.OriginalColumn == "" || m.LookupTable == "" || m.LookupKey == "" {
			return nil, fmt.Errorf("metadata: line %d: empty column name", line)
		}
		out = append(out, m)
	}
	return out, nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// Package sasfile adapts SAS7BDAT datasets to the row-oriented Source
// interface consumed by the restoration pipeline. The heavy lifting (page
// decompression, column subheaders, date conversion) is done by
// github.com/kshedden/datareader; this package converts its column Series
// into records and exposes the sizing metadata the chunking decision needs.
package sasfile

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kshedden/datareader"

	"actdata/pkg/records"
)

// Source is a chunk-readable tabular dataset. Implementations must preserve
// row order across consecutive ReadChunk calls.
type Source interface {
	// ColumnNames returns the dataset's column names in file order.
	ColumnNames() []string

	// ColumnKinds returns the value kind of each column, aligned with
	// ColumnNames. Needed to build the output schema before any row is read
	// (an empty dataset still produces a full schema).
	ColumnKinds() []Kind

	// RowCount returns the total number of data rows, when known from file
	// metadata, or -1.
	RowCount() int

	// ReadChunk reads up to n rows (all remaining rows when n < 0) and
	// returns them in order. It returns io.EOF when no rows remain.
	ReadChunk(n int) ([]records.Record, error)
}

// Kind is the coarse value type of a dataset column.
type Kind int

const (
	KindString Kind = iota
	KindDouble
	KindTimestamp
)

// Dataset is a Source backed by a SAS7BDAT file.
type Dataset struct {
	f   *os.File
	sas *datareader.SAS7BDAT

	// SizeBytes is the dataset file size, used by the chunk-size decision.
	SizeBytes int64
}

// Open opens the SAS7BDAT file at path and parses its header metadata.
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sasfile: open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sasfile: stat %s: %w", path, err)
	}
	sas, err := datareader.NewSAS7BDATReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sasfile: parse %s: %w", path, err)
	}
	sas.TrimStrings = true
	sas.ConvertDates = true
	return &Dataset{f: f, sas: sas, SizeBytes: st.Size()}, nil
}

// Close releases the underlying file handle.
func (d *Dataset) Close() error { return d.f.Close() }

// ColumnNames implements Source.
func (d *Dataset) ColumnNames() []string { return d.sas.ColumnNames() }

// ColumnKinds implements Source. Numeric columns carrying a SAS date or
// datetime display format surface as timestamps, matching the reader's
// ConvertDates behavior.
func (d *Dataset) ColumnKinds() []Kind {
	types := d.sas.ColumnTypes()
	kinds := make([]Kind, len(types))
	for i, t := range types {
		switch {
		case t == datareader.SASStringType:
			kinds[i] = KindString
		case isDateFormat(d.sas.ColumnFormats[i]):
			kinds[i] = KindTimestamp
		default:
			kinds[i] = KindDouble
		}
	}
	return kinds
}

func isDateFormat(f string) bool {
	switch f {
	case "MMDDYY", "DATE", "DATETIME":
		return true
	}
	return false
}

// RowCount implements Source. SAS7BDAT carries the row count in its row-size
// subheader, so this is metadata, not a scan.
func (d *Dataset) RowCount() int { return d.sas.RowCount() }

// ReadChunk implements Source. Column series come back as []float64,
// []string, or []time.Time (dates converted by the reader); missing values
// become nil cells.
func (d *Dataset) ReadChunk(n int) ([]records.Record, error) {
	series, err := d.sas.Read(n)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("sasfile: read: %w", err)
	}
	if len(series) == 0 {
		return nil, io.EOF
	}

	nrows := series[0].Length()
	rows := make([]records.Record, nrows)
	for i := range rows {
		rows[i] = make(records.Record, len(series))
	}

	for _, ser := range series {
		name := ser.Name
		miss := ser.Missing()
		switch data := ser.Data().(type) {
		case []float64:
			for i, v := range data {
				if miss != nil && miss[i] {
					rows[i][name] = nil
					continue
				}
				rows[i][name] = v
			}
		case []string:
			for i, v := range data {
				if miss != nil && miss[i] {
					rows[i][name] = nil
					continue
				}
				rows[i][name] = v
			}
		case []time.Time:
			for i, v := range data {
				if miss != nil && miss[i] {
					rows[i][name] = nil
					continue
				}
				rows[i][name] = v
			}
		default:
			return nil, fmt.Errorf("sasfile: column %s: unsupported series type %T", name, data)
		}
	}
	return rows, nil
}

// Package restore implements the categorical restoration pipeline: it reads
// an encoded SAS dataset whose categorical columns hold numeric surrogate
// codes, joins each coded column against its lookup table as described by the
// metadata table, and writes the restored rows to a single Parquet file.
//
// The run is strictly sequential: validate inputs → decide chunk size → for
// each chunk (read → substitute per column → append) → close output. Output
// rows correspond 1:1 to input rows, in input order. Lookup tables are loaded
// once, before the chunk loop, and held read-only for the whole run.
package restore

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"actdata/internal/lookup"
	"actdata/internal/metadata"
	"actdata/internal/metrics"
	"actdata/internal/parquetout"
	"actdata/internal/sasfile"
	"actdata/pkg/records"
)

// Config carries the four pipeline parameters plus the optional lookup
// directory override. Everything is a direct call argument; nothing is read
// from the environment.
type Config struct {
	// Job labels metrics and log lines. Empty defaults to "restore".
	Job string

	// DatasetPath is the encoded SAS7BDAT file.
	DatasetPath string

	// MetadataPath is the metadata CSV describing encoded columns.
	MetadataPath string

	// OutputPath is the Parquet file to write.
	OutputPath string

	// LookupDir holds the lookup_<column>.csv files. Empty means the
	// metadata file's directory.
	LookupDir string

	// MemoryRatio is the fraction of available memory the dataset may occupy
	// before chunking activates. Must be in (0, 1].
	MemoryRatio float64
}

// Stats summarizes a completed run.
type Stats struct {
	Rows       int // rows read and written (1:1)
	Chunks     int // chunks appended
	Resolved   int // cell substitutions performed
	Unresolved int // coded cells with no lookup match (kept as-is)
}

// Sink receives transformed chunks in arrival order.
type Sink interface {
	AppendChunk(rows []records.Record) error
}

// Test seams; production points at the real implementations.
var (
	openDatasetFn = func(path string) (*sasfile.Dataset, error) { return sasfile.Open(path) }
	availMemFn    = sasfile.AvailableMemory
)

// Run executes the pipeline end to end. It returns a *ConfigError for an
// invalid threshold, a *MissingInputError for an absent dataset or metadata
// file, and wraps read/schema failures otherwise. Any error aborts the run;
// a partially written output file is left behind with no recovery procedure.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	start := time.Now()
	job := cfg.Job
	if job == "" {
		job = "restore"
	}

	if cfg.MemoryRatio <= 0 || cfg.MemoryRatio > 1 {
		return Stats{}, &ConfigError{
			Field:  "memory_ratio",
			Reason: fmt.Sprintf("must be in (0, 1], got %v", cfg.MemoryRatio),
		}
	}
	for _, p := range []string{cfg.DatasetPath, cfg.MetadataPath} {
		st, err := os.Stat(p)
		if err != nil || st.IsDir() {
			return Stats{}, &MissingInputError{Path: p}
		}
	}

	mappings, err := metadata.Load(cfg.MetadataPath)
	if err != nil {
		return Stats{}, err
	}

	dir := cfg.LookupDir
	if dir == "" {
		dir = filepath.Dir(cfg.MetadataPath)
	}
	tables, err := lookup.LoadDir(dir, mappings)
	if err != nil {
		return Stats{}, err
	}

	src, err := openDatasetFn(cfg.DatasetPath)
	if err != nil {
		return Stats{}, err
	}
	defer src.Close()

	budget := rowBudget(src.SizeBytes, src.RowCount(), cfg.MemoryRatio, availMemFn())
	if budget > 0 {
		log.Printf("%s: dataset %s exceeds memory allowance; chunking at %d rows", job, cfg.DatasetPath, budget)
	}

	w, err := parquetout.Create(cfg.OutputPath, outputColumns(src, mappings))
	if err != nil {
		return Stats{}, err
	}

	stats, err := Restore(ctx, src, mappings, tables, w, budget)
	metrics.RecordStep(job, "restore", err, time.Since(start))
	if err != nil {
		w.Close()
		return stats, err
	}
	if err := w.Close(); err != nil {
		return stats, err
	}

	metrics.RecordRow(job, "rows", int64(stats.Rows))
	metrics.RecordRow(job, "resolved", int64(stats.Resolved))
	metrics.RecordRow(job, "unresolved", int64(stats.Unresolved))
	metrics.RecordBatches(job, int64(stats.Chunks))
	log.Printf("%s: %d rows in %d chunk(s), %d resolved, %d unresolved, in %s",
		job, stats.Rows, stats.Chunks, stats.Resolved, stats.Unresolved,
		time.Since(start).Truncate(time.Millisecond))
	return stats, nil
}

// Restore drains src chunk by chunk, applies the lookup substitutions in
// metadata order, and appends each transformed chunk to sink. rowBudget <= 0
// reads the whole dataset as one chunk. Exposed separately from Run so the
// transform can be exercised against in-memory sources and sinks.
func Restore(
	ctx context.Context,
	src sasfile.Source,
	mappings []metadata.Mapping,
	tables lookup.Registry,
	sink Sink,
	rowBudget int,
) (Stats, error) {
	var stats Stats

	// Mappings naming a column the dataset does not have are no-ops; the
	// original values pass through untouched.
	have := map[string]bool{}
	for _, c := range src.ColumnNames() {
		have[c] = true
	}
	active := make([]metadata.Mapping, 0, len(mappings))
	for _, m := range mappings {
		if !have[m.OriginalColumn] {
			log.Printf("restore: column %s not in dataset; mapping skipped", m.OriginalColumn)
			continue
		}
		active = append(active, m)
	}

	n := rowBudget
	if n <= 0 {
		n = -1 // datareader convention: all remaining rows
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rows, err := src.ReadChunk(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}
		if len(rows) == 0 {
			break
		}

		for _, m := range active {
			t := tables.Resolve(m.LookupTable)
			if t == nil {
				return stats, fmt.Errorf("restore: lookup table %q not loaded", m.LookupTable)
			}
			resolved, unresolved := substitute(rows, m.OriginalColumn, t)
			stats.Resolved += resolved
			stats.Unresolved += unresolved
		}

		if err := sink.AppendChunk(rows); err != nil {
			return stats, err
		}
		stats.Rows += len(rows)
		stats.Chunks++
	}
	return stats, nil
}

// substitute rewrites one column of the chunk in place: a lookup hit replaces
// the surrogate with its categorical value; a miss keeps the original value,
// rendered in its textual form so the column stays single-typed. Nil cells
// stay nil.
func substitute(rows []records.Record, col string, t *lookup.Table) (resolved, unresolved int) {
	for _, r := range rows {
		v, ok := r[col]
		if !ok || v == nil {
			continue
		}
		if cat, hit := t.Get(v); hit {
			r[col] = cat
			resolved++
			continue
		}
		if s, ok := lookup.NormalizeKey(v); ok {
			r[col] = s
		}
		unresolved++
	}
	return resolved, unresolved
}

// outputColumns derives the Parquet schema from the dataset's column set:
// restored columns become optional strings, everything else keeps its
// dataset kind.
func outputColumns(src sasfile.Source, mappings []metadata.Mapping) []parquetout.Column {
	restored := map[string]bool{}
	for _, m := range mappings {
		restored[m.OriginalColumn] = true
	}

	names := src.ColumnNames()
	kinds := src.ColumnKinds()
	cols := make([]parquetout.Column, len(names))
	for i, name := range names {
		c := parquetout.Column{Name: name}
		switch {
		case restored[name]:
			c.Kind = parquetout.String
		case kinds[i] == sasfile.KindDouble:
			c.Kind = parquetout.Double
		case kinds[i] == sasfile.KindTimestamp:
			c.Kind = parquetout.Timestamp
		default:
			c.Kind = parquetout.String
		}
		cols[i] = c
	}
	return cols
}

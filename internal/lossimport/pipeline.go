// Package lossimport runs the CSV-to-database import pipeline. A reader
// goroutine streams rows out of the export file, a transform goroutine applies
// the configured chain batch by batch, and the storage loader flushes batches
// through the repository's bulk path. The stages are connected with buffered
// channels and an errgroup so the first failure cancels the rest.
package lossimport

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"actdata/internal/config"
	"actdata/internal/metrics"
	"actdata/internal/parser/csv"
	"actdata/internal/storage"
	"actdata/internal/transform"
	"actdata/pkg/records"
)

// Stats summarizes a completed import run.
type Stats struct {
	RowsRead    int64 // rows emitted by the parser
	RowsSkipped int64 // rows soft-dropped by the parser (malformed)
	RowsDropped int64 // rows dropped for missing required fields
	RowsLoaded  int64 // rows written by the repository
}

// test seams
var (
	newRepoFn  = storage.New
	openFileFn = func(path string) (*os.File, error) { return os.Open(path) }
)

const (
	defaultBatchSize  = 5000
	defaultChanBuffer = 64
)

// Run executes the import described by the pipeline config end to end and
// returns run statistics. The destination table is created first when
// auto_create_table is set.
func Run(ctx context.Context, cfg config.Pipeline) (Stats, error) {
	imp := cfg.Import

	f, err := openFileFn(imp.Path)
	if err != nil {
		return Stats{}, fmt.Errorf("open input: %w", err)
	}
	// StreamRecords closes f.

	repo, err := newRepoFn(ctx, storage.Config{
		Kind:       imp.Storage.Kind,
		DSN:        imp.Storage.DB.DSN,
		Table:      imp.Storage.DB.Table,
		Columns:    columnNames(imp.Fields),
		KeyColumns: imp.Storage.DB.KeyColumns,
	})
	if err != nil {
		f.Close()
		return Stats{}, fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	if imp.Storage.DB.AutoCreateTable {
		start := time.Now()
		err := storage.EnsureTable(ctx, imp.Storage.Kind, repo, imp.Storage.DB.Table, imp.Fields)
		metrics.RecordStep(cfg.Job, "ensure_table", err, time.Since(start))
		if err != nil {
			f.Close()
			return Stats{}, fmt.Errorf("ensure table: %w", err)
		}
	}

	chain, err := transform.FromConfig(imp.Transform)
	if err != nil {
		f.Close()
		return Stats{}, err
	}

	stats, err := runStages(ctx, cfg, f, chain, repo)
	metrics.RecordRow(cfg.Job, "loaded", stats.RowsLoaded)
	metrics.RecordRow(cfg.Job, "skipped", stats.RowsSkipped+stats.RowsDropped)
	if err != nil {
		return stats, err
	}

	log.Printf("%s: import done: read=%d skipped=%d dropped=%d loaded=%d",
		cfg.Job, stats.RowsRead, stats.RowsSkipped, stats.RowsDropped, stats.RowsLoaded)
	return stats, nil
}

// runStages wires reader -> transform -> loader and waits for completion.
func runStages(
	ctx context.Context,
	cfg config.Pipeline,
	src *os.File,
	chain transform.Chain,
	repo storage.Repository,
) (Stats, error) {
	imp := cfg.Import
	columns := columnNames(imp.Fields)

	batchSize := cfg.Runtime.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	buffer := cfg.Runtime.ChannelBuffer
	if buffer <= 0 {
		buffer = defaultChanBuffer
	}

	recCh := make(chan records.Record, buffer)
	rowCh := make(chan []any, buffer)

	var stats Stats
	g, ctx := errgroup.WithContext(ctx)

	// Reader: stream CSV rows into records.
	g.Go(func() error {
		defer close(recCh)
		start := time.Now()
		err := csv.StreamRecords(ctx, src, columns, imp.Parser, recCh, func(line int, err error) {
			stats.RowsSkipped++
			if stats.RowsSkipped <= 400 {
				log.Printf("%s: skipping row %d: %v", cfg.Job, line, err)
			}
		})
		metrics.RecordStep(cfg.Job, "read", err, time.Since(start))
		return err
	})

	// Transform: batch records, run the chain, project to column order.
	g.Go(func() error {
		defer close(rowCh)
		batch := make([]records.Record, 0, batchSize)

		emit := func() error {
			if len(batch) == 0 {
				return nil
			}
			for _, rec := range chain.Apply(batch) {
				if missingRequired(rec, imp.Fields) {
					stats.RowsDropped++
					continue
				}
				row := make([]any, len(columns))
				for i, c := range columns {
					row[i] = rec[c]
				}
				select {
				case rowCh <- row:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			batch = batch[:0]
			return nil
		}

		for rec := range recCh {
			stats.RowsRead++
			batch = append(batch, rec)
			if len(batch) >= batchSize {
				if err := emit(); err != nil {
					return err
				}
			}
		}
		return emit()
	})

	// Loader: flush rows through the repository bulk path.
	g.Go(func() error {
		start := time.Now()
		n, err := storage.LoadBatches(ctx, columns, rowCh, batchSize, repo.CopyFrom)
		stats.RowsLoaded = n
		metrics.RecordStep(cfg.Job, "load", err, time.Since(start))
		if n > 0 {
			metrics.RecordBatches(cfg.Job, (n+int64(batchSize)-1)/int64(batchSize))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("import pipeline: %w", err)
	}
	return stats, nil
}

// columnNames returns the destination column list in field order.
func columnNames(fields []config.Field) []string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	return cols
}

// missingRequired reports whether rec lacks a value for any required field.
func missingRequired(rec records.Record, fields []config.Field) bool {
	for _, f := range fields {
		if !f.Required {
			continue
		}
		v, ok := rec[f.Name]
		if !ok || v == nil {
			return true
		}
		if s, isStr := v.(string); isStr && s == "" {
			return true
		}
	}
	return false
}

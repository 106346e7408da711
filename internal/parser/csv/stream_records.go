package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"actdata/internal/config"
	"actdata/pkg/records"
)

// StreamRecords streams CSV rows from src into records keyed by the
// target 'columns' order. It reuses csv.Reader buffers (ReuseRecord=true)
// and copies cells into each record as strings or nil.
//
// Header handling:
//   - If options has_header==true, the first line is treated as header and
//     mapped via options header_map (source-name -> canonical).
//   - We then build dest→source mapping: colIx[targetIndex] = sourceIndex.
//     Missing target columns map to -1 (NULL).
//   - If has_header==false, we assume positional mapping (colIx[i] = i).
//
// Tuning/robustness (all optional via options):
//   - comma (string; first rune used; default ',')
//   - trim_space (bool; default true)
//   - lazy_quotes (bool; default false) → csv.Reader.LazyQuotes
//   - fields_per_record (int; 0=default, -1=variable, >0=enforce)
//
// onErr(line, err) receives recoverable row errors (soft-drop).
func StreamRecords(
	ctx context.Context,
	src io.ReadCloser,
	columns []string,
	opt config.Options,
	out chan<- records.Record,
	onErr func(line int, err error),
) error {
	defer src.Close()

	// Options
	hasHeader := opt.Bool("has_header", true)
	comma := opt.Rune("comma", ',')
	trim := opt.Bool("trim_space", true)
	hm := opt.StringMap("header_map")
	lazy := opt.Bool("lazy_quotes", false)
	fieldsPer := opt.Int("fields_per_record", 0)

	cr := csv.NewReader(src)
	cr.Comma = comma
	cr.ReuseRecord = true
	cr.LazyQuotes = lazy
	if fieldsPer != 0 {
		cr.FieldsPerRecord = fieldsPer
	} else {
		cr.FieldsPerRecord = -1 // tolerant by default
	}

	// Build dest→source mapping.
	colIx := make([]int, len(columns)) // colIx[target] = source index, or -1
	for i := range colIx {
		colIx[i] = -1
	}

	line := 0
	read := func() ([]string, error) { line++; return cr.Read() }

	// Header
	if hasHeader {
		hdr, err := read()
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("read header: %w", err))
			}
			return err
		}
		srcToIdx := make(map[string]int, len(hdr))
		for i, h := range hdr {
			h = strings.TrimSpace(h)
			if i == 0 {
				h = strings.TrimPrefix(h, utf8BOM)
			}
			if mapped, ok := hm[h]; ok {
				h = mapped
			} else {
				h = strings.ReplaceAll(strings.ToLower(h), " ", "_")
			}
			srcToIdx[h] = i
		}
		for t, target := range columns {
			if si, ok := srcToIdx[target]; ok {
				colIx[t] = si
			}
		}
	} else {
		for i := range columns {
			colIx[i] = i // positional
		}
	}

	// Progress heartbeat
	const logEveryN = 50_000
	rowsSeen := 0

	for {
		// cooperative cancel
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %w", err))
			}
			continue
		}

		row := make(records.Record, len(columns))
		// Fill by TARGET name using dest→source mapping.
		for t, name := range columns {
			si := colIx[t]
			if si < 0 || si >= len(rec) {
				row[name] = nil
				continue
			}
			v := rec[si]
			if trim {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				row[name] = nil
			} else {
				row[name] = v
			}
		}

		// Emit
		select {
		case out <- row:
			rowsSeen++
			if rowsSeen%logEveryN == 0 {
				log.Printf("reader: line=%d emitted=%d", line, rowsSeen)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

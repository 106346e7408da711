// This file implements a generic, batched loader that drains typed rows from
// a channel and invokes a provided bulk-insert function (CopyFn) per batch.
//
// Backends can implement CopyFn using their most efficient primitives
// (Postgres COPY, SQLite transaction-scoped prepared INSERT, MySQL multi-row
// INSERT). On every successful flush a concise progress line is emitted with
// running totals and instantaneous rows/sec since the previous flush.
package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations should
// insert the provided rows (aligned to 'columns' order) and return the number
// of rows reported as inserted. The function should be safe for repeated
// calls and cancel promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows from 'in', groups them into batches of size
// 'batchSize', and calls 'copyFn' for each non-empty batch. It returns the
// total number of rows reported by copyFn and the first error encountered.
//
// Cancellation: returns (total, ctx.Err()) when canceled. Progress is logged
// on each successful flush.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total       int64
		batches     int64
		batch       = make([][]any, 0, batchSize)
		lastFlushTS = time.Now()
		lastTotal   int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		if err != nil {
			return err
		}
		batches++

		now := time.Now()
		elapsed := now.Sub(lastFlushTS).Seconds()
		rate := float64(total-lastTotal) / max(elapsed, 1e-9)
		log.Printf("loader: batch %d flushed, %d rows total (%.0f rows/s)", batches, total, rate)
		lastFlushTS, lastTotal = now, total

		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

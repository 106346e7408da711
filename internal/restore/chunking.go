package restore

// rowBudget computes the per-chunk row count for a dataset of sizeBytes and
// rowCount rows, given the configured memory threshold ratio and the probed
// available memory. A budget <= 0 means "process as a single chunk".
//
// The decision: when the dataset fits within ratio×available memory, no
// splitting happens. Otherwise the budget is a direct average-row-size
// estimate (dataset bytes / row count), sized so one chunk's rows occupy at
// most the memory allowance. Exact chunk boundaries are not part of the
// output contract; only row order is.
func rowBudget(sizeBytes int64, rowCount int, ratio float64, availMem uint64) int {
	if availMem == 0 {
		// Memory probe unavailable; do not split.
		return 0
	}
	allowance := int64(ratio * float64(availMem))
	if sizeBytes <= allowance {
		return 0
	}
	if rowCount <= 0 {
		return 0
	}
	avgRow := sizeBytes / int64(rowCount)
	if avgRow <= 0 {
		avgRow = 1
	}
	n := allowance / avgRow
	if n < 1 {
		n = 1
	}
	return int(n)
}

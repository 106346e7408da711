package restore

import "testing"

func TestRowBudget(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		size     int64
		rows     int
		ratio    float64
		avail    uint64
		want     int
		wantSome bool // want > 0, exact value not asserted
	}{
		{name: "probe unavailable", size: 1 << 30, rows: 1000, ratio: 0.5, avail: 0, want: 0},
		{name: "fits in allowance", size: 100, rows: 10, ratio: 0.5, avail: 1000, want: 0},
		{name: "exactly at allowance", size: 500, rows: 10, ratio: 0.5, avail: 1000, want: 0},
		{name: "no row count", size: 5000, rows: 0, ratio: 0.5, avail: 1000, want: 0},
		{name: "oversized dataset", size: 5000, rows: 100, ratio: 0.5, avail: 1000, wantSome: true},
		{name: "tiny allowance clamps to one row", size: 1 << 20, rows: 4, ratio: 0.001, avail: 1000, want: 1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := rowBudget(tc.size, tc.rows, tc.ratio, tc.avail)
			if tc.wantSome {
				if got <= 0 {
					t.Fatalf("rowBudget = %d, want > 0", got)
				}
				return
			}
			if got != tc.want {
				t.Fatalf("rowBudget = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRowBudget_BudgetRespectsAllowance(t *testing.T) {
	t.Parallel()

	// 100 rows of ~1000 bytes each, allowance 10_000 bytes -> 10 rows/chunk.
	got := rowBudget(100_000, 100, 0.01, 1_000_000)
	if got != 10 {
		t.Fatalf("rowBudget = %d, want 10", got)
	}
}

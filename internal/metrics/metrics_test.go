package metrics

import (
	"errors"
	"testing"
	"time"
)

// captureBackend records every call for assertions.
type captureBackend struct {
	counters   []string
	histograms []string
	labels     []Labels
	flushed    int
}

func (c *captureBackend) IncCounter(name string, delta float64, labels Labels) {
	c.counters = append(c.counters, name)
	c.labels = append(c.labels, labels)
}
func (c *captureBackend) ObserveHistogram(name string, value float64, labels Labels) {
	c.histograms = append(c.histograms, name)
}
func (c *captureBackend) Flush() error {
	c.flushed++
	return nil
}

// swap installs b and restores the nop backend afterwards. Tests that touch
// the global backend must not run in parallel.
func swap(t *testing.T, b Backend) {
	t.Helper()
	SetBackend(b)
	t.Cleanup(func() { backend = nopBackend{} })
}

func TestRecordStep_StatusLabels(t *testing.T) {
	c := &captureBackend{}
	swap(t, c)

	RecordStep("j", "read", nil, time.Second)
	RecordStep("j", "read", errors.New("boom"), time.Second)

	if len(c.counters) != 2 || len(c.histograms) != 2 {
		t.Fatalf("calls: counters=%d histograms=%d, want 2 each", len(c.counters), len(c.histograms))
	}
	if c.labels[0]["status"] != "success" || c.labels[1]["status"] != "failure" {
		t.Fatalf("status labels = %v / %v", c.labels[0], c.labels[1])
	}
}

func TestRecordRow_SkipsNonPositive(t *testing.T) {
	c := &captureBackend{}
	swap(t, c)

	RecordRow("j", "rows", 0)
	RecordRow("j", "rows", -5)
	RecordRow("j", "rows", 3)

	if len(c.counters) != 1 {
		t.Fatalf("counter calls = %d, want 1", len(c.counters))
	}
	if c.counters[0] != "actdata_records_total" {
		t.Fatalf("counter name = %q", c.counters[0])
	}
}

func TestSetBackend_NilKeepsCurrent(t *testing.T) {
	c := &captureBackend{}
	swap(t, c)

	SetBackend(nil)
	RecordBatches("j", 1)
	if len(c.counters) != 1 {
		t.Fatal("nil SetBackend must not replace the installed backend")
	}
}

func TestFlush_Delegates(t *testing.T) {
	c := &captureBackend{}
	swap(t, c)

	if err := Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	if c.flushed != 1 {
		t.Fatalf("flushed = %d, want 1", c.flushed)
	}
}

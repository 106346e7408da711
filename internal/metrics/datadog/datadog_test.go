package datadog

import (
	"reflect"
	"testing"

	"actdata/internal/metrics"
)

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatal("expected error for empty Addr, got nil")
	}
}

func TestNewBackend_NamespaceAndTags(t *testing.T) {
	t.Parallel()

	// UDP client construction does not require a running agent.
	b, err := NewBackend(Config{
		Addr:       "127.0.0.1:8125",
		Namespace:  "actdata",
		GlobalTags: []string{"job:lossload", "env:test"},
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	defer b.client.Close()

	b.IncCounter("rows_total", 3, metrics.Labels{"step": "load"})
	b.ObserveHistogram("step_duration_seconds", 0.25, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestTags_SortedKeyValue(t *testing.T) {
	t.Parallel()

	got := tags(metrics.Labels{"step": "parse", "backend": "sqlite"})
	want := []string{"backend:sqlite", "step:parse"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}

	if got := tags(nil); got != nil {
		t.Fatalf("tags(nil) = %v, want nil", got)
	}
}

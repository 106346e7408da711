// Package datadog implements a Datadog backend for the metrics package.
//
// It adapts the generic metrics.Backend interface to Datadog's DogStatsD
// protocol using the official statsd client library, translating metric
// labels into Datadog tags and forwarding counter and histogram observations
// to a local or remote Datadog agent. The rest of the project depends only on
// the metrics.Backend abstraction and can swap backends without other changes.
package datadog

import (
	"fmt"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"actdata/internal/metrics"
)

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///path/to/socket".
	Addr string

	// Namespace is an optional prefix added to all metric names, e.g. "actdata.".
	Namespace string

	// GlobalTags are tags applied to all metrics emitted by this backend,
	// e.g. []string{"env:prod","service:actdata"}.
	GlobalTags []string
}

// Backend is a Datadog implementation of metrics.Backend. It wraps a
// statsd.Client; the same instance is intended to be installed as the global
// metrics backend via metrics.SetBackend.
type Backend struct {
	client *statsd.Client
}

// NewBackend constructs a Datadog metrics backend from the given
// configuration. Addr is required.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}
	var opts []statsd.Option
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	_ = b.client.Count(name, int64(delta), tags(labels), 1)
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	_ = b.client.Histogram(name, value, tags(labels), 1)
}

// Flush drains buffered metrics to the agent.
func (b *Backend) Flush() error {
	if err := b.client.Flush(); err != nil {
		return fmt.Errorf("datadog: flush: %w", err)
	}
	return nil
}

// tags converts labels to Datadog "key:value" tags in a stable order.
func tags(labels metrics.Labels) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for k, v := range labels {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}

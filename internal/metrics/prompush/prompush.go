// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the common job labels (job, step, status) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint — the jobs are short-lived batch
//     runs, which is exactly the Pushgateway use case.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog) without changes to the pipelines.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"actdata/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // "actdata_step_total"
	stepDuration *prometheus.SummaryVec // "actdata_step_duration_seconds"

	recordCounter *prometheus.CounterVec // "actdata_records_total"
	batchCounter  prometheus.Counter     // "actdata_batches_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as pipeline job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "actdata"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actdata_step_total",
			Help: "Total number of job step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "actdata_step_duration_seconds",
			Help:       "Duration of job steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actdata_records_total",
			Help: "Record-level counts per kind (rows, resolved, unresolved, inserted, etc.).",
		},
		[]string{"kind"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "actdata_batches_total",
			Help: "Total number of chunks/batches flushed for this job.",
		},
	)

	for _, c := range []prometheus.Collector{stepCounter, stepDuration, recordCounter, batchCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
		recordCounter: recordCounter,
		batchCounter:  batchCounter,
	}, nil
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "actdata_step_total":
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case "actdata_records_total":
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)
	case "actdata_batches_total":
		b.batchCounter.Add(delta)
	default:
		// Unknown counters are dropped rather than crashing a batch run.
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name == "actdata_step_duration_seconds" {
		b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
	}
}

// Flush pushes the collected metrics to the Pushgateway.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}

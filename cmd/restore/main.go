package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"actdata/internal/config"
	"actdata/internal/metrics"
	"actdata/internal/metrics/datadog"
	"actdata/internal/metrics/prompush"
	"actdata/internal/restore"
)

// main is the entry point for the restore binary. It loads the pipeline
// config, optionally initializes a metrics backend, and runs the categorical
// restoration job.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		statsdAddrFlg     string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/restore.json", "pipeline config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&statsdAddrFlg, "statsd-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	var p config.Pipeline
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		fatalf("decode config: %v", err)
	}
	if p.Kind == "" {
		p.Kind = config.KindRestore
	}
	if p.Kind != config.KindRestore {
		fatalf("config %s is a %q pipeline; this binary runs %q pipelines", cfgPath, p.Kind, config.KindRestore)
	}

	// Validate pipeline config.
	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	setupMetrics(p.Job, metricsBackendFlg, pushGatewayURLFlg, statsdAddrFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("pipeline: dataset=%s metadata=%s output=%s",
			p.Restore.DatasetPath, p.Restore.MetadataPath, p.Restore.OutputPath)
	}

	stats, err := restore.Run(ctx, restore.Config{
		Job:          p.Job,
		DatasetPath:  p.Restore.DatasetPath,
		MetadataPath: p.Restore.MetadataPath,
		OutputPath:   p.Restore.OutputPath,
		LookupDir:    p.Restore.LookupDir,
		MemoryRatio:  p.Restore.MemoryRatio,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("restore: rows=%d chunks=%d resolved=%d unresolved=%d",
		stats.Rows, stats.Chunks, stats.Resolved, stats.Unresolved)
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// setupMetrics installs the requested metrics backend: flag → env → default.
func setupMetrics(job, backendName, gwURL, statsdAddr string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	if job == "" {
		job = "restore_job"
	}

	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, job)
		metrics.SetBackend(b)

	case "datadog":
		if statsdAddr == "" {
			statsdAddr = os.Getenv("DD_AGENT_ADDR")
		}
		if statsdAddr == "" {
			statsdAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       statsdAddr,
			Namespace:  "actdata",
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: addr=%v, backend=%v, job_name=%v", statsdAddr, backendName, job)
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

// Package config provides configuration models and helpers for the
// data-movement jobs.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "restore.memory_ratio",
// "import.fields[2].name"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	switch p.Kind {
	case KindRestore:
		issues = append(issues, validateRestore(p.Restore)...)
	case KindImport:
		issues = append(issues, validateImport(p.Import)...)
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "kind",
			Message:  `kind must be "restore" or "import"`,
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "kind",
			Message:  fmt.Sprintf("unknown job kind %q; ensure a matching implementation exists", p.Kind),
		})
	}

	issues = append(issues, validateRuntime(p.Runtime)...)
	return issues
}

// validateRestore validates restoration job configuration. Path existence is
// deliberately not checked here; that is a runtime precondition of the
// pipeline itself (missing-input error), not a static config defect.
func validateRestore(r RestoreConfig) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.DatasetPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "restore.dataset_path",
			Message:  "dataset_path must not be empty",
		})
	}
	if strings.TrimSpace(r.MetadataPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "restore.metadata_path",
			Message:  "metadata_path must not be empty",
		})
	}
	if strings.TrimSpace(r.OutputPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "restore.output_path",
			Message:  "output_path must not be empty",
		})
	}
	if r.MemoryRatio <= 0 || r.MemoryRatio > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "restore.memory_ratio",
			Message:  fmt.Sprintf("memory_ratio must be in (0, 1], got %v", r.MemoryRatio),
		})
	}
	return issues
}

// validateImport validates import job configuration.
func validateImport(im ImportConfig) []Issue {
	var issues []Issue

	if strings.TrimSpace(im.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "import.path",
			Message:  "import source requires a non-empty path",
		})
	}
	if len(im.Fields) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "import.fields",
			Message:  "at least one destination field is required",
		})
	}
	seen := map[string]struct{}{}
	for i, f := range im.Fields {
		if strings.TrimSpace(f.Name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("import.fields[%d].name", i),
				Message:  "field name must not be empty",
			})
			continue
		}
		if _, dup := seen[f.Name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("import.fields[%d].name", i),
				Message:  fmt.Sprintf("duplicate field name %q", f.Name),
			})
		}
		seen[f.Name] = struct{}{}

		switch strings.ToLower(f.Type) {
		case "", "text", "string", "integer", "int", "real", "float", "double",
			"date", "datetime", "timestamp", "bool", "boolean":
		default:
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("import.fields[%d].type", i),
				Message:  fmt.Sprintf("unknown field type %q; column will be treated as text", f.Type),
			})
		}
	}

	for i, t := range im.Transform {
		switch t.Kind {
		case "normalize", "coerce", "dedupe":
		case "":
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("import.transform[%d].kind", i),
				Message:  "transform kind must not be empty",
			})
		default:
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("import.transform[%d].kind", i),
				Message:  fmt.Sprintf("unknown transform kind %q", t.Kind),
			})
		}
	}

	issues = append(issues, validateStorage(im.Storage)...)
	return issues
}

// validateStorage validates the sink configuration.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "import.storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	// Known storage kinds. Unknown kinds are warnings (forward compatibility);
	// the factory will reject them at runtime if nothing registered.
	known := map[string]struct{}{
		"sqlite": {}, "postgres": {}, "mysql": {}, "mssql": {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "import.storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "import.storage.db.dsn",
			Message:  "db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "import.storage.db.table",
			Message:  "db.table must not be empty",
		})
	}
	return issues
}

// validateRuntime validates runtime tuning values.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue
	if r.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  "batch_size must be >= 0 (0 selects the default)",
		})
	}
	if r.ChannelBuffer < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.channel_buffer",
			Message:  "channel_buffer must be >= 0 (0 selects the default)",
		})
	}
	return issues
}

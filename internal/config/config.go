// Package config defines the canonical, JSON-serializable configuration model
// for the data-movement jobs. It is intentionally small, explicit, and
// dependency-free so that job documents can be loaded from disk (or other
// sources) and passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in job files
//     under configs/*.json.
//  3. Minimalism: No third-party config libraries; decoding is performed by the
//     standard library, with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "job": "restore_categoricals",
//	  "kind": "restore",
//	  "restore": {
//	    "dataset_path":  "mydata_encoded.sas7bdat",
//	    "metadata_path": "metadata.csv",
//	    "output_path":   "mydata.parquet",
//	    "memory_ratio":  0.5
//	  }
//	}
package config

import "encoding/json"

// Job kinds understood by the binaries.
const (
	KindRestore = "restore"
	KindImport  = "import"
)

// Pipeline describes one data-movement job. It is the top-level object decoded
// from a job file.
type Pipeline struct {
	// Job is a short identifier used for metrics labeling and log prefixes.
	Job string `json:"job"`

	// Kind selects the job implementation: "restore" or "import".
	Kind string `json:"kind"`

	// Restore carries options for the "restore" kind.
	Restore RestoreConfig `json:"restore"`

	// Import carries options for the "import" kind.
	Import ImportConfig `json:"import"`

	Runtime RuntimeConfig `json:"runtime"`
}

// RestoreConfig configures the categorical restoration pipeline: which encoded
// dataset to read, where the column metadata lives, where Parquet output goes,
// and when chunking activates.
type RestoreConfig struct {
	// DatasetPath is the encoded SAS7BDAT dataset.
	DatasetPath string `json:"dataset_path"`

	// MetadataPath is the CSV metadata table describing encoded columns.
	MetadataPath string `json:"metadata_path"`

	// OutputPath is the Parquet file to write.
	OutputPath string `json:"output_path"`

	// LookupDir is the directory holding lookup_<column>.csv files. When
	// empty, the metadata file's directory is used.
	LookupDir string `json:"lookup_dir"`

	// MemoryRatio is the fraction of available system memory the dataset may
	// occupy before chunked processing activates. Must be in (0, 1].
	MemoryRatio float64 `json:"memory_ratio"`
}

// ImportConfig configures the streaming CSV import job. The destination schema
// is supplied here rather than hard-coded in the importer.
type ImportConfig struct {
	// Path is the local CSV export to import.
	Path string `json:"path"`

	// Parser holds CSV parser options (has_header, comma, trim_space,
	// header_map, ...). Interpreted by the csv parser implementation.
	Parser Options `json:"parser"`

	// Fields enumerates the destination columns in order, with their logical
	// types. Order defines the insert column order.
	Fields []Field `json:"fields"`

	// Transform lists the ordered transformations applied to parsed records.
	Transform []Transform `json:"transform"`

	// Storage describes where transformed records are written.
	Storage Storage `json:"storage"`
}

// Field describes one destination column of an import job.
type Field struct {
	Name string `json:"name"`

	// Type is one of: "text", "integer", "real", "date", "datetime", "bool".
	Type string `json:"type"`

	Required bool `json:"required"`
}

// Transform defines a single transformation step. The sequence of steps forms
// the transformation chain executed by the import pipeline.
type Transform struct {
	// Kind selects the transform implementation (e.g., "normalize", "coerce",
	// "dedupe"). Implementations define their own options.
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the selected transform.
	Options Options `json:"options"`
}

// Storage selects the sink used to persist imported records.
type Storage struct {
	// Kind selects the storage implementation: "sqlite", "postgres", "mysql",
	// or "mssql".
	Kind string `json:"kind"`

	DB DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the backend connection string (file path or URL for SQLite,
	// postgresql://... for pgx, etc.).
	DSN string `json:"dsn"`

	// Table is the destination table name (optionally schema-qualified).
	Table string `json:"table"`

	// KeyColumns identifies the logical key used for dedupe semantics. Not
	// required to be a database primary key. Leave empty if not applicable.
	KeyColumns []string `json:"key_columns"`

	// AutoCreateTable creates the destination table from Fields before loading.
	AutoCreateTable bool `json:"auto_create_table"`
}

// RuntimeConfig controls batching and channel buffer sizes for the streaming
// import job. The restore job is strictly sequential and ignores it.
type RuntimeConfig struct {
	BatchSize     int `json:"batch_size"`
	ChannelBuffer int `json:"channel_buffer"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Float returns the float64 value for key or def if key is missing or not a
// number.
func (o Options) Float(key string, def float64) float64 {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Useful for single-character parser settings such as a CSV
// delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty
// map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null options
// object decodes to a non-nil, empty Options map. This removes the need to
// nil-check Options values at call sites.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

package restore

import "fmt"

// ConfigError reports an invalid pipeline parameter (e.g., an out-of-range
// memory threshold). It aborts the run before any input is touched.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("restore: configuration error: %s: %s", e.Field, e.Reason)
}

// MissingInputError reports a dataset or metadata path that does not resolve
// to an existing file.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("restore: missing input: %s", e.Path)
}

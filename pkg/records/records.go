// Package records defines the row representation shared by parsers,
// transformers, and sinks. A Record maps canonical column names to values of
// mixed type (string, float64, int64, bool, time.Time, or nil for missing).
package records

// Record is a single logical row keyed by canonical column name.
type Record map[string]any

// Clone returns a shallow copy of the record. Values are shared; only the map
// itself is duplicated.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

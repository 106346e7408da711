package builtin

import (
	"strconv"
	"time"

	"actdata/pkg/records"
)

// Coerce converts string field values to typed values. Values that fail to
// parse are left as strings; required-field enforcement happens downstream.
type Coerce struct {
	Types  map[string]string // field -> one of: int, float, bool, date, string
	Layout string            // date layout
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			switch typ {
			case "int", "integer":
				if i, err := strconv.Atoi(s); err == nil {
					r[field] = i
				}
			case "float", "real", "double":
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					r[field] = f
				}
			case "bool", "boolean":
				if b, err := strconv.ParseBool(s); err == nil {
					r[field] = b
				}
			case "date":
				if t, err := time.Parse(c.Layout, s); err == nil {
					r[field] = t
				}
			case "string", "text":
				// already string
			}
		}
	}
	return in
}

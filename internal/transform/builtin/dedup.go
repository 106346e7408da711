// Package builtin contains the reusable record transformers.
//
// DeDup collapses duplicate records by a configured business key before they
// hit the database. It removes intra-batch duplicates to cut write
// amplification and avoid constraint errors; the database should still keep
// UNIQUE/PK constraints as a backstop.
//
// Keys are hashed (xxh3) from the concatenation of configured fields as
// strings (nil -> "\x00", fields joined on "\x1f"). Run DeDup after
// Normalize/Coerce so values are consistent when compared.
package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"actdata/pkg/records"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the field names that form the business key, e.g.
	// ["policy_id","loss_date"].
	Keys []string

	// Policy selects the winner among duplicates: "keep-first" or
	// "keep-last" (default).
	Policy string
}

// Apply returns a new slice containing only the winning record for each key.
// Records missing a key field pass through untouched, appended in original
// order after the winners.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	type slot struct {
		rec   records.Record
		index int // original position in input
	}

	keyOf := func(r records.Record) (uint64, bool) {
		var b strings.Builder
		for _, k := range d.Keys {
			v, ok := r[k]
			if !ok {
				// Missing key field -> record leaves the de-dup domain.
				return 0, false
			}
			if b.Len() > 0 {
				b.WriteByte('\x1f')
			}
			switch t := v.(type) {
			case nil:
				b.WriteByte('\x00')
			case string:
				b.WriteString(t)
			default:
				b.WriteString(fmt.Sprint(t))
			}
		}
		return xxh3.HashString(b.String()), true
	}

	winners := make(map[uint64]slot, len(in))
	for i, r := range in {
		key, ok := keyOf(r)
		if !ok {
			continue
		}
		switch policy {
		case "keep-first":
			if _, exists := winners[key]; !exists {
				winners[key] = slot{rec: r, index: i}
			}
		default: // "keep-last"
			winners[key] = slot{rec: r, index: i}
		}
	}

	// Winners in stable index order, then pass-through records.
	indexes := make([]int, 0, len(winners))
	byIndex := make(map[int]records.Record, len(winners))
	for _, s := range winners {
		indexes = append(indexes, s.index)
		byIndex[s.index] = s.rec
	}
	sort.Ints(indexes)

	out := make([]records.Record, 0, len(winners))
	for _, idx := range indexes {
		out = append(out, byIndex[idx])
	}
	for _, r := range in {
		if _, ok := keyOf(r); !ok {
			out = append(out, r)
		}
	}
	return out
}

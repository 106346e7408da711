package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"actdata/pkg/records"
)

// Normalize cleans string values: non-breaking spaces become regular spaces,
// runs of whitespace collapse to one, and (optionally) combining accents are
// stripped so "Zürich" and "Zurich" compare equal for dedupe keys.
type Normalize struct {
	FoldAccents   bool
	CollapseSpace bool
}

// foldTransform decomposes to NFD, drops combining marks, recomposes to NFC.
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func (n Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.ReplaceAll(s, " ", " ")
			if n.CollapseSpace {
				s = strings.Join(strings.Fields(s), " ")
			}
			if n.FoldAccents {
				if folded, _, err := transform.String(foldTransform, s); err == nil {
					s = folded
				}
			}
			r[k] = s
		}
	}
	return in
}

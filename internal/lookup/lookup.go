// Package lookup provides the in-memory surrogate-key→categorical-value tables
// used by the restoration pipeline. Tables are loaded once per run, before the
// chunk loop, and are read-only afterwards — the pipeline exclusively owns the
// cache. Built at startup, read-only after, so no mutex is needed.
package lookup

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"actdata/internal/metadata"
)

// Table maps normalized surrogate keys to categorical values.
type Table struct {
	// Name is the lookup table reference from the metadata row.
	Name string

	// KeyColumn is the surrogate-key column the table was keyed on.
	KeyColumn string

	values map[string]string

	// Duplicates counts key collisions seen while loading. The first
	// occurrence of a key wins; later ones are dropped and counted.
	Duplicates int
}

// Get returns the categorical value for the given raw cell value. ok is false
// when the key is unknown, in which case the caller keeps the original value.
func (t *Table) Get(raw any) (string, bool) {
	k, ok := NormalizeKey(raw)
	if !ok {
		return "", false
	}
	v, ok := t.values[k]
	return v, ok
}

// Len returns the number of distinct keys in the table.
func (t *Table) Len() int { return len(t.values) }

// Registry resolves lookup tables by the metadata's table reference.
type Registry map[string]*Table

// Resolve returns the table for the given reference, or nil if not loaded.
func (r Registry) Resolve(name string) *Table { return r[name] }

// FileName returns the conventional lookup file name for an encoded column:
// lookup_<original_column_name>.csv.
func FileName(originalColumn string) string {
	return "lookup_" + originalColumn + ".csv"
}

// LoadTable reads one lookup CSV. The header must contain keyColumn; the
// categorical value is taken from the first non-key column. Duplicate keys
// keep the first occurrence and are reported via Table.Duplicates — whether
// they indicate a data-contract violation is for the caller to decide.
func LoadTable(path, name, keyColumn string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: open %s: %w", name, path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("lookup %s: empty file %s", name, path)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: read header: %w", name, err)
	}

	keyIx, valIx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		if strings.EqualFold(h, keyColumn) {
			keyIx = i
		} else if valIx < 0 {
			valIx = i
		}
	}
	if keyIx < 0 {
		return nil, fmt.Errorf("lookup %s: key column %q not in header %v", name, keyColumn, header)
	}
	if valIx < 0 {
		return nil, fmt.Errorf("lookup %s: no value column besides key %q", name, keyColumn)
	}

	t := &Table{Name: name, KeyColumn: keyColumn, values: map[string]string{}}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %s: line %d: %w", name, line, err)
		}
		if keyIx >= len(row) || valIx >= len(row) {
			return nil, fmt.Errorf("lookup %s: line %d: short row", name, line)
		}
		k, ok := NormalizeKey(strings.TrimSpace(row[keyIx]))
		if !ok {
			continue
		}
		if _, exists := t.values[k]; exists {
			t.Duplicates++
			continue
		}
		t.values[k] = row[valIx]
	}
	if t.Duplicates > 0 {
		log.Printf("lookup %s: %d duplicate key(s) in %s; first occurrence kept", name, t.Duplicates, path)
	}
	return t, nil
}

// NormalizeKey converts a raw cell value to the canonical key text so that
// numeric SAS surrogates (float64) join against textual CSV keys. Integral
// floats render without a fractional part ("1", not "1.000000"). ok is false
// for nil and for values with no sensible key form (NaN).
func NormalizeKey(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", false
		}
		return s, true
	case float64:
		if math.IsNaN(v) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return fmt.Sprint(v), true
	}
}

// LoadDir loads every lookup table referenced by the mappings, resolving file
// names by convention (lookup_<column>.csv) under dir. Each table is read
// exactly once even when several mappings share a reference.
func LoadDir(dir string, mappings []metadata.Mapping) (Registry, error) {
	reg := Registry{}
	for _, m := range mappings {
		if _, done := reg[m.LookupTable]; done {
			continue
		}
		path := filepath.Join(dir, FileName(m.OriginalColumn))
		t, err := LoadTable(path, m.LookupTable, m.LookupKey)
		if err != nil {
			return nil, err
		}
		reg[m.LookupTable] = t
	}
	return reg, nil
}

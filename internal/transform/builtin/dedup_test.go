package builtin

import (
	"reflect"
	"testing"

	"actdata/pkg/records"
)

func mk(policy string, date string, fields map[string]any) records.Record {
	r := records.Record{
		"policy_id": policy,
		"loss_date": date,
	}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func TestDeDupKeepFirst(t *testing.T) {
	in := []records.Record{
		mk("P-1", "2024-01-01", map[string]any{"status": "A"}),
		mk("P-1", "2024-01-01", map[string]any{"status": "B"}),
		mk("P-2", "2024-01-01", map[string]any{"status": "C"}),
	}
	d := DeDup{Keys: []string{"policy_id", "loss_date"}, Policy: "keep-first"}
	got := d.Apply(in)
	want := []records.Record{
		mk("P-1", "2024-01-01", map[string]any{"status": "A"}),
		mk("P-2", "2024-01-01", map[string]any{"status": "C"}),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-first: got %#v want %#v", got, want)
	}
}

func TestDeDupKeepLast(t *testing.T) {
	in := []records.Record{
		mk("P-1", "2024-01-01", map[string]any{"status": "A"}),
		mk("P-1", "2024-01-01", map[string]any{"status": "B"}),
		mk("P-2", "2024-01-01", map[string]any{"status": "C"}),
	}
	d := DeDup{Keys: []string{"policy_id", "loss_date"}, Policy: "keep-last"}
	got := d.Apply(in)
	want := []records.Record{
		mk("P-1", "2024-01-01", map[string]any{"status": "B"}),
		mk("P-2", "2024-01-01", map[string]any{"status": "C"}),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-last: got %#v want %#v", got, want)
	}
}

func TestDeDupMissingKeyPassesThrough(t *testing.T) {
	in := []records.Record{
		mk("P-1", "2024-01-01", nil),
		{"other": "x"}, // no key fields at all
	}
	d := DeDup{Keys: []string{"policy_id", "loss_date"}}
	got := d.Apply(in)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2 (keyless record preserved)", len(got))
	}
	if got[1]["other"] != "x" {
		t.Fatalf("keyless record not appended: %#v", got)
	}
}

func TestDeDupNoKeysConfigured(t *testing.T) {
	in := []records.Record{
		mk("P-1", "2024-01-01", nil),
		mk("P-1", "2024-01-01", nil),
	}
	got := DeDup{}.Apply(in)
	if len(got) != 2 {
		t.Fatalf("no keys configured must be a no-op, got %d records", len(got))
	}
}

func TestDeDupNilVsEmptyDistinct(t *testing.T) {
	in := []records.Record{
		{"policy_id": nil, "loss_date": "2024-01-01"},
		{"policy_id": "", "loss_date": "2024-01-01"},
	}
	d := DeDup{Keys: []string{"policy_id", "loss_date"}}
	got := d.Apply(in)
	if len(got) != 2 {
		t.Fatalf("nil and empty-string keys must not collide, got %d records", len(got))
	}
}

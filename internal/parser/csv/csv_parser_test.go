package csv

import (
	"strings"
	"testing"
)

func TestParse_HeaderNormalization(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("\uFEFFPolicy ID,Paid Amount\nP-1,100\n")
	p := NewParser(Options{HasHeader: true, TrimSpace: true})
	recs, skipped, err := p.Parse(in)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0]["policy_id"] != "P-1" || recs[0]["paid_amount"] != "100" {
		t.Fatalf("header not normalized: %#v", recs[0])
	}
}

func TestParse_HeaderMap(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("PolID,Amt\nP-1,100\n")
	p := NewParser(Options{
		HasHeader: true,
		HeaderMap: map[string]string{"PolID": "policy_id", "Amt": "paid"},
	})
	recs, _, err := p.Parse(in)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if recs[0]["policy_id"] != "P-1" || recs[0]["paid"] != "100" {
		t.Fatalf("header map not applied: %#v", recs[0])
	}
}

func TestParse_NoHeaderSynthesizesColumns(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("P-1,100\nP-2,200\n")
	p := NewParser(Options{ExpectedFields: 2})
	recs, _, err := p.Parse(in)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(recs) != 2 || recs[0]["col_0"] != "P-1" || recs[1]["col_1"] != "200" {
		t.Fatalf("synthesized columns wrong: %#v", recs)
	}
}

func TestParse_SoftFailWrongWidth(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("a,b\n1,2\n3\n4,5\n")
	p := NewParser(Options{HasHeader: true, LazyQuotes: true})
	recs, skipped, err := p.Parse(in)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
}

func TestParse_EmptyCellsBecomeNil(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("a,b\n1,\n")
	p := NewParser(Options{HasHeader: true})
	recs, _, err := p.Parse(in)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if recs[0]["b"] != nil {
		t.Fatalf("b = %#v, want nil for empty cell", recs[0]["b"])
	}
}

package transform

import (
	"testing"

	"actdata/internal/config"
	"actdata/pkg/records"
)

func TestFromConfig_BuildsChainInOrder(t *testing.T) {
	t.Parallel()

	chain, err := FromConfig([]config.Transform{
		{Kind: "normalize", Options: config.Options{"collapse_space": true}},
		{Kind: "coerce", Options: config.Options{"types": map[string]any{"paid": "float"}}},
		{Kind: "dedupe", Options: config.Options{"keys": []any{"policy_id"}, "policy": "keep-first"}},
	})
	if err != nil {
		t.Fatalf("FromConfig error: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("chain length = %d, want 3", len(chain))
	}

	in := []records.Record{
		{"policy_id": "P-1", "paid": " 10.5 "},
		{"policy_id": "P-1", "paid": "99"},
	}
	got := chain.Apply(in)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1 after dedupe", len(got))
	}
	if got[0]["paid"] != 10.5 {
		t.Fatalf("paid = %#v, want normalize then coerce to 10.5", got[0]["paid"])
	}
}

func TestFromConfig_UnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := FromConfig([]config.Transform{{Kind: "frobnicate"}}); err == nil {
		t.Fatal("expected error for unknown transform kind")
	}
}

func TestChain_EmptyIsNoOp(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"a": "1"}}
	got := Chain{}.Apply(in)
	if len(got) != 1 || got[0]["a"] != "1" {
		t.Fatalf("empty chain changed input: %#v", got)
	}
}

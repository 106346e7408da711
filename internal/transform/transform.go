// Package transform defines the record transformation chain applied between
// parsing and storage.
package transform

import (
	"fmt"

	"actdata/internal/config"
	"actdata/internal/transform/builtin"
	"actdata/pkg/records"
)

// Transformer rewrites a batch of records in place or replaces it.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// FromConfig builds a Chain from the pipeline's transform steps. Unknown
// kinds are rejected; the validator warns about them earlier, but a typo
// must not silently skip a step at run time.
func FromConfig(steps []config.Transform) (Chain, error) {
	chain := make(Chain, 0, len(steps))
	for i, step := range steps {
		t, err := build(step)
		if err != nil {
			return nil, fmt.Errorf("transform[%d]: %w", i, err)
		}
		chain = append(chain, t)
	}
	return chain, nil
}

func build(step config.Transform) (Transformer, error) {
	switch step.Kind {
	case "normalize":
		return builtin.Normalize{
			FoldAccents:   step.Options.Bool("fold_accents", false),
			CollapseSpace: step.Options.Bool("collapse_space", true),
		}, nil
	case "coerce":
		return builtin.Coerce{
			Types:  step.Options.StringMap("types"),
			Layout: step.Options.String("layout", "2006-01-02"),
		}, nil
	case "dedupe":
		return builtin.DeDup{
			Keys:   step.Options.StringSlice("keys"),
			Policy: step.Options.String("policy", "keep-last"),
		}, nil
	default:
		return nil, fmt.Errorf("unknown transform kind %q", step.Kind)
	}
}

package storage

import (
	"context"
	"testing"
)

// fakeRepo is a minimal Repository implementation for tests.
type fakeRepo struct {
	closed bool
}

func (f *fakeRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}
func (f *fakeRepo) Exec(ctx context.Context, sql string) error { return nil }
func (f *fakeRepo) Close()                                     { f.closed = true }

// TestRegisterAndNew_Success verifies that registering a backend enables New()
// to return the corresponding repository.
func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake"
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: kind})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if repo == nil {
		t.Fatalf("New returned nil repo")
	}

	// Ensure ListKinds contains the registered kind.
	kinds := ListKinds()
	found := false
	for _, k := range kinds {
		if k == kind {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("registered kind %q not present in ListKinds: %v", kind, kinds)
	}
}

// TestNew_Unsupported verifies that unsupported kinds return a helpful error.
func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Config{Kind: "definitely-not-registered"}); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
}

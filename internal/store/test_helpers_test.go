package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/auramodel/internal/ir"
	"github.com/roach88/auramodel/internal/testutil"
)

// createTestStore opens a store in a temp dir with sequential replica IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDGenerator("replica")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// facts builds payload-less facts from IDs.
func facts(ids ...string) []ir.Fact {
	out := make([]ir.Fact, len(ids))
	for i, id := range ids {
		out[i] = ir.NewFact(ir.FactID(id))
	}
	return out
}

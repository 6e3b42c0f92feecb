package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/watchset/internal/ir"
	"github.com/roach88/watchset/internal/registry"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testConfig() registry.Config[string] {
	return registry.Config[string]{
		Lists:    []string{"baseline", "watch", "hold"},
		Universe: []string{"a", "b", "c"},
		BaseSN:   0,
		Windows:  map[string]int64{"watch": 5},
	}
}

// createTestSession writes a session with the standard test config.
func createTestSession(t *testing.T, s *Store, id string) Session {
	t.Helper()
	sess, err := NewSession(id, testConfig())
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	if err := s.WriteSession(context.Background(), sess); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	return sess
}

// createTestRecord builds a record with a real content-addressed ID.
func createTestRecord(sessionID string, seq int64, op ir.Op, currentSN int64) ir.Record {
	rec, err := ir.NewRecord(sessionID, seq, op, currentSN)
	if err != nil {
		panic(err)
	}
	return rec
}

package testutil

import (
	"path/filepath"
	"testing"

	"taskflow/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewFileStore creates a SQLiteStore backed by a file in a temp directory
// and returns the store with its path, so tests can close and reopen it to
// exercise restart behavior.
func NewFileStore(t *testing.T) (*store.SQLiteStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "taskflow.db")
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("creating file-backed test store: %v", err)
	}

	return s, path
}

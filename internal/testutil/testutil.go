// Package testutil provides small test fixtures shared across the engine's
// package tests, in the same spirit as the teacher's testutil package:
// throwaway on-disk resources created in a temp dir and torn down via
// t.Cleanup.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mizukoshi/sqlengine/internal/store"
)

// OpenStore creates a fresh Store backed by a temp-directory file, removed
// automatically when the test ends.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()

	dir, err := os.MkdirTemp("", "sqlengine-test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

package testsupport

import (
	"testing"

	"sc2dataset/internal/joblog"
)

// MustOpenStore opens a job ledger for tests and registers cleanup.
func MustOpenStore(t testing.TB, dir string) *joblog.Store {
	t.Helper()

	store, err := joblog.Open(dir)
	if err != nil {
		t.Fatalf("joblog.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

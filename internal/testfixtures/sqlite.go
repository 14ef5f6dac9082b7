package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a migrated SQLite file
// in a temporary directory.
type SQLiteHarness struct {
	Store     *sqlite.Store
	Classes   persistence.ClassRepository
	AdHoc     persistence.AdHocSessionRepository
	Directory persistence.Directory

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a fresh database. Callers may invoke
// Close early; it is also registered with tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "scheduler.db")
	store, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store:     store,
		Classes:   store,
		AdHoc:     store,
		Directory: store,
		cleanup: func() {
			_ = store.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}

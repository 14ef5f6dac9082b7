package migration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func newTestManager(t *testing.T, files fstest.MapFS) (*Manager, *SQLiteExecutor) {
	t.Helper()

	db, err := Open(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "migrate.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	executor := NewSQLiteExecutor(db)
	return NewManager(NewFileScanner(files), executor, "db", nil), executor
}

func TestManager_RunMigrations(t *testing.T) {
	ctx := context.Background()
	files := fstest.MapFS{
		"db/001_create_a.sql": {Data: []byte("CREATE TABLE a (id TEXT PRIMARY KEY);")},
		"db/002_create_b.sql": {Data: []byte("CREATE TABLE b (id TEXT PRIMARY KEY, a_id TEXT REFERENCES a(id));\nCREATE INDEX idx_b_a ON b(a_id);")},
	}
	manager, executor := newTestManager(t, files)

	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	applied, err := executor.GetAppliedVersions(ctx)
	if err != nil {
		t.Fatalf("GetAppliedVersions failed: %v", err)
	}
	if len(applied) != 2 || applied[0].Version != "001" || applied[1].Version != "002" {
		t.Fatalf("unexpected applied migrations: %#v", applied)
	}
	if applied[1].Checksum != Checksum(files["db/002_create_b.sql"].Data) {
		t.Errorf("checksum not recorded: %q", applied[1].Checksum)
	}

	// A second run is a no-op.
	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}
	status, err := manager.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if status.CurrentVersion != "002" || status.PendingCount != 0 {
		t.Fatalf("unexpected status: %#v", status)
	}
}

func TestManager_FailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	files := fstest.MapFS{
		"db/001_create_a.sql": {Data: []byte("CREATE TABLE a (id TEXT PRIMARY KEY);")},
		"db/002_broken.sql":   {Data: []byte("CREATE TABLE c (id TEXT);\nINSERT INTO missing_table VALUES (1);")},
	}
	manager, executor := newTestManager(t, files)

	err := manager.RunMigrations(ctx)
	if !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}

	applied, err := executor.GetAppliedVersions(ctx)
	if err != nil {
		t.Fatalf("GetAppliedVersions failed: %v", err)
	}
	if len(applied) != 1 || applied[0].Version != "001" {
		t.Fatalf("expected only 001 applied, got %#v", applied)
	}
}

func TestManager_DetectsEditedMigration(t *testing.T) {
	ctx := context.Background()
	files := fstest.MapFS{
		"db/001_create_a.sql": {Data: []byte("CREATE TABLE a (id TEXT PRIMARY KEY);")},
	}
	manager, _ := newTestManager(t, files)
	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	files["db/001_create_a.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE a (id TEXT PRIMARY KEY, name TEXT);")}
	if err := manager.RunMigrations(ctx); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestManager_RejectsGaps(t *testing.T) {
	files := fstest.MapFS{
		"db/001_create_a.sql": {Data: []byte("CREATE TABLE a (id TEXT);")},
		"db/003_create_c.sql": {Data: []byte("CREATE TABLE c (id TEXT);")},
	}
	manager, _ := newTestManager(t, files)

	if err := manager.RunMigrations(context.Background()); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

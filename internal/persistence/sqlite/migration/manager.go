package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager orchestrates scanning, verification and execution of migrations.
type Manager struct {
	scanner  FileScanner
	executor Executor
	dir      string
	logger   *slog.Logger
}

// NewManager creates a Manager reading migrations from dir. A nil logger
// falls back to slog.Default.
func NewManager(scanner FileScanner, executor Executor, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scanner:  scanner,
		executor: executor,
		dir:      dir,
		logger:   logger.With(slog.String("component", "migration")),
	}
}

// RunMigrations executes all pending migrations in version order.
func (m *Manager) RunMigrations(ctx context.Context) error {
	started := time.Now()

	status, err := m.GetMigrationStatus(ctx)
	if err != nil {
		return err
	}
	if status.PendingCount == 0 {
		m.logger.DebugContext(ctx, "schema up to date", slog.String("version", status.CurrentVersion))
		return nil
	}

	m.logger.InfoContext(ctx, "applying migrations",
		slog.String("from_version", status.CurrentVersion),
		slog.Int("pending", status.PendingCount),
	)
	for i, migration := range status.PendingMigrations {
		m.logger.InfoContext(ctx, "executing migration",
			slog.String("version", migration.Version),
			slog.String("description", migration.Description),
			slog.Int("position", i+1),
		)
		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed",
				slog.String("version", migration.Version),
				slog.String("file", migration.FilePath),
				slog.Any("error", err),
			)
			return NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}
	}

	m.logger.InfoContext(ctx, "migrations applied",
		slog.Int("count", status.PendingCount),
		slog.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// GetMigrationStatus compares the migration files with the version table.
// Applied migrations must still exist with an unchanged checksum and the
// available versions must form a gap free sequence.
func (m *Manager) GetMigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}
	available, err := m.scanner.ScanMigrations(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}
	if err := validateSequence(available, applied); err != nil {
		return nil, err
	}

	appliedByVersion := make(map[string]AppliedMigration, len(applied))
	for _, a := range applied {
		appliedByVersion[a.Version] = a
	}

	status := &MigrationStatus{AppliedMigrations: applied}
	for _, migration := range available {
		a, ok := appliedByVersion[migration.Version]
		if !ok {
			status.PendingMigrations = append(status.PendingMigrations, migration)
			continue
		}
		if a.Checksum != "" && a.Checksum != migration.Checksum {
			return nil, NewMigrationError(migration.Version, migration.FilePath, "verify checksum",
				fmt.Errorf("%w: applied %s, file %s", ErrChecksumMismatch, a.Checksum, migration.Checksum))
		}
		status.CurrentVersion = migration.Version
	}
	status.PendingCount = len(status.PendingMigrations)
	return status, nil
}

func validateSequence(available []Migration, applied []AppliedMigration) error {
	known := make(map[int]bool, len(available))
	for i, migration := range available {
		n := versionNumber(migration.Version)
		if i > 0 && n != versionNumber(available[i-1].Version)+1 {
			return fmt.Errorf("%w: missing migration version %03d in sequence", ErrVersionConflict, versionNumber(available[i-1].Version)+1)
		}
		known[n] = true
	}
	for _, a := range applied {
		if !known[versionNumber(a.Version)] {
			return fmt.Errorf("%w: applied migration %s not found in available migrations", ErrVersionConflict, a.Version)
		}
	}
	return nil
}

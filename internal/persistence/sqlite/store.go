// Package sqlite implements the persistence repositories on SQLite through
// the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"embed"
	"log/slog"
	"time"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

// Store bundles the SQLite repositories over one connection pool.
type Store struct {
	*ClassRepository
	*AdHocRepository
	*DirectoryRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

var (
	_ persistence.ClassRepository        = (*Store)(nil)
	_ persistence.AdHocSessionRepository = (*Store)(nil)
	_ persistence.Directory              = (*Store)(nil)
)

// Option customises Open.
type Option func(*storeOptions)

type storeOptions struct {
	busyTimeout time.Duration
	logger      *slog.Logger
	retry       RetryConfig
}

// WithBusyTimeout sets how long a connection waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *storeOptions) { o.busyTimeout = d }
}

// WithLogger sets the logger used for migrations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) { o.logger = logger }
}

// WithRetry overrides the retry policy for writes.
func WithRetry(cfg RetryConfig) Option {
	return func(o *storeOptions) { o.retry = cfg }
}

// Open connects to the database file at path. Call Migrate before use.
func Open(path string, opts ...Option) (*Store, error) {
	options := storeOptions{
		busyTimeout: 5 * time.Second,
		logger:      slog.Default(),
		retry:       DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	config := migration.DefaultSQLiteConfig(path)
	config.BusyTimeout = options.busyTimeout

	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}

	retry := NewRetryHelper(options.retry)
	return &Store{
		ClassRepository:     NewClassRepository(pool, retry),
		AdHocRepository:     NewAdHocRepository(pool, retry),
		DirectoryRepository: NewDirectoryRepository(pool),
		pool:                pool,
		logger:              options.logger,
	}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrations().RunMigrations(ctx)
}

// MigrationStatus reports the applied and pending schema migrations.
func (s *Store) MigrationStatus(ctx context.Context) (*migration.MigrationStatus, error) {
	return s.migrations().GetMigrationStatus(ctx)
}

func (s *Store) migrations() *migration.Manager {
	return migration.NewManager(
		migration.NewFileScanner(migrationFiles),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrationDir,
		s.logger,
	)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// placeholders returns "?, ?, ..." with n entries.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 3*n)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '?')
	}
	return string(b)
}

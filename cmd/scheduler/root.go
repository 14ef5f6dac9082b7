package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/class-scheduler/internal/application"
	"github.com/example/class-scheduler/internal/config"
	"github.com/example/class-scheduler/internal/logging"
	"github.com/example/class-scheduler/internal/persistence/sqlite"
	"github.com/example/class-scheduler/internal/recurrence"
	"github.com/example/class-scheduler/internal/scheduler"
	"github.com/example/class-scheduler/internal/timemath"
)

type rootOptions struct {
	envFile string
	dbPath  string
}

// runtime is everything a command needs once configuration is loaded and
// the database is open.
type runtime struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *sqlite.Store
	service *application.ClassService
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "scheduler",
		Short: "scheduler manages recurring classes and their sessions",
		Long: `scheduler creates classes from TOML files, moves, skips and deletes their
sessions, books one-off sessions and resolves what a user should join next.
Every command prints JSON on stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file layered under the environment")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides SCHEDULER_DB_PATH)")

	root.AddCommand(
		newMigrateCommand(opts),
		newClassCommand(opts),
		newSessionCommand(opts),
		newAdHocCommand(opts),
		newDirectoryCommand(opts),
		newUpcomingCommand(opts),
	)
	return root
}

// run loads configuration, opens the store and hands both to fn. The store
// is closed when fn returns.
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) (err error) {
	cfg, err := config.LoadWithDotEnv(o.envFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if o.dbPath != "" {
		cfg.DatabasePath = o.dbPath
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel).With("command", cmd.CommandPath())
	ctx := logging.ContextWithLogger(cmd.Context(), logger)

	store, err := sqlite.Open(cfg.DatabasePath, sqlite.WithBusyTimeout(cfg.BusyTimeout), sqlite.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	service := application.NewClassService(application.ClassServiceDeps{
		Classes:           store,
		AdHoc:             store,
		Directory:         store,
		Scheduler:         scheduler.New(recurrence.NewEngine(timemath.NewZones(cfg.ZoneCacheSize))),
		Now:               time.Now,
		Logger:            logger,
		LobbyURL:          cfg.LobbyURL,
		DirectoryCacheTTL: cfg.DirectoryCacheTTL,
		SaveAttempts:      cfg.SaveAttempts,
	})

	return fn(ctx, &runtime{cfg: cfg, logger: logger, store: store, service: service})
}

func writeJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.store.Migrate(ctx); err != nil {
					return fmt.Errorf("apply migrations: %w", err)
				}
				status, err := rt.store.MigrationStatus(ctx)
				if err != nil {
					return fmt.Errorf("read migration status: %w", err)
				}
				return writeJSON(cmd, map[string]any{
					"database":        rt.cfg.DatabasePath,
					"current_version": status.CurrentVersion,
					"applied":         len(status.AppliedMigrations),
					"pending":         status.PendingCount,
				})
			})
		},
	}
}

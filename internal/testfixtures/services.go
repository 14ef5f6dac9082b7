package testfixtures

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/class-scheduler/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults. Logs are
// discarded unless WithLogger is given.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Logger == nil {
		factory.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger routes service logs to logger.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// ClassServiceDeps captures dependencies for constructing a class service.
// Zero fields fall back to the factory's clock, IDs, logger and scheduler.
type ClassServiceDeps struct {
	Classes     application.ClassStore
	AdHoc       application.AdHocStore
	Directory   application.UserDirectory
	IDGenerator func() uuid.UUID
	Now         func() time.Time
	Logger      *slog.Logger
	LobbyURL    string
}

// NewClassService builds a class service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewClassService(deps ClassServiceDeps) *application.ClassService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.UUIDFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	logger := deps.Logger
	if logger == nil {
		logger = f.Logger
	}
	return application.NewClassService(application.ClassServiceDeps{
		Classes:     deps.Classes,
		AdHoc:       deps.AdHoc,
		Directory:   deps.Directory,
		Scheduler:   Scheduler(),
		IDGenerator: idGen,
		Now:         now,
		Logger:      logger,
		LobbyURL:    deps.LobbyURL,
	})
}

// NewSQLiteClassService wires a class service to a fresh migrated SQLite
// database.
func (f *ServiceFactory) NewSQLiteClassService(tb testing.TB) (*application.ClassService, *SQLiteHarness) {
	tb.Helper()
	harness := NewSQLiteHarness(tb)
	svc := f.NewClassService(ClassServiceDeps{
		Classes:   harness.Classes,
		AdHoc:     harness.AdHoc,
		Directory: harness.Directory,
		LobbyURL:  "https://lobby.example.com/session/upcoming",
	})
	return svc, harness
}

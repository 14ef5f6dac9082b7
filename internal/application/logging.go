package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/class-scheduler/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContextOr(ctx, base)
	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// logFailure records a failed operation. Invariant violations are flagged as
// fatal: they mean a mutation is broken, not that the input was bad.
func logFailure(ctx context.Context, logger *slog.Logger, msg string, err error) {
	if errors.Is(err, ErrInvariantViolation) {
		logger.ErrorContext(ctx, msg, "error", err, "error_kind", ErrorKind(err), "fatal", true)
		return
	}
	logger.ErrorContext(ctx, msg, "error", err, "error_kind", ErrorKind(err))
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrDateOccupied):
		return "date_occupied"
	case errors.Is(err, ErrInvariantViolation):
		return "invariant_violation"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}

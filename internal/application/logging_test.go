package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/example/class-scheduler/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: fmt.Errorf("wrap: %w", ErrNotFound), want: "not_found"},
		{err: ErrAlreadyExists, want: "already_exists"},
		{err: ErrConflict, want: "conflict"},
		{err: ErrDateOccupied, want: "date_occupied"},
		{err: ErrInvariantViolation, want: "invariant_violation"},
		{err: &ValidationError{FieldErrors: map[string]string{"name": "required"}}, want: "validation"},
		{err: io.EOF, want: "unexpected"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&base, nil))
	ctx := logging.ContextWithLogger(context.Background(), slog.New(slog.NewJSONHandler(&scoped, nil)))

	serviceLogger(ctx, baseLogger, "ClassService", "SkipSession", "session", "MTSTANDG1-211206").Info("hello")

	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %s", base.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(scoped.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["service"] != "ClassService" || entry["operation"] != "SkipSession" || entry["session"] != "MTSTANDG1-211206" {
		t.Fatalf("unexpected attributes: %v", entry)
	}
}

func TestLogFailureMarksInvariantViolationsFatal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logFailure(context.Background(), logger, "failed", fmt.Errorf("skip: %w", ErrInvariantViolation))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["level"] != "ERROR" || entry["fatal"] != true || entry["error_kind"] != "invariant_violation" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

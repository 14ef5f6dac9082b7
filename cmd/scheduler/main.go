package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/example/class-scheduler/internal/application"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}

func reportError(w io.Writer, err error) {
	var vErr *application.ValidationError
	if errors.As(err, &vErr) && len(vErr.FieldErrors) > 0 {
		fields := make([]string, 0, len(vErr.FieldErrors))
		for field := range vErr.FieldErrors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		fmt.Fprintln(w, "error: validation failed")
		for _, field := range fields {
			fmt.Fprintf(w, "  %s: %s\n", field, vErr.FieldErrors[field])
		}
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// exitCode maps failures onto distinct exit statuses so scripts can tell
// bad input from a missing record or a lost race.
func exitCode(err error) int {
	switch application.ErrorKind(err) {
	case "validation":
		return 2
	case "not_found":
		return 3
	case "already_exists", "conflict", "date_occupied":
		return 4
	default:
		return 1
	}
}

package logging

import (
	"io"
	"log/slog"
	"strings"
)

// NewHandler returns a JSON handler when format is "json" and a text handler
// otherwise, both filtering below level.
func NewHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, options)
	}
	return slog.NewTextHandler(w, options)
}

// New builds a logger over NewHandler.
func New(w io.Writer, format string, level slog.Leveler) *slog.Logger {
	return slog.New(NewHandler(w, format, level))
}

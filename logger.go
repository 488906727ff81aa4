package main

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a structured slog.Logger with the given level. format
// "text" selects the text handler; anything else is JSON.
func NewLogger(level slog.Leveler, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

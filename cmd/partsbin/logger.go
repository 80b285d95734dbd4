package main

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-partsbin/pkg/events"
)

// newLogger builds a text or JSON logger writing to w. It does not touch the
// global logger.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	level, err := events.ParseLevel(levelStr)
	if err != nil {
		level = events.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level.Slog()}

	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

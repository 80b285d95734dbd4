package events

import (
	"context"
	"log/slog"
)

// SlogListener forwards log.* and error events to logger.
func SlogListener(logger *slog.Logger) Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return func(evt Event) {
		attrs := make([]slog.Attr, 0, 3)
		if evt.RunID != "" {
			attrs = append(attrs, slog.String("run_id", evt.RunID))
		}
		if evt.Data != nil {
			attrs = append(attrs, slog.Any("data", evt.Data))
		}

		if evt.Name == Error {
			msg := evt.Message
			if msg == "" {
				msg = "parse failed"
			}
			attrs = append(attrs, slog.Any("error", evt.Err))
			logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
			return
		}
		logger.LogAttrs(context.Background(), evt.Level.Slog(), evt.Message, attrs...)
	}
}

// Forward attaches logger to bus for log.* and error events and returns a
// function that detaches it.
func Forward(bus *Bus, logger *slog.Logger) func() {
	listener := SlogListener(logger)
	offLog := bus.On(LogPrefix+".*", listener)
	offErr := bus.On(Error, listener)
	return func() {
		offLog()
		offErr()
	}
}

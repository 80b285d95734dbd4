package engine

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-partsbin/pkg/config"
	"github.com/goliatone/go-partsbin/pkg/events"
	"github.com/goliatone/go-partsbin/pkg/source"
	"github.com/goliatone/go-partsbin/pkg/validation"
)

// Option mutates the engine configuration.
type Option func(*Engine)

// WithReader overrides the file-source reader. The default reads the local
// filesystem only.
func WithReader(reader source.Reader) Option {
	return func(e *Engine) {
		e.reader = reader
	}
}

// WithWatcher overrides the watcher used by Watch.
func WithWatcher(watcher source.Watcher) Option {
	return func(e *Engine) {
		e.watcher = watcher
	}
}

// WithBus shares an existing event bus.
func WithBus(bus *events.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithLogger forwards log.* and error events to logger. Log events below the
// log.level setting are dropped.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithConfig seeds the engine with an existing settings store.
func WithConfig(store *config.Store) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithMetrics registers parse metrics with registerer.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registerer = registerer
	}
}

// WithTransformer sets the initial transformer.
func WithTransformer(transformer Transformer) Option {
	return func(e *Engine) {
		e.transformer = transformer
	}
}

// WithValidator swaps the configuration checks.
func WithValidator(validator validation.Validator) Option {
	return func(e *Engine) {
		e.validator = validator
	}
}

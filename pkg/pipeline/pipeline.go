// Package pipeline runs ordered chains of record plugins. Plugins execute one at
// a time in registration order and the first failure stops the chain.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Plugin transforms a record set. eng is the engine reference handed to every
// plugin in the chain.
type Plugin[E any] func(ctx context.Context, records []any, eng E) ([]any, error)

// StepError reports which plugin in a chain failed.
type StepError struct {
	Index int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pipeline: plugin %d: %v", e.Index, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline stores plugin registrations for one target.
type Pipeline[E any] struct {
	mu      sync.RWMutex
	plugins []Plugin[E]
}

// New creates an empty pipeline.
func New[E any]() *Pipeline[E] {
	return &Pipeline[E]{}
}

// Add appends plugin to the chain.
func (p *Pipeline[E]) Add(plugin Plugin[E]) error {
	if plugin == nil {
		return errors.New("pipeline: plugin is nil")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plugins = append(p.plugins, plugin)
	return nil
}

// Len reports how many plugins are registered.
func (p *Pipeline[E]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.plugins)
}

// Snapshot copies the current registration list. Plugins added afterwards do
// not appear in the snapshot.
func (p *Pipeline[E]) Snapshot() []Plugin[E] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Plugin[E], len(p.plugins))
	copy(out, p.plugins)
	return out
}

// Process runs the plugins registered at the time of the call.
func (p *Pipeline[E]) Process(ctx context.Context, initial []any, eng E) ([]any, error) {
	return Run(ctx, p.Snapshot(), initial, eng)
}

// Run feeds initial through plugins in order. Each plugin receives the previous
// plugin's output. On failure the partial output is discarded and the error is
// returned as a *StepError.
func Run[E any](ctx context.Context, plugins []Plugin[E], initial []any, eng E) ([]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	records := initial
	if records == nil {
		records = []any{}
	}
	for idx, plugin := range plugins {
		if err := ctx.Err(); err != nil {
			return nil, &StepError{Index: idx, Err: err}
		}
		next, err := call(ctx, plugin, records, eng)
		if err != nil {
			return nil, &StepError{Index: idx, Err: err}
		}
		if next == nil {
			next = []any{}
		}
		records = next
	}
	return records, nil
}

func call[E any](ctx context.Context, plugin Plugin[E], records []any, eng E) (out []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			if rerr, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", rerr)
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if plugin == nil {
		return records, nil
	}
	return plugin(ctx, records, eng)
}

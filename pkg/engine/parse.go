package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-partsbin/pkg/collection"
	"github.com/goliatone/go-partsbin/pkg/events"
	"github.com/goliatone/go-partsbin/pkg/pipeline"
	"github.com/goliatone/go-partsbin/pkg/source"
	"github.com/goliatone/go-partsbin/pkg/validation"
)

// Result is the pair of collections published by a successful parse.
type Result struct {
	Components *collection.Collection
	Files      *collection.Collection
}

// Callback receives the outcome of ParseAsync. On failure components and files
// are nil.
type Callback func(err error, components, files *collection.Collection)

// Pending is an in-flight ParseAsync call.
type Pending struct {
	done   chan struct{}
	result Result
	err    error
}

// Wait blocks until the parse finishes and any callback has returned.
func (p *Pending) Wait() (Result, error) {
	<-p.done
	return p.result, p.err
}

// Done is closed once Wait would return without blocking.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

type stagePlan struct {
	plugins []Plugin
	methods []Method
}

// parsePlan is the registration snapshot a parse runs against. Registrations
// made while the parse is running apply to the next one.
type parsePlan struct {
	runID       string
	sources     []string
	transformer Transformer
	files       stagePlan
	components  stagePlan
}

func (e *Engine) snapshot() parsePlan {
	e.mu.RLock()
	sources := make([]string, len(e.sources))
	copy(sources, e.sources)
	transformer := e.transformer
	e.mu.RUnlock()

	return parsePlan{
		runID:       uuid.NewString(),
		sources:     sources,
		transformer: transformer,
		files:       stagePlan{plugins: e.files.plugins.Snapshot(), methods: e.files.methods.All()},
		components:  stagePlan{plugins: e.components.plugins.Snapshot(), methods: e.components.methods.All()},
	}
}

type runningParseKey struct{}

// Parse runs one full parse. Only one parse runs at a time per engine; later
// calls wait for the running one and give up when ctx ends. Plugins and
// transformers that call Parse with the ctx they were handed get
// ErrParseInProgress instead of waiting on themselves. The files
// collection is published before the transformer runs, so a components-stage
// failure leaves the new files collection next to the previous components
// collection.
func (e *Engine) Parse(ctx context.Context) (Result, error) {
	if ctx == nil {
		return Result{}, ErrNilContext
	}
	if e.initialiseErr != nil {
		return Result{}, e.initialiseErr
	}
	if running, _ := ctx.Value(runningParseKey{}).(*Engine); running == e {
		return Result{}, ErrParseInProgress
	}

	select {
	case e.flight <- struct{}{}:
	case <-ctx.Done():
		return Result{}, fmt.Errorf("engine: wait for running parse: %w", ctx.Err())
	}
	defer func() { <-e.flight }()
	ctx = context.WithValue(ctx, runningParseKey{}, e)

	plan := e.snapshot()
	started := time.Now()
	e.bus.Emit(events.Event{
		Name:  events.ParseStart,
		RunID: plan.runID,
		Data:  map[string]any{"sources": plan.sources},
	})

	result, err := e.execute(ctx, plan)
	e.metrics.recordParse(err, time.Since(started))
	if err != nil {
		e.bus.Emit(events.Event{
			Name:    events.Error,
			RunID:   plan.runID,
			Message: "parse failed",
			Err:     err,
		})
		return Result{}, err
	}

	e.bus.Emit(events.Event{
		Name:       events.ParseComplete,
		RunID:      plan.runID,
		Files:      result.Files,
		Components: result.Components,
	})
	return result, nil
}

// ParseAsync runs Parse on a new goroutine. cb, when non-nil, is checked by
// the validator and then called with the outcome before Wait returns. A
// rejected callback fails the call without parsing. A panicking callback is
// recovered and reported by Wait and as an error event.
func (e *Engine) ParseAsync(ctx context.Context, cb Callback) *Pending {
	pending := &Pending{done: make(chan struct{})}
	if cb != nil {
		if err := e.validator.Callback(cb); err != nil {
			pending.err = err
			close(pending.done)
			return pending
		}
	}
	go func() {
		defer close(pending.done)
		pending.result, pending.err = e.Parse(ctx)
		if cb == nil {
			return
		}
		if err := e.callback(cb, pending.result, pending.err); err != nil {
			pending.result, pending.err = Result{}, err
		}
	}()
	return pending
}

func (e *Engine) callback(cb Callback, result Result, parseErr error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine: parse callback: panic: %v", r)
			e.bus.Emit(events.Event{Name: events.Error, Message: "parse callback failed", Err: err})
		}
	}()
	if parseErr != nil {
		cb(parseErr, nil, nil)
		return nil
	}
	cb(nil, result.Components, result.Files)
	return nil
}

func (e *Engine) execute(ctx context.Context, plan parsePlan) (Result, error) {
	raw, err := e.read(ctx, plan)
	if err != nil {
		return Result{}, err
	}

	fileRecords, err := pipeline.Run(ctx, plan.files.plugins, raw, e)
	if err != nil {
		return Result{}, &PipelineError{Stage: StageFiles, Err: err}
	}
	files := collection.New(fileRecords)
	if err := collection.BindAll(files, plan.files.methods, e); err != nil {
		return Result{}, &PipelineError{Stage: StageFiles, Err: err}
	}
	e.publish(TargetFiles, files)
	e.emitLog(plan.runID, events.LevelDebug, "files published", map[string]any{"count": files.Len()})

	if err := ctx.Err(); err != nil {
		return Result{}, &PipelineError{Stage: StageTransform, Err: err}
	}
	initial, err := transform(ctx, plan.transformer, files.ToArray())
	if err != nil {
		return Result{}, &PipelineError{Stage: StageTransform, Err: err}
	}

	componentRecords, err := pipeline.Run(ctx, plan.components.plugins, initial, e)
	if err != nil {
		return Result{}, &PipelineError{Stage: StageComponents, Err: err}
	}
	components := collection.New(componentRecords)
	if err := collection.BindAll(components, plan.components.methods, e); err != nil {
		return Result{}, &PipelineError{Stage: StageComponents, Err: err}
	}
	e.publish(TargetComponents, components)
	e.emitLog(plan.runID, events.LevelDebug, "components published", map[string]any{"count": components.Len()})

	return Result{Components: components, Files: files}, nil
}

func (e *Engine) read(ctx context.Context, plan parsePlan) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("engine: read sources: %w", err)
	}
	reader := e.reader
	if limit := e.store.GetInt("parse.concurrency", 0); limit > 0 {
		if limited, ok := reader.(source.Limited); ok {
			reader = limited.WithLimit(limit)
		}
	}
	records, err := reader.ReadAll(ctx, plan.sources)
	if err != nil {
		return nil, fmt.Errorf("engine: read sources: %w", err)
	}
	e.emitLog(plan.runID, events.LevelDebug, "sources read", map[string]any{"count": len(records)})
	return records, nil
}

func transform(ctx context.Context, transformer Transformer, files []any) (out []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	out, err = transformer.Transform(ctx, files)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func (e *Engine) publish(target Target, c *collection.Collection) {
	e.mu.Lock()
	if target == TargetFiles {
		e.filesState = c
	} else {
		e.componentsState = c
	}
	e.mu.Unlock()
	e.metrics.recordPublish(target, c.Len())
}

// Watch watches the configured sources plus extraPaths. With a nil onChange
// every change triggers a parse; parse failures surface as error events.
func (e *Engine) Watch(ctx context.Context, extraPaths []string, onChange func(source.Change)) (*source.WatchHandle, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	paths := e.Sources()
	for _, raw := range extraPaths {
		if err := e.validator.Src(raw); err != nil {
			return nil, err
		}
		path, err := source.NormalizePath(raw)
		if err != nil {
			return nil, &validation.Error{Kind: validation.InvalidSrc, Field: raw, Message: err.Error()}
		}
		if !slices.Contains(paths, path) {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return nil, &validation.Error{Kind: validation.InvalidSrc, Message: "no sources to watch"}
	}

	if onChange == nil {
		onChange = func(source.Change) {
			_, _ = e.Parse(ctx)
		}
	}
	handler := func(change source.Change) {
		e.emitLog("", events.LevelDebug, "source changed", map[string]any{"path": change.Path, "op": change.Op})
		onChange(change)
	}

	handle, err := e.watcher.Watch(ctx, paths, handler)
	if err != nil {
		return nil, fmt.Errorf("engine: watch: %w", err)
	}
	return handle, nil
}

// Package engine wires the files and components pipelines together. A parse
// reads the configured sources, runs the files plugins, publishes the files
// collection, hands its records to the transformer, runs the components
// plugins and publishes the components collection.
package engine

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-partsbin/pkg/collection"
	"github.com/goliatone/go-partsbin/pkg/commands"
	"github.com/goliatone/go-partsbin/pkg/config"
	"github.com/goliatone/go-partsbin/pkg/events"
	"github.com/goliatone/go-partsbin/pkg/pipeline"
	"github.com/goliatone/go-partsbin/pkg/render"
	"github.com/goliatone/go-partsbin/pkg/source"
	"github.com/goliatone/go-partsbin/pkg/validation"
)

// Target names a processing lane.
type Target string

const (
	TargetFiles      Target = "files"
	TargetComponents Target = "components"
)

// Plugin is a pipeline step receiving the engine.
type Plugin = pipeline.Plugin[*Engine]

// Handler is a collection method handler receiving the engine.
type Handler = collection.Handler[*Engine]

// Method is a named Handler.
type Method = collection.Method[*Engine]

// Extension bundles several registrations into one call.
type Extension func(*Engine) error

type lane struct {
	plugins *pipeline.Pipeline[*Engine]
	methods *collection.Registry[*Engine]
}

func newLane() lane {
	return lane{
		plugins: pipeline.New[*Engine](),
		methods: collection.NewRegistry[*Engine](),
	}
}

// Engine owns the two lanes, the source list, the transformer and the last
// published collections.
type Engine struct {
	files      lane
	components lane

	mu              sync.RWMutex
	transformer     Transformer
	sources         []string
	filesState      *collection.Collection
	componentsState *collection.Collection

	bus        *events.Bus
	store      *config.Store
	validator  validation.Validator
	reader     source.Reader
	watcher    source.Watcher
	adapters   *render.Registry
	commands   *commands.Registry
	logger     *slog.Logger
	registerer prometheus.Registerer
	metrics    *Metrics

	flight chan struct{}

	initialiseErr error
}

// New constructs an engine with the provided options applied.
func New(options ...Option) *Engine {
	e := &Engine{
		files:      newLane(),
		components: newLane(),
		flight:     make(chan struct{}, 1),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	e.applyDefaults()
	return e
}

func (e *Engine) applyDefaults() {
	if e.bus == nil {
		e.bus = events.NewBus()
	}
	if e.store == nil {
		e.store = config.NewStore(nil)
	}
	if e.validator == nil {
		e.validator = validation.Rules{Targets: []string{string(TargetFiles), string(TargetComponents)}}
	}
	if e.reader == nil {
		e.reader = source.NewMultiReader(source.NewFSReader(), nil)
	}
	if e.watcher == nil {
		e.watcher = source.NewFSWatcher()
	}
	if e.transformer == nil {
		e.transformer = defaultTransformer()
	}
	e.adapters = render.NewRegistry()
	e.commands = commands.NewRegistry()

	if e.registerer != nil {
		metrics, err := NewMetrics(e.registerer)
		if err != nil {
			e.initialiseErr = err
		}
		e.metrics = metrics
	}

	// error events are observational; failures reach callers through Parse.
	e.bus.On(events.Error, func(events.Event) {})

	if e.logger != nil {
		e.forwardLogs()
	}
}

func (e *Engine) forwardLogs() {
	forward := events.SlogListener(e.logger)
	listener := func(evt events.Event) {
		if evt.Name != events.Error && evt.Level.Slog() < e.logThreshold() {
			return
		}
		forward(evt)
	}
	e.bus.On(events.LogPrefix+".*", listener)
	e.bus.On(events.Error, listener)
}

func (e *Engine) logThreshold() slog.Level {
	level, err := events.ParseLevel(e.store.GetString("log.level", ""))
	if err != nil {
		return slog.LevelDebug
	}
	return level.Slog()
}

// Log emits a log.<level> event. An empty or unknown level is treated as
// debug.
func (e *Engine) Log(message string, level events.Level, data any) *Engine {
	e.emitLog("", level, message, data)
	return e
}

func (e *Engine) emitLog(runID string, level events.Level, message string, data any) {
	parsed, err := events.ParseLevel(string(level))
	if err != nil {
		parsed = events.LevelDebug
	}
	e.bus.Emit(events.Event{
		Name:    parsed.EventName(),
		RunID:   runID,
		Message: message,
		Level:   parsed,
		Data:    data,
	})
}

// Files returns the last published files collection, or nil.
func (e *Engine) Files() *collection.Collection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filesState
}

// Components returns the last published components collection, or nil.
func (e *Engine) Components() *collection.Collection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.componentsState
}

// State returns both published collections read under one lock.
func (e *Engine) State() Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Result{Components: e.componentsState, Files: e.filesState}
}

// Sources returns a copy of the normalised source list.
func (e *Engine) Sources() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.sources))
	copy(out, e.sources)
	return out
}

// Config exposes the settings store.
func (e *Engine) Config() *config.Store {
	return e.store
}

// Bus exposes the event bus.
func (e *Engine) Bus() *events.Bus {
	return e.bus
}

// Commands exposes the command registry.
func (e *Engine) Commands() *commands.Registry {
	return e.commands
}

// Adapters lists registered adapter names.
func (e *Engine) Adapters() []string {
	return e.adapters.List()
}

// Adapter looks up a registered adapter.
func (e *Engine) Adapter(name string) (render.Adapter, error) {
	return e.adapters.Get(strings.TrimSpace(name))
}

func (e *Engine) laneFor(target Target) *lane {
	if target == TargetFiles {
		return &e.files
	}
	return &e.components
}

func resolveTarget(target Target) Target {
	if strings.TrimSpace(string(target)) == "" {
		return TargetComponents
	}
	return target
}

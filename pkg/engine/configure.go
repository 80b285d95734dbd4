package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-partsbin/pkg/commands"
	"github.com/goliatone/go-partsbin/pkg/config"
	"github.com/goliatone/go-partsbin/pkg/events"
	"github.com/goliatone/go-partsbin/pkg/render"
	"github.com/goliatone/go-partsbin/pkg/source"
	"github.com/goliatone/go-partsbin/pkg/validation"
)

// Configure merges options into the settings store. Nested maps are merged by
// dotted path. The known keys log.level and parse.concurrency are checked
// before anything is stored.
func (e *Engine) Configure(options map[string]any) (*Engine, error) {
	if err := e.validator.Config(options); err != nil {
		return e, err
	}

	candidate := config.NewStore(nil)
	candidate.Merge(options)
	if raw, ok := candidate.Get("log.level"); ok {
		str, isString := raw.(string)
		if _, err := events.ParseLevel(str); !isString || err != nil {
			return e, &validation.Error{Kind: validation.InvalidConfig, Field: "log.level", Message: fmt.Sprintf("unknown log level %v", raw)}
		}
	}
	if _, ok := candidate.Get("parse.concurrency"); ok && candidate.GetInt("parse.concurrency", 0) <= 0 {
		return e, &validation.Error{Kind: validation.InvalidConfig, Field: "parse.concurrency", Message: "must be a positive integer"}
	}

	e.store.Merge(options)
	return e, nil
}

// AddSrc normalises and appends source paths. Paths already present are
// skipped. Every path is checked before any is added.
func (e *Engine) AddSrc(paths ...string) (*Engine, error) {
	if len(paths) == 0 {
		return e, &validation.Error{Kind: validation.InvalidSrc, Message: "at least one source path is required"}
	}

	normalised := make([]string, 0, len(paths))
	for _, raw := range paths {
		if err := e.validator.Src(raw); err != nil {
			return e, err
		}
		path, err := source.NormalizePath(raw)
		if err != nil {
			return e, &validation.Error{Kind: validation.InvalidSrc, Field: raw, Message: err.Error()}
		}
		normalised = append(normalised, path)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, path := range normalised {
		if !slices.Contains(e.sources, path) {
			e.sources = append(e.sources, path)
		}
	}
	return e, nil
}

// AddPlugin appends plugin to target's pipeline. An empty target means
// components.
func (e *Engine) AddPlugin(plugin Plugin, target Target) (*Engine, error) {
	target = resolveTarget(target)
	if err := e.validator.Target(string(target)); err != nil {
		return e, err
	}
	if err := e.validator.Plugin(plugin); err != nil {
		return e, err
	}
	if err := e.laneFor(target).plugins.Add(plugin); err != nil {
		return e, &validation.Error{Kind: validation.InvalidPlugin, Message: err.Error()}
	}
	return e, nil
}

// AddMethod registers a collection method on target. Methods are bound to
// every collection published for that target from the next parse on.
func (e *Engine) AddMethod(name string, handler Handler, target Target) (*Engine, error) {
	target = resolveTarget(target)
	if err := e.validator.Target(string(target)); err != nil {
		return e, err
	}
	if err := e.validator.Method(name, handler); err != nil {
		return e, err
	}
	if err := e.laneFor(target).methods.Add(Method{Name: name, Handler: handler}); err != nil {
		return e, &validation.Error{Kind: validation.InvalidMethod, Field: name, Message: err.Error()}
	}
	return e, nil
}

// AddCommand registers a CLI command.
func (e *Engine) AddCommand(cmd commands.Command) (*Engine, error) {
	if err := e.validator.Command(cmd.Name, cmd.Run); err != nil {
		return e, err
	}
	if err := e.commands.Add(cmd); err != nil {
		return e, &validation.Error{Kind: validation.InvalidCommand, Field: strings.TrimSpace(cmd.Name), Message: err.Error()}
	}
	return e, nil
}

// AddExtension calls fn with the engine immediately.
func (e *Engine) AddExtension(fn Extension) (*Engine, error) {
	if err := e.validator.Extension(fn); err != nil {
		return e, err
	}
	if err := fn(e); err != nil {
		return e, fmt.Errorf("engine: extension: %w", err)
	}
	return e, nil
}

// SetTransformer replaces the transformer used by later parses.
func (e *Engine) SetTransformer(transformer Transformer) (*Engine, error) {
	if err := e.validator.Transformer(transformer); err != nil {
		return e, err
	}
	e.mu.Lock()
	e.transformer = transformer
	e.mu.Unlock()
	return e, nil
}

// AddAdapter registers adapter and wires it into both lanes: a files plugin
// tags matching file records with the adapter name, and the components method
// render.<name> renders a component's view through it.
func (e *Engine) AddAdapter(adapter render.Adapter) (*Engine, error) {
	name := adapterName(adapter)
	if err := e.validator.Adapter(name, adapter); err != nil {
		return e, err
	}
	if err := e.adapters.Register(adapter); err != nil {
		return e, &validation.Error{Kind: validation.InvalidAdapter, Field: name, Message: err.Error()}
	}

	_ = e.files.plugins.Add(tagFiles(name, adapter))
	_ = e.components.methods.Add(Method{Name: "render." + name, Handler: renderComponent(adapter)})
	return e, nil
}

// MustConfigure is Configure that panics on error.
func (e *Engine) MustConfigure(options map[string]any) *Engine {
	return must(e.Configure(options))
}

// MustAddSrc is AddSrc that panics on error.
func (e *Engine) MustAddSrc(paths ...string) *Engine {
	return must(e.AddSrc(paths...))
}

// MustAddPlugin is AddPlugin that panics on error.
func (e *Engine) MustAddPlugin(plugin Plugin, target Target) *Engine {
	return must(e.AddPlugin(plugin, target))
}

// MustAddMethod is AddMethod that panics on error.
func (e *Engine) MustAddMethod(name string, handler Handler, target Target) *Engine {
	return must(e.AddMethod(name, handler, target))
}

// MustAddCommand is AddCommand that panics on error.
func (e *Engine) MustAddCommand(cmd commands.Command) *Engine {
	return must(e.AddCommand(cmd))
}

// MustAddExtension is AddExtension that panics on error.
func (e *Engine) MustAddExtension(fn Extension) *Engine {
	return must(e.AddExtension(fn))
}

// MustAddAdapter is AddAdapter that panics on error.
func (e *Engine) MustAddAdapter(adapter render.Adapter) *Engine {
	return must(e.AddAdapter(adapter))
}

// MustSetTransformer is SetTransformer that panics on error.
func (e *Engine) MustSetTransformer(transformer Transformer) *Engine {
	return must(e.SetTransformer(transformer))
}

func must(e *Engine, err error) *Engine {
	if err != nil {
		panic(err)
	}
	return e
}

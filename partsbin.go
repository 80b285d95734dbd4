package partsbin

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-partsbin/pkg/adapters/html"
	"github.com/goliatone/go-partsbin/pkg/adapters/pongo"
	"github.com/goliatone/go-partsbin/pkg/components"
	"github.com/goliatone/go-partsbin/pkg/engine"
)

// Engine aliases engine.Engine for callers that only import the root package.
type Engine = engine.Engine

// Option configures an Engine.
type Option = engine.Option

// Target names a processing lane (files or components).
type Target = engine.Target

// Plugin is a pipeline step.
type Plugin = engine.Plugin

// Handler implements a collection method.
type Handler = engine.Handler

// Transformer bridges file records to component records.
type Transformer = engine.Transformer

// TransformerFunc adapts a function into a Transformer.
type TransformerFunc = engine.TransformerFunc

// Result is the pair of collections published by a parse.
type Result = engine.Result

// Component is the record produced by the default transformer.
type Component = components.Component

const (
	TargetFiles      = engine.TargetFiles
	TargetComponents = engine.TargetComponents
)

// New exposes the engine constructor from the top-level module.
func New(options ...Option) *Engine {
	return engine.New(options...)
}

// LibraryConfig describes the default component library setup.
type LibraryConfig struct {
	// Sources are the directories (or s3:// prefixes) holding components.
	Sources []string
	// TemplateDir lets pongo2 views include and extend shared templates.
	TemplateDir string
	// ViewExtensions marks untagged files as views, e.g. ".svg".
	ViewExtensions []string
	// DefaultStatus replaces "ready" for components whose config sets none.
	DefaultStatus string
	// Theme exposes go-theme tokens and assets to pongo2 views.
	Theme        theme.ThemeSelector
	ThemeName    string
	ThemeVariant string
	// HTMLPolicy replaces the default sanitiser of the html adapter.
	HTMLPolicy *bluemonday.Policy
}

// NewLibrary builds an engine with the components transformer plus the pongo2
// and html adapters registered, and the configured sources added.
func NewLibrary(cfg LibraryConfig, options ...Option) (*Engine, error) {
	componentOptions := []components.Option{components.WithViewExtensions(cfg.ViewExtensions...)}
	if cfg.DefaultStatus != "" {
		componentOptions = append(componentOptions, components.WithDefaultStatus(cfg.DefaultStatus))
	}
	transform := components.FromFiles(componentOptions...)
	eng := engine.New(append([]Option{engine.WithTransformer(engine.TransformerFunc(transform))}, options...)...)

	pongoOptions := []pongo.Option{pongo.WithBaseDir(cfg.TemplateDir)}
	if cfg.Theme != nil {
		pongoOptions = append(pongoOptions, pongo.WithTheme(cfg.Theme, cfg.ThemeName, cfg.ThemeVariant))
	}
	pongoAdapter, err := pongo.New(pongoOptions...)
	if err != nil {
		return nil, fmt.Errorf("partsbin: pongo2 adapter: %w", err)
	}
	if _, err := eng.AddAdapter(pongoAdapter); err != nil {
		return nil, err
	}

	htmlOptions := []html.Option{}
	if cfg.HTMLPolicy != nil {
		htmlOptions = append(htmlOptions, html.WithPolicy(cfg.HTMLPolicy))
	}
	if _, err := eng.AddAdapter(html.New(htmlOptions...)); err != nil {
		return nil, err
	}

	if len(cfg.Sources) > 0 {
		if _, err := eng.AddSrc(cfg.Sources...); err != nil {
			return nil, err
		}
	}
	return eng, nil
}

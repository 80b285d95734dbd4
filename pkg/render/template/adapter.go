package template

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-partsbin/pkg/render"
)

// Adapter exposes a TemplateRenderer through the render.Adapter contract.
type Adapter struct {
	name       string
	renderer   TemplateRenderer
	extensions render.ExtensionMatcher
	globals    func(ctx context.Context) map[string]any
}

var (
	_ render.Adapter = (*Adapter)(nil)
	_ render.Matcher = (*Adapter)(nil)
)

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithExtensions sets the file extensions the adapter claims.
func WithExtensions(exts ...string) AdapterOption {
	return func(a *Adapter) {
		a.extensions = append(render.ExtensionMatcher(nil), exts...)
	}
}

// WithContextData merges per-call data computed from ctx underneath the
// render data.
func WithContextData(fn func(ctx context.Context) map[string]any) AdapterOption {
	return func(a *Adapter) {
		a.globals = fn
	}
}

// NewAdapter wraps renderer under name.
func NewAdapter(name string, renderer TemplateRenderer, opts ...AdapterOption) (*Adapter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("template: adapter name is required")
	}
	if renderer == nil {
		return nil, errors.New("template: renderer is required")
	}
	a := &Adapter{name: name, renderer: renderer}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.name }

// Match reports whether path has one of the adapter's extensions.
func (a *Adapter) Match(path string) bool { return a.extensions.Match(path) }

// Renderer returns the wrapped engine.
func (a *Adapter) Renderer() TemplateRenderer { return a.renderer }

// Render compiles view as template source and executes it with data.
func (a *Adapter) Render(ctx context.Context, view string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	merged := make(map[string]any, len(data))
	if a.globals != nil {
		maps.Copy(merged, a.globals(ctx))
	}
	maps.Copy(merged, data)

	out, err := a.renderer.RenderString(view, merged)
	if err != nil {
		return "", fmt.Errorf("template: %s: %w", a.name, err)
	}
	return out, nil
}

// RenderNamed renders a template loaded by name from the engine's loaders.
func (a *Adapter) RenderNamed(ctx context.Context, name string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := a.renderer.RenderTemplate(name, data)
	if err != nil {
		return "", fmt.Errorf("template: %s: %w", a.name, err)
	}
	return out, nil
}

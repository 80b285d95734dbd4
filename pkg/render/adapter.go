// Package render defines the adapter contract used to turn component views into
// markup, plus a name-keyed registry of adapters.
package render

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrAdapterNotFound is returned when a lookup names an unknown adapter.
var ErrAdapterNotFound = errors.New("render: adapter not found")

// Adapter renders a view with data. view is the raw view source (template
// text or markup).
type Adapter interface {
	Name() string
	Render(ctx context.Context, view string, data map[string]any) (string, error)
}

// Matcher is implemented by adapters that claim source files by path.
type Matcher interface {
	Match(path string) bool
}

// ExtensionMatcher matches paths by file extension. Entries may omit the
// leading dot.
type ExtensionMatcher []string

// Match reports whether path ends in one of the extensions.
func (m ExtensionMatcher) Match(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, candidate := range m {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if !strings.HasPrefix(candidate, ".") {
			candidate = "." + candidate
		}
		if candidate == ext {
			return true
		}
	}
	return false
}

// Func adapts a plain function into an Adapter.
type Func struct {
	AdapterName string
	Extensions  ExtensionMatcher
	Fn          func(ctx context.Context, view string, data map[string]any) (string, error)
}

var (
	_ Adapter = Func{}
	_ Matcher = Func{}
)

func (f Func) Name() string { return f.AdapterName }

func (f Func) Render(ctx context.Context, view string, data map[string]any) (string, error) {
	if f.Fn == nil {
		return view, nil
	}
	return f.Fn(ctx, view, data)
}

func (f Func) Match(path string) bool { return f.Extensions.Match(path) }

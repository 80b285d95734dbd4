// Package html serves static markup views. Output is sanitised with a
// bluemonday policy so component views cannot inject scripts into previews.
package html

import (
	"context"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-partsbin/pkg/render"
)

// Name is the default adapter name.
const Name = "html"

var (
	defaultPolicyOnce sync.Once
	defaultPolicy     *bluemonday.Policy
)

// Adapter renders markup views. Data placeholders of the form {{key}} are
// replaced with HTML-escaped values before sanitising.
type Adapter struct {
	name       string
	policy     *bluemonday.Policy
	extensions render.ExtensionMatcher
}

var (
	_ render.Adapter = (*Adapter)(nil)
	_ render.Matcher = (*Adapter)(nil)
)

// Option configures an Adapter.
type Option func(*Adapter)

// WithName overrides the adapter name.
func WithName(name string) Option {
	return func(a *Adapter) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			a.name = trimmed
		}
	}
}

// WithPolicy replaces the sanitising policy. A nil policy disables
// sanitising.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(a *Adapter) {
		a.policy = policy
	}
}

// WithExtensions replaces the claimed file extensions.
func WithExtensions(exts ...string) Option {
	return func(a *Adapter) {
		a.extensions = append(render.ExtensionMatcher(nil), exts...)
	}
}

// New builds an html adapter using the default policy.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		name:       Name,
		policy:     Policy(),
		extensions: render.ExtensionMatcher{".html", ".htm"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) Match(path string) bool { return a.extensions.Match(path) }

// Render substitutes data into view and sanitises the result.
func (a *Adapter) Render(ctx context.Context, view string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out := substitute(view, data)
	if a.policy == nil {
		return out, nil
	}
	return a.policy.Sanitize(out), nil
}

// Policy returns the default component policy: bluemonday's UGC policy plus
// class, id, data and aria attributes and inline SVG.
func Policy() *bluemonday.Policy {
	defaultPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class", "id", "role", "title").Globally()
		policy.AllowDataAttributes()
		policy.AllowAttrs(
			"aria-label", "aria-hidden", "aria-describedby", "aria-expanded", "aria-controls",
		).Globally()
		policy.AllowElements("button", "label", "section", "header", "footer", "nav", "svg", "path")
		policy.AllowAttrs("type", "disabled", "name", "value").OnElements("button", "input")
		policy.AllowAttrs("for").OnElements("label")
		policy.AllowAttrs("viewBox", "width", "height", "fill", "stroke", "xmlns").OnElements("svg")
		policy.AllowAttrs("d", "fill", "stroke", "stroke-width").OnElements("path")
		defaultPolicy = policy
	})
	return defaultPolicy
}

func substitute(view string, data map[string]any) string {
	if len(data) == 0 || !strings.Contains(view, "{{") {
		return view
	}
	var b strings.Builder
	rest := view
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		key := strings.TrimSpace(rest[start+2 : start+end])
		if value, ok := lookup(data, key); ok {
			b.WriteString(escape(value))
		} else {
			b.WriteString(rest[start : start+end+2])
		}
		rest = rest[start+end+2:]
	}
	return b.String()
}

func lookup(data map[string]any, key string) (any, bool) {
	var current any = data
	for _, segment := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

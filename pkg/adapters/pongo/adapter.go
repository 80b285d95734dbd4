package pongo

import (
	"context"
	"fmt"
	"maps"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-partsbin/pkg/render/template"
)

// Name is the default adapter name.
const Name = "pongo2"

// DefaultExtensions lists the view extensions claimed by default.
func DefaultExtensions() []string {
	return []string{".pongo", ".pongo2", ".j2", ".django"}
}

type themeConfig struct {
	selector theme.ThemeSelector
	name     string
	variant  string
}

// WithTheme resolves name/variant through selector when the adapter is built
// and exposes the result to every render as "theme" plus an "asset" helper.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		if selector == nil {
			return
		}
		cfg.theme = &themeConfig{selector: selector, name: name, variant: variant}
	}
}

// New builds a pongo2-backed render adapter.
func New(options ...Option) (*template.Adapter, error) {
	cfg := newConfig(options)
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	var extra map[string]any
	if cfg.theme != nil {
		extra, err = themeData(cfg.theme)
		if err != nil {
			return nil, err
		}
	}

	return template.NewAdapter(cfg.name, engine,
		template.WithExtensions(cfg.extensions...),
		template.WithContextData(func(context.Context) map[string]any {
			return maps.Clone(extra)
		}),
	)
}

func themeData(cfg *themeConfig) (map[string]any, error) {
	selection, err := cfg.selector.Select(cfg.name, cfg.variant)
	if err != nil {
		return nil, fmt.Errorf("pongo: select theme %q/%q: %w", cfg.name, cfg.variant, err)
	}
	if selection == nil || selection.Manifest == nil {
		return nil, fmt.Errorf("pongo: theme %q has no manifest", cfg.name)
	}

	tokens := resolveTokens(selection)
	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}
	assets := resolveAssets(selection)
	prefix := selection.Manifest.Assets.Prefix
	assetURL := func(key string) string {
		file, ok := assets[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" {
			return file
		}
		return path.Join(prefix, file)
	}

	return map[string]any{
		"theme": map[string]any{
			"name":      selection.Theme,
			"variant":   selection.Variant,
			"tokens":    stringMapToAny(tokens),
			"css_vars":  stringMapToAny(cssVars),
			"css_style": cssVarsStyle(cssVars),
		},
		"asset": assetURL,
	}, nil
}

func resolveTokens(selection *theme.Selection) map[string]string {
	out := make(map[string]string, len(selection.Manifest.Tokens))
	maps.Copy(out, selection.Manifest.Tokens)
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		maps.Copy(out, variant.Tokens)
	}
	return out
}

func resolveAssets(selection *theme.Selection) map[string]string {
	out := make(map[string]string, len(selection.Manifest.Assets.Files))
	maps.Copy(out, selection.Manifest.Assets.Files)
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		maps.Copy(out, variant.Assets.Files)
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {")
	for _, key := range keys {
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";")
	}
	b.WriteString(" }")
	return b.String()
}

func stringMapToAny(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

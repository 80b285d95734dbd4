package components

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-partsbin/pkg/config"
	"github.com/goliatone/go-partsbin/pkg/render"
	"github.com/goliatone/go-partsbin/pkg/source"
)

// MetaAdapter is the file metadata key holding the adapter name.
const MetaAdapter = "adapter"

// Option configures FromFiles.
type Option func(*options)

type options struct {
	viewExts      render.ExtensionMatcher
	defaultStatus string
}

// WithViewExtensions treats untagged files with these extensions as views.
func WithViewExtensions(exts ...string) Option {
	return func(o *options) {
		o.viewExts = append(o.viewExts, exts...)
	}
}

// WithDefaultStatus sets the status given to components whose config names
// none.
func WithDefaultStatus(status string) Option {
	return func(o *options) {
		o.defaultStatus = strings.TrimSpace(status)
	}
}

type group struct {
	key    string
	name   string
	dir    string
	view   *source.File
	config *source.File
}

// FromFiles returns a transformer grouping *source.File records by directory
// and name. Groups without a view are dropped and groups with two views fail
// the transform; other record types are ignored. Components keep the order
// their views appeared in.
func FromFiles(opts ...Option) func(ctx context.Context, files []any) ([]any, error) {
	o := options{defaultStatus: "ready"}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return func(ctx context.Context, files []any) ([]any, error) {
		groups := make(map[string]*group)
		var order []string

		for _, record := range files {
			file, ok := record.(*source.File)
			if !ok {
				continue
			}
			key := file.Dir + "/" + file.Name
			g, exists := groups[key]
			if !exists {
				g = &group{key: key, name: file.Name, dir: file.Dir}
				groups[key] = g
			}

			switch {
			case isConfigFile(file):
				if g.config == nil {
					g.config = file
				}
			case file.MetaString(MetaAdapter) != "" || o.viewExts.Match(file.Path):
				if g.view != nil {
					return nil, fmt.Errorf("components: %s has more than one view (%s and %s)", key, g.view.Path, file.Path)
				}
				g.view = file
				order = append(order, key)
			}
		}

		out := make([]any, 0, len(order))
		seen := make(map[string]string, len(order))
		for _, key := range order {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			component, err := build(groups[key], o)
			if err != nil {
				return nil, err
			}
			if previous, dup := seen[component.Handle]; dup {
				return nil, fmt.Errorf("components: duplicate handle %q (%s and %s)", component.Handle, previous, component.ViewPath)
			}
			seen[component.Handle] = component.ViewPath
			out = append(out, component)
		}
		return out, nil
	}
}

func build(g *group, o options) (*Component, error) {
	name := strings.TrimPrefix(g.name, "_")
	c := &Component{
		Name:     name,
		Handle:   Handleize(name),
		Status:   o.defaultStatus,
		Hidden:   strings.HasPrefix(g.name, "_"),
		Path:     g.dir,
		ViewPath: g.view.Path,
		View:     g.view.String(),
		Adapter:  g.view.MetaString(MetaAdapter),
		Config:   map[string]any{},
		Context:  map[string]any{},
	}

	if g.config != nil {
		cfg, err := config.Decode(g.config.Base, g.config.Contents)
		if err != nil {
			return nil, fmt.Errorf("components: %s: %w", g.config.Path, err)
		}
		c.Config = cfg
		if handle, ok := cfg["handle"].(string); ok && strings.TrimSpace(handle) != "" {
			c.Handle = Handleize(handle)
		}
		if status, ok := cfg["status"].(string); ok && status != "" {
			c.Status = status
		}
		if hidden, ok := cfg["hidden"].(bool); ok {
			c.Hidden = hidden
		}
		if ctxData, ok := cfg["context"].(map[string]any); ok {
			c.Context = ctxData
		}
		if label, ok := cfg["label"].(string); ok && label != "" {
			c.Label = label
		}
	}
	if c.Handle == "" {
		return nil, fmt.Errorf("components: %s has an empty handle", g.view.Path)
	}
	if c.Label == "" {
		c.Label = Labelize(c.Handle)
	}
	return c, nil
}

var configExts = []string{".yml", ".yaml", ".json"}

func isConfigFile(file *source.File) bool {
	return slices.Contains(configExts, file.Ext) && strings.HasSuffix(file.Base, ".config"+file.Ext)
}

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-partsbin/pkg/collection"
	"github.com/goliatone/go-partsbin/pkg/components"
	"github.com/goliatone/go-partsbin/pkg/render"
	"github.com/goliatone/go-partsbin/pkg/source"
)

func adapterName(adapter render.Adapter) (name string) {
	if adapter == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()
	return strings.TrimSpace(adapter.Name())
}

// tagFiles marks file records the adapter matches. Records already claimed by
// an earlier adapter keep their tag.
func tagFiles(name string, adapter render.Adapter) Plugin {
	matcher, _ := adapter.(render.Matcher)
	return func(ctx context.Context, records []any, _ *Engine) ([]any, error) {
		if matcher == nil {
			return records, nil
		}
		for _, record := range records {
			file, ok := record.(*source.File)
			if !ok || file.MetaString(components.MetaAdapter) != "" {
				continue
			}
			if matcher.Match(file.Path) {
				file.SetMeta(components.MetaAdapter, name)
			}
		}
		return records, nil
	}
}

// renderComponent implements render.<name>. args[0] is the component handle,
// args[1] an optional map overlaid on the component context.
func renderComponent(adapter render.Adapter) Handler {
	return func(ctx context.Context, args []any, state *collection.Collection, _ *Engine) (any, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("render.%s: component handle is required", adapter.Name())
		}
		handle, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("render.%s: handle must be a string, got %T", adapter.Name(), args[0])
		}
		var extra map[string]any
		if len(args) > 1 && args[1] != nil {
			extra, ok = args[1].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("render.%s: context must be map[string]any, got %T", adapter.Name(), args[1])
			}
		}

		component, found := components.Find(state.ToArray(), handle)
		if !found {
			return nil, fmt.Errorf("render.%s: component %q not found", adapter.Name(), handle)
		}
		return adapter.Render(ctx, component.View, component.RenderContext(extra))
	}
}

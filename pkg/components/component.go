// Package components turns file records into component records: a view file
// plus an optional sibling <name>.config.{yml,yaml,json} file.
package components

import (
	"maps"
	"strings"
	"unicode"
)

// Component is the record produced by the default transformer.
type Component struct {
	Handle   string         `json:"handle"`
	Name     string         `json:"name"`
	Label    string         `json:"label"`
	Status   string         `json:"status"`
	Hidden   bool           `json:"hidden"`
	Path     string         `json:"path"`
	ViewPath string         `json:"view_path"`
	View     string         `json:"-"`
	Adapter  string         `json:"adapter,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}

// RenderContext returns the component context overlaid with extra.
func (c *Component) RenderContext(extra map[string]any) map[string]any {
	out := make(map[string]any, len(c.Context)+len(extra))
	maps.Copy(out, c.Context)
	maps.Copy(out, extra)
	return out
}

// Find returns the component with handle from records.
func Find(records []any, handle string) (*Component, bool) {
	handle = strings.TrimSpace(handle)
	for _, record := range records {
		if c, ok := record.(*Component); ok && c.Handle == handle {
			return c, true
		}
	}
	return nil, false
}

// Handleize converts a name to a kebab-case handle.
func Handleize(name string) string {
	var b strings.Builder
	dash := false
	for i, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && !dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			dash = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Labelize converts a handle to a title-cased label.
func Labelize(handle string) string {
	words := strings.FieldsFunc(handle, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

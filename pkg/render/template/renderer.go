package template

import (
	"io"
)

// FilterFunc transforms a value inside a template expression.
type FilterFunc func(input any, param any) (any, error)

// TemplateRenderer is the engine contract template-backed adapters rely on.
// RenderTemplate loads a named template from the engine's loaders while
// RenderString compiles inline template source.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn FilterFunc) error
	GlobalContext(data any) error
}

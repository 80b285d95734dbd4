// Package validation holds the configuration-time checks applied before the
// engine mutates any of its registries. Every check fails with a *Error whose
// Kind names the offending configuration surface.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrConfiguration matches every *Error through errors.Is.
var ErrConfiguration = errors.New("configuration error")

// Kind classifies configuration errors.
type Kind string

const (
	InvalidConfig      Kind = "InvalidConfig"
	InvalidSrc         Kind = "InvalidSrc"
	InvalidMethod      Kind = "InvalidMethod"
	InvalidEntityType  Kind = "InvalidEntityType"
	InvalidExtension   Kind = "InvalidExtension"
	InvalidTransformer Kind = "InvalidTransformer"
	InvalidCallback    Kind = "InvalidCallback"
	InvalidAdapter     Kind = "InvalidAdapter"
	InvalidCommand     Kind = "InvalidCommand"
	InvalidPlugin      Kind = "InvalidPlugin"
)

// Error describes a rejected configuration call.
type Error struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is match ErrConfiguration and other *Error values of the same
// Kind.
func (e *Error) Is(target error) bool {
	if target == ErrConfiguration {
		return true
	}
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind && (other.Field == "" || other.Field == e.Field)
	}
	return false
}

// IsKind reports whether err is a configuration error of kind.
func IsKind(err error, kind Kind) bool {
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		return false
	}
	return cfgErr.Kind == kind
}

func newError(kind Kind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// CheckConfig validates a free-form options map: keys must be non-empty,
// must not contain empty dotted segments, and values must be plain data.
func CheckConfig(options map[string]any) error {
	if options == nil {
		return newError(InvalidConfig, "", "options are required")
	}
	return checkConfigMap(options, "")
}

func checkConfigMap(options map[string]any, prefix string) error {
	for key, value := range options {
		trimmed := strings.TrimSpace(key)
		path := trimmed
		if prefix != "" {
			path = prefix + "." + trimmed
		}
		if trimmed == "" {
			return newError(InvalidConfig, prefix, "empty option key")
		}
		for _, segment := range strings.Split(trimmed, ".") {
			if segment == "" {
				return newError(InvalidConfig, path, "option key has an empty segment")
			}
		}
		if err := checkConfigValue(value, path); err != nil {
			return err
		}
	}
	return nil
}

func checkConfigValue(value any, path string) error {
	switch v := value.(type) {
	case nil, string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return nil
	case map[string]any:
		return checkConfigMap(v, path)
	case []any:
		for idx, item := range v {
			if err := checkConfigValue(item, fmt.Sprintf("%s[%d]", path, idx)); err != nil {
				return err
			}
		}
		return nil
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return newError(InvalidConfig, path, "value of type %T is not configuration data", value)
	default:
		return nil
	}
}

// CheckSrc validates a single source path. Normalisation happens in the
// source package; here only the shape is checked.
func CheckSrc(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return newError(InvalidSrc, "", "source path is required")
	}
	if strings.ContainsRune(trimmed, 0) {
		return newError(InvalidSrc, trimmed, "source path contains a NUL byte")
	}
	if strings.HasPrefix(trimmed, "s3://") {
		rest := strings.TrimPrefix(trimmed, "s3://")
		bucket, _, _ := strings.Cut(rest, "/")
		if strings.TrimSpace(bucket) == "" {
			return newError(InvalidSrc, trimmed, "s3 source requires a bucket")
		}
	}
	return nil
}

// CheckMethod validates a method name and handler.
func CheckMethod(name string, handler any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return newError(InvalidMethod, "name", "method name is required")
	}
	for _, segment := range strings.Split(trimmed, ".") {
		if strings.TrimSpace(segment) == "" || segment != strings.TrimSpace(segment) {
			return newError(InvalidMethod, trimmed, "method name has an empty or padded segment")
		}
	}
	if !isFunc(handler) {
		return newError(InvalidMethod, trimmed, "handler must be a non-nil function")
	}
	return nil
}

// CheckTarget validates that target is one of allowed.
func CheckTarget(target string, allowed ...string) error {
	for _, name := range allowed {
		if target == name {
			return nil
		}
	}
	return newError(InvalidEntityType, target, "target must be one of %s", strings.Join(allowed, ", "))
}

// CheckPlugin validates a pipeline plugin.
func CheckPlugin(plugin any) error {
	if !isFunc(plugin) {
		return newError(InvalidPlugin, "", "plugin must be a non-nil function")
	}
	return nil
}

// CheckExtension validates an extension function.
func CheckExtension(fn any) error {
	if !isFunc(fn) {
		return newError(InvalidExtension, "", "extension must be a non-nil function")
	}
	return nil
}

// CheckTransformer validates a transformer value.
func CheckTransformer(transformer any) error {
	if isNil(transformer) {
		return newError(InvalidTransformer, "", "transformer is required")
	}
	return nil
}

// CheckCallback validates a parse completion callback.
func CheckCallback(fn any) error {
	if !isFunc(fn) {
		return newError(InvalidCallback, "", "callback must be a non-nil function")
	}
	return nil
}

// CheckAdapter validates an adapter descriptor.
func CheckAdapter(name string, adapter any) error {
	if isNil(adapter) {
		return newError(InvalidAdapter, "", "adapter is required")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return newError(InvalidAdapter, "name", "adapter name is required")
	}
	if strings.ContainsAny(trimmed, ". ") {
		return newError(InvalidAdapter, trimmed, "adapter name must not contain dots or spaces")
	}
	return nil
}

// CheckCommand validates a command descriptor.
func CheckCommand(name string, run any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return newError(InvalidCommand, "name", "command name is required")
	}
	if strings.ContainsAny(trimmed, " \t\n") {
		return newError(InvalidCommand, trimmed, "command name must be a single word")
	}
	if !isFunc(run) {
		return newError(InvalidCommand, trimmed, "command action must be a non-nil function")
	}
	return nil
}

func isFunc(v any) bool {
	if isNil(v) {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Func
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

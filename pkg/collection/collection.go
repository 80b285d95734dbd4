package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrMethodNotFound is returned by Invoke when no method is attached under the
// requested name.
var ErrMethodNotFound = errors.New("collection: method not found")

// BoundMethod is a method already closed over its collection, state snapshot,
// and engine reference. Callers only supply the per-call arguments.
type BoundMethod func(ctx context.Context, args ...any) (any, error)

// Collection is an ordered, read-only sequence of records plus a capability
// table of bound methods addressed by dotted names (render.html, query.first).
type Collection struct {
	records []any

	mu      sync.RWMutex
	methods map[string]BoundMethod
}

// New copies records into a fresh Collection. Later changes to the caller's
// slice are not visible through the collection.
func New(records []any) *Collection {
	clone := make([]any, len(records))
	copy(clone, records)
	return &Collection{
		records: clone,
		methods: make(map[string]BoundMethod),
	}
}

// Len reports the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// At returns the record at index i.
func (c *Collection) At(i int) (any, bool) {
	if c == nil || i < 0 || i >= len(c.records) {
		return nil, false
	}
	return c.records[i], true
}

// ToArray returns a copy of the record sequence in order.
func (c *Collection) ToArray() []any {
	if c == nil {
		return []any{}
	}
	out := make([]any, len(c.records))
	copy(out, c.records)
	return out
}

// Each visits records in order until fn returns false.
func (c *Collection) Each(fn func(i int, record any) bool) {
	if c == nil || fn == nil {
		return
	}
	for i, record := range c.records {
		if !fn(i, record) {
			return
		}
	}
}

// Attach binds fn under name. Attaching an existing name replaces the previous
// binding.
func (c *Collection) Attach(name string, fn BoundMethod) error {
	if c == nil {
		return errors.New("collection: collection is nil")
	}
	key, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("collection: method %q has no handler", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.methods[key] = fn
	return nil
}

// Has reports whether a method is attached under name.
func (c *Collection) Has(name string) bool {
	if c == nil {
		return false
	}
	key, err := NormalizeName(name)
	if err != nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.methods[key]
	return ok
}

// Invoke dispatches to the method attached under name.
func (c *Collection) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	if c == nil {
		return nil, errors.New("collection: collection is nil")
	}
	key, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	fn, ok := c.methods[key]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMethodNotFound, key)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, args...)
}

// Methods returns the attached method names in sorted order.
func (c *Collection) Methods() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Namespace lists the method names that live under prefix, without the prefix.
// Namespace("render") returns ["html", "pongo2"] when render.html and
// render.pongo2 are attached.
func (c *Collection) Namespace(prefix string) []string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return c.Methods()
	}
	var out []string
	for _, name := range c.Methods() {
		if rest, ok := strings.CutPrefix(name, prefix+"."); ok {
			out = append(out, rest)
		}
	}
	return out
}

// NormalizeName trims name and validates its dotted segments.
func NormalizeName(name string) (string, error) {
	key := strings.TrimSpace(name)
	if key == "" {
		return "", errors.New("collection: method name is required")
	}
	for _, segment := range strings.Split(key, ".") {
		if strings.TrimSpace(segment) == "" {
			return "", fmt.Errorf("collection: method name %q has an empty segment", name)
		}
		if segment != strings.TrimSpace(segment) {
			return "", fmt.Errorf("collection: method name %q has padded segment %q", name, segment)
		}
	}
	return key, nil
}

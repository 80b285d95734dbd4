package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Handler implements a collection method. state is the collection the method
// was bound to and eng is the engine reference captured at bind time.
type Handler[E any] func(ctx context.Context, args []any, state *Collection, eng E) (any, error)

// Method pairs a dotted name with its handler.
type Method[E any] struct {
	Name    string
	Handler Handler[E]
}

// Registry keeps method registrations in order. Duplicate names are kept; when
// bound, later registrations replace earlier ones on the collection.
type Registry[E any] struct {
	mu      sync.RWMutex
	methods []Method[E]
}

// NewRegistry creates an empty registry.
func NewRegistry[E any]() *Registry[E] {
	return &Registry[E]{}
}

// Add appends a method registration.
func (r *Registry[E]) Add(method Method[E]) error {
	name, err := NormalizeName(method.Name)
	if err != nil {
		return err
	}
	if method.Handler == nil {
		return fmt.Errorf("collection: method %q has no handler", name)
	}
	method.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods = append(r.methods, method)
	return nil
}

// All returns the registrations in registration order.
func (r *Registry[E]) All() []Method[E] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Method[E], len(r.methods))
	copy(out, r.methods)
	return out
}

// Len reports the number of registrations, duplicates included.
func (r *Registry[E]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.methods)
}

// Bind attaches every registered method to c.
func (r *Registry[E]) Bind(c *Collection, eng E) error {
	return BindAll(c, r.All(), eng)
}

// BindAll attaches methods to c in order, closing over c and eng. Each
// collection gets fresh closures, so a method bound during one parse never
// observes the engine state of another.
func BindAll[E any](c *Collection, methods []Method[E], eng E) error {
	if c == nil {
		return errors.New("collection: collection is nil")
	}
	for _, method := range methods {
		handler := method.Handler
		state := c
		bound := func(ctx context.Context, args ...any) (any, error) {
			return handler(ctx, args, state, eng)
		}
		if err := c.Attach(method.Name, bound); err != nil {
			return err
		}
	}
	return nil
}

// Package events implements the lifecycle and log event bus. Event names are
// dotted; listeners subscribe with an exact name, a prefix pattern such as
// "parse.*", or "*" for everything.
package events

import (
	"strings"
	"sync"
	"time"
)

// Listener receives events synchronously on the emitting goroutine.
type Listener func(Event)

type subscription struct {
	id       uint64
	pattern  string
	listener Listener
	once     bool
}

// Bus dispatches events to listeners registered by pattern.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// On registers listener for pattern and returns a function that removes it.
func (b *Bus) On(pattern string, listener Listener) func() {
	return b.add(pattern, listener, false)
}

// Once registers listener for the next matching event only.
func (b *Bus) Once(pattern string, listener Listener) func() {
	return b.add(pattern, listener, true)
}

func (b *Bus) add(pattern string, listener Listener, once bool) func() {
	pattern = strings.TrimSpace(pattern)
	if listener == nil || pattern == "" {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, pattern: pattern, listener: listener, once: once})
	b.mu.Unlock()

	return func() { b.remove(id) }
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for idx, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:idx:idx], b.subs[idx+1:]...)
			return
		}
	}
}

// Subscribe returns a buffered channel fed with matching events. Events are
// dropped while the buffer is full. cancel stops delivery and closes the
// channel.
func (b *Bus) Subscribe(pattern string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)

	var (
		mu     sync.Mutex
		closed bool
	)
	off := b.On(pattern, func(evt Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- evt:
		default:
		}
	})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			off()
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}
	return ch, cancel
}

// Emit delivers evt to every matching listener in registration order. A
// panicking listener is skipped.
func (b *Bus) Emit(evt Event) {
	if b == nil || evt.Name == "" {
		return
	}
	if evt.Time.IsZero() {
		evt.Time = time.Now().UTC()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	matched := make([]Listener, 0, len(b.subs))
	kept := b.subs[:0:0]
	for _, sub := range b.subs {
		if Match(sub.pattern, evt.Name) {
			matched = append(matched, sub.listener)
			if sub.once {
				continue
			}
		}
		kept = append(kept, sub)
	}
	b.subs = kept
	b.mu.Unlock()

	for _, listener := range matched {
		deliver(listener, evt)
	}
}

// Listeners reports how many listeners match name.
func (b *Bus) Listeners(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	count := 0
	for _, sub := range b.subs {
		if Match(sub.pattern, name) {
			count++
		}
	}
	return count
}

// Close drops every listener; later emits are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = nil
}

func deliver(listener Listener, evt Event) {
	defer func() {
		_ = recover()
	}()
	listener(evt)
}

// Match reports whether name satisfies pattern. Patterns are an exact name,
// "*", or a dotted prefix ending in ".*" which matches any deeper name.
func Match(pattern, name string) bool {
	switch {
	case pattern == "*":
		return true
	case pattern == name:
		return true
	case strings.HasSuffix(pattern, ".*"):
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(name, prefix) && len(name) > len(prefix)
	default:
		return false
	}
}

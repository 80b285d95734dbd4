// Package config stores the engine's free-form settings. Keys are dotted paths
// into nested maps, so Set("project.title", "x") and Get("project") agree.
package config

import (
	"strings"
	"sync"
)

// Store is a concurrency-safe nested key/value map.
type Store struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewStore creates a store seeded with a deep copy of initial.
func NewStore(initial map[string]any) *Store {
	s := &Store{data: make(map[string]any)}
	if initial != nil {
		s.Merge(initial)
	}
	return s
}

// Get resolves a dotted path.
func (s *Store) Get(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, false
	}
	var current any = s.data
	for _, segment := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return deepCopy(current), true
}

// GetString returns the value at path when it is a string.
func (s *Store) GetString(path, fallback string) string {
	value, ok := s.Get(path)
	if !ok {
		return fallback
	}
	if str, ok := value.(string); ok {
		return str
	}
	return fallback
}

// GetBool returns the value at path when it is a bool.
func (s *Store) GetBool(path string, fallback bool) bool {
	value, ok := s.Get(path)
	if !ok {
		return fallback
	}
	if b, ok := value.(bool); ok {
		return b
	}
	return fallback
}

// GetInt returns the value at path when it is numeric.
func (s *Store) GetInt(path string, fallback int) int {
	value, ok := s.Get(path)
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// Set writes value at path, creating intermediate maps and replacing any
// non-map value in the way.
func (s *Store) Set(path string, value any) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.data
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = deepCopy(value)
}

// Merge applies options on top of the store. Dotted keys are expanded and
// nested maps are merged recursively.
func (s *Store) Merge(options map[string]any) {
	for key, value := range options {
		if nested, ok := value.(map[string]any); ok {
			for childKey, childValue := range flatten(nested, key) {
				s.Set(childKey, childValue)
			}
			if len(nested) == 0 {
				s.Set(key, map[string]any{})
			}
			continue
		}
		s.Set(key, value)
	}
}

// All returns a deep copy of the stored settings.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepCopy(s.data).(map[string]any)
}

func flatten(in map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for key, value := range in {
		path := prefix + "." + key
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
			for k, v := range flatten(nested, path) {
				out[k] = v
			}
			continue
		}
		out[path] = value
	}
	return out
}

func splitPath(path string) []string {
	trimmed := strings.Trim(strings.TrimSpace(path), ".")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ".")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}

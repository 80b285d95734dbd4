// Package commands keeps the CLI commands contributed by extensions.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownCommand is returned by Run for unregistered names.
var ErrUnknownCommand = errors.New("commands: unknown command")

// Command is a named action with usage text.
type Command struct {
	Name        string
	Usage       string
	Description string
	Run         func(ctx context.Context, args []string) error
}

// Registry stores commands by name. Duplicate names are rejected.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Add registers cmd.
func (r *Registry) Add(cmd Command) error {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return errors.New("commands: command name is required")
	}
	if cmd.Run == nil {
		return fmt.Errorf("commands: command %q has no action", name)
	}
	cmd.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("commands: command %q already registered", name)
	}
	r.commands[name] = cmd
	return nil
}

// Get looks up a command.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[strings.TrimSpace(name)]
	return cmd, ok
}

// List returns the commands sorted by name.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run executes the named command.
func (r *Registry) Run(ctx context.Context, name string, args []string) error {
	cmd, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if err := cmd.Run(ctx, args); err != nil {
		return fmt.Errorf("commands: %s: %w", cmd.Name, err)
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores commands by name and dispatches invocations to them.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds c, replacing any command with the same name.
func (r *Registry) Register(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(c.Name())] = c
}

// Get returns the command with the given name, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[strings.ToLower(name)]
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Dispatch runs the command named by inv.
func (r *Registry) Dispatch(ctx context.Context, inv *Invocation) error {
	c := r.Get(inv.Name)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, inv.Name)
	}
	return c.Run(ctx, inv)
}

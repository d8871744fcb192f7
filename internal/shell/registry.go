package shell

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands. Lookups are
// case-insensitive.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Command
	cmds   []Command // sorted by name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Command),
	}
}

// Register adds c. It fails if the name or any alias is already taken.
func (r *Registry) Register(c Command) error {
	keys := append([]string{c.Name()}, c.Aliases()...)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		if prev, taken := r.byName[strings.ToLower(k)]; taken {
			return fmt.Errorf("command %q already registered by %s", k, prev.Name())
		}
	}
	for _, k := range keys {
		r.byName[strings.ToLower(k)] = c
	}

	i, _ := slices.BinarySearchFunc(r.cmds, c.Name(), func(have Command, name string) int {
		return strings.Compare(have.Name(), name)
	})
	r.cmds = slices.Insert(r.cmds, i, c)
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[strings.ToLower(name)]
	return cmd, ok
}

// All returns every command sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.cmds)
}

// DefaultRegistry holds the built-in shell commands.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a conflict.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}

// Package plugins resolves plugins declared by name in configuration files.
package plugins

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/efebarandurmaz/rspack/internal/core"
	"github.com/efebarandurmaz/rspack/internal/plugins/banner"
)

// ErrUnknownPlugin is returned when no factory is registered under a name.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Factory builds a plugin from its configuration options.
type Factory func(options map[string]any) (core.Plugin, error)

// Registry stores plugin factories keyed by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry returns a registry holding the plugins that ship with the
// bundler and can be referenced from configuration.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("banner", banner.FromOptions)
	return r
}

// Register adds a factory, replacing any previous one with the same name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Create instantiates the named plugin.
func (r *Registry) Create(name string, options map[string]any) (core.Plugin, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPlugin, name)
	}
	p, err := f(options)
	if err != nil {
		return nil, fmt.Errorf("plugin %q: %w", name, err)
	}
	return p, nil
}

// Names returns the registered plugin names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

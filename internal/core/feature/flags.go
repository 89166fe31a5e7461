// Package feature provides the housekeeping on/off toggle.
package feature

import (
	"context"
	"sync"
)

// Provider evaluates feature flags.
// Backends: in-memory (config driven) and the integration settings table.
type Provider interface {
	// IsEnabled reports whether flag is on. An error means the backend
	// could not be consulted; callers must not treat it as "off".
	IsEnabled(ctx context.Context, flag string) (bool, error)
}

// Feature flag names
const (
	FlagHousekeeping = "housekeeping"
)

// InMemoryFlags is a simple in-memory feature flag provider.
type InMemoryFlags struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewInMemoryFlags creates an in-memory flag provider.
func NewInMemoryFlags() *InMemoryFlags {
	return &InMemoryFlags{flags: make(map[string]bool)}
}

// Static returns a provider with the given flags switched on.
func Static(enabled ...string) *InMemoryFlags {
	f := NewInMemoryFlags()
	for _, flag := range enabled {
		f.flags[flag] = true
	}
	return f
}

func (f *InMemoryFlags) IsEnabled(_ context.Context, flag string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.flags[flag], nil
}

// SetFlag sets a boolean flag.
func (f *InMemoryFlags) SetFlag(flag string, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[flag] = enabled
}

var _ Provider = (*InMemoryFlags)(nil)

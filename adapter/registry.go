package adapter

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/hupe1980/stile"
)

var (
	// ErrUnknownAdapter is returned for names missing from a Registry.
	ErrUnknownAdapter = errors.New("unknown adapter")

	// ErrDuplicateAdapter is returned when a name is registered twice.
	ErrDuplicateAdapter = errors.New("adapter already registered")
)

// Provider builds the systematics tests wrapped by the adapters.
type Provider interface {
	StarXGalaxyDensity() SysTest
	StarXGalaxyShear() SysTest
	// Stat returns a summary-statistics test over field.
	Stat(field string) SysTest
}

// Config is handed to adapter factories.
type Config struct {
	Tests   Provider
	Logger  *stile.Logger
	Metrics stile.MetricsCollector
}

func (c Config) check() error {
	if c.Tests == nil {
		return errors.New("adapter config: no test provider")
	}
	return nil
}

// Factory creates an adapter.
type Factory func(cfg Config) (Adapter, error)

// Registry maps names to adapter factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return errors.New("adapter registry: empty name or nil factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAdapter, name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Get returns the factory registered under name.
func (r *Registry) Get(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// New creates the adapter registered under name.
func (r *Registry) New(name string, cfg Config) (Adapter, error) {
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAdapter, name)
	}
	return f(cfg)
}

// Default holds the adapters available to the pipeline. StarXGalaxyDensity
// stays unregistered until random catalogs are supported.
var Default = func() *Registry {
	r := NewRegistry()
	r.MustRegister("StatsPSFFlux", NewStatsPSFFlux)
	r.MustRegister("StarXGalaxyShear", NewStarXGalaxyShear)
	return r
}()

package validator

import (
	"sort"
	"sync"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/errors"
)

// Factory creates a rule instance.
type Factory func() Validator

// Registry maps rule names to factories. It is filled explicitly at start
// up; there is no discovery.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a rule. Names are unique.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.Newf(errors.ErrorTypeConflict, "validator %s already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is Register that panics on a duplicate name.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Names returns the registered names, sorted.
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

// Create instantiates the named rules, or every rule when names is empty.
func (r *Registry) Create(names ...string) ([]Validator, error) {
	if len(names) == 0 {
		names = r.Names()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Validator, 0, len(names))
	for _, name := range names {
		factory, ok := r.factories[name]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeNotFound, "validator %s not found", name)
		}
		out = append(out, factory())
	}
	return out, nil
}

package component

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicateKey is returned when two types resolve to the same qualified key.
var ErrDuplicateKey = errors.New("duplicate component key")

// Registry maps qualified keys to component type descriptors.
type Registry struct {
	types map[string]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Descriptor)}
}

// FromDiscovery builds a registry from every registered library. The
// built-in library is included only when builtin is true.
func FromDiscovery(builtin bool) (*Registry, error) {
	return FromLibraries(Libraries(), builtin)
}

// FromLibraries builds a registry from the given libraries.
func FromLibraries(libs []Library, builtin bool) (*Registry, error) {
	r := NewRegistry()
	for _, lib := range libs {
		if lib.Builtin && !builtin {
			continue
		}
		for _, d := range lib.Types {
			if d.Name == "" || strings.Contains(d.Name, ".") {
				return nil, fmt.Errorf("library %s: invalid component type name %q", lib.Name, d.Name)
			}
			if err := r.Add(JoinKey(lib.Name, d.Name), d); err != nil {
				return nil, fmt.Errorf("library %s: %w", lib.Name, err)
			}
		}
	}
	return r, nil
}

// Add registers a descriptor under key.
func (r *Registry) Add(key string, d Descriptor) error {
	if _, _, err := SplitKey(key); err != nil {
		return err
	}
	if _, dup := r.types[key]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	r.types[key] = d
	return nil
}

// Get returns the descriptor registered under key.
func (r *Registry) Get(key string) (Descriptor, bool) {
	d, ok := r.types[key]
	return d, ok
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.types[key]
	return ok
}

// Keys returns all registered keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.types))
	for k := range r.types {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.types)
}

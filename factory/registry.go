package factory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nexus-rl/envbridge/config"
)

// ErrUnknownComponent is returned when a spec names a component that was
// never registered.
var ErrUnknownComponent = errors.New("unknown component")

// Builder constructs a component of one kind from the spec parameters.
type Builder[T any] func(params map[string]interface{}) (T, error)

// Registry maps component names to builders of one component kind.
type Registry[T any] struct {
	kind     string
	builders map[string]Builder[T]
}

func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:     kind,
		builders: make(map[string]Builder[T]),
	}
}

// Register adds a builder under the given name. Registering the same name
// twice is a programming error.
func (r *Registry[T]) Register(name string, b Builder[T]) {
	if _, ok := r.builders[name]; ok {
		panic(fmt.Sprintf("%s %q registered twice", r.kind, name))
	}
	r.builders[name] = b
}

// Build resolves a spec into a component instance.
func (r *Registry[T]) Build(spec config.ComponentSpec) (T, error) {
	var zero T
	b, ok := r.builders[spec.Name]
	if !ok {
		return zero, fmt.Errorf("%w: %s %q, registered: %v",
			ErrUnknownComponent, r.kind, spec.Name, r.Names())
	}
	component, err := b(spec.Params)
	if err != nil {
		return zero, fmt.Errorf("building %s %q: %w", r.kind, spec.Name, err)
	}
	return component, nil
}

// Names of the registered components, sorted
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

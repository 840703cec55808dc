package task

import "github.com/kbukum/loom/errors"

// Registry holds the task definitions for one run in declaration order.
// It is a pure data container: graph validation happens at build time.
type Registry struct {
	order []string
	defs  map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Add registers a definition. The name must be unique within the run.
func (r *Registry) Add(def Definition) error {
	if def.Name == "" {
		return errors.InvalidMappedSignature("", "definition has no name")
	}
	if _, exists := r.defs[def.Name]; exists {
		return errors.DuplicateTask(def.Name)
	}
	d := def.clone()
	r.order = append(r.order, d.Name)
	r.defs[d.Name] = &d
	return nil
}

// Get returns a definition by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns the task names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Final returns the name of the last-declared task, or "".
func (r *Registry) Final() string {
	if len(r.order) == 0 {
		return ""
	}
	return r.order[len(r.order)-1]
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int { return len(r.order) }

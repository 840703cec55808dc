package task

import "fmt"

// Inputs holds the resolved dependency values injected into a task body,
// keyed by dependency name. Inputs are resolved before the instance starts
// and are read-only from the body's point of view.
type Inputs map[string]any

// Get retrieves a dependency's result by task name.
func (in Inputs) Get(name string) (any, bool) {
	v, ok := in[name]
	return v, ok
}

// Input retrieves a typed dependency result. It fails if the name is
// missing or the stored value has a different type.
func Input[T any](in Inputs, name string) (T, error) {
	var zero T
	raw, ok := in[name]
	if !ok {
		return zero, fmt.Errorf("task: input %q not found", name)
	}
	val, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("task: input %q: expected %T, got %T", name, zero, raw)
	}
	return val, nil
}

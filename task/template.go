package task

import (
	"fmt"

	"github.com/kbukum/loom/errors"
)

// Template is a reusable workflow: an ordered list of definitions that a
// builder clones and selectively replaces entries in. Composition replaces
// the original's subclass-and-override pattern.
type Template struct {
	defs []Definition
}

// NewTemplate creates a template from the given definitions, preserving
// order.
func NewTemplate(defs ...Definition) *Template {
	t := &Template{defs: make([]Definition, 0, len(defs))}
	for _, d := range defs {
		t.defs = append(t.defs, d.clone())
	}
	return t
}

// Override returns a new template with the named entry replaced in place.
// The replacement keeps the original's position; its name must match.
func (t *Template) Override(name string, def Definition) (*Template, error) {
	if def.Name != name {
		return nil, errors.InvalidMappedSignature(def.Name, "override must keep the task name "+name)
	}
	out := t.copy()
	for i := range out.defs {
		if out.defs[i].Name == name {
			out.defs[i] = def.clone()
			return out, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnknownDependency,
		fmt.Sprintf("template has no task named %q to override", name))
}

// Extend returns a new template with the given definitions appended.
func (t *Template) Extend(defs ...Definition) *Template {
	out := t.copy()
	for _, d := range defs {
		out.defs = append(out.defs, d.clone())
	}
	return out
}

// Build clones the template into a fresh registry for one run.
func (t *Template) Build() (*Registry, error) {
	reg := NewRegistry()
	for _, d := range t.defs {
		if err := reg.Add(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (t *Template) copy() *Template {
	out := &Template{defs: make([]Definition, 0, len(t.defs))}
	for _, d := range t.defs {
		out.defs = append(out.defs, d.clone())
	}
	return out
}

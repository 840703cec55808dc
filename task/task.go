package task

import (
	"context"

	"github.com/kbukum/loom/errors"
)

// RunFunc is the body of a non-mapped task. Resolved dependency results are
// available through in.
type RunFunc func(ctx context.Context, in Inputs) (any, error)

// ItemFunc is the body of a mapped task, invoked once per item of the
// resolved source iterable.
type ItemFunc func(ctx context.Context, in Inputs, item any) (any, error)

// Definition declares one named unit of work.
type Definition struct {
	// Name uniquely identifies the task within a run.
	Name string
	// DependsOn names the tasks whose results this task consumes.
	DependsOn []string
	// Run is the body of a non-mapped task. Exactly one of Run and RunItem
	// must be set, matching Source.
	Run RunFunc
	// RunItem is the body of a mapped task.
	RunItem ItemFunc
	// Source supplies the items a mapped task iterates over.
	Source Source
	// Blocking marks a body that performs synchronous I/O or CPU-bound
	// work. Blocking bodies are admitted through the engine's bounded pool.
	Blocking bool
	// Policy is the robustness policy applied to every instance.
	Policy Policy
}

// Mapped reports whether the definition expands over an item source.
func (d *Definition) Mapped() bool {
	return d.Source.kind != sourceNone
}

// Validate checks the definition shape: a mapped task needs exactly an item
// body, a plain task exactly a plain body.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return errors.InvalidMappedSignature("", "definition has no name")
	}
	if err := d.Policy.Validate(d.Name); err != nil {
		return err
	}
	if d.Mapped() {
		if d.RunItem == nil {
			return errors.InvalidMappedSignature(d.Name, "has an item source but no item body (RunItem)")
		}
		if d.Run != nil {
			return errors.InvalidMappedSignature(d.Name, "has an item source and a plain body; a mapped task takes exactly one free item parameter")
		}
		return nil
	}
	if d.RunItem != nil {
		return errors.InvalidMappedSignature(d.Name, "has an item body but no item source")
	}
	if d.Run == nil {
		return errors.InvalidMappedSignature(d.Name, "has no body")
	}
	return nil
}

// clone returns a deep-enough copy for template composition: slices are
// copied so overrides never alias the template's backing arrays.
func (d Definition) clone() Definition {
	out := d
	out.DependsOn = append([]string(nil), d.DependsOn...)
	out.Source = d.Source.clone()
	return out
}

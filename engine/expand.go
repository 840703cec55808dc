package engine

import (
	"fmt"
	"reflect"
	"time"

	"github.com/kbukum/loom/errors"
	"github.com/kbukum/loom/resilience"
	"github.com/kbukum/loom/task"
)

// expansion is one tier task prepared for execution: its resolved inputs,
// its instances, and the admission gates shared by those instances.
type expansion struct {
	def    *task.Definition
	inputs task.Inputs
	insts  []*Instance

	// Admission gates, mapped tasks only. They are scoped to this task's
	// expansion and never throttle unrelated tasks.
	workers *resilience.Bulkhead
	limiter *resilience.RateLimiter
}

// expand turns a tier task into its instances. Mapped tasks expand into one
// instance per item at this moment, after resolving the item source; an
// empty iterable completes the task immediately with an empty sequence.
// The bool result reports whether there is anything to run.
func (r *run) expand(def *task.Definition) (*expansion, bool) {
	exp := &expansion{def: def, inputs: r.resolveInputs(def)}

	if !def.Mapped() {
		exp.insts = []*Instance{newInstance(def.Name, -1, nil)}
		return exp, true
	}

	items, err := r.resolveItems(def)
	if err != nil {
		// A failed item source propagates as-is; the mapped task is never
		// independently retried. The failure is terminal for the run.
		r.results.setOutcome(def.Name, Outcome{Err: err})
		r.results.setFailure(err)
		r.cancel(err)
		return nil, false
	}
	if len(items) == 0 {
		r.results.setOutcome(def.Name, Outcome{Value: []any{}})
		return nil, false
	}

	exp.insts = make([]*Instance, len(items))
	for i, item := range items {
		exp.insts[i] = newInstance(def.Name, i, item)
	}
	if def.Policy.Workers > 0 {
		exp.workers = resilience.NewBulkhead(def.Policy.Workers)
	}
	if def.Policy.LimitPerMinute > 0 {
		exp.limiter = resilience.PerMinute(def.Policy.LimitPerMinute)
	}
	return exp, true
}

// resolveInputs gathers the already-recorded results of the task's declared
// dependencies. Dependencies are guaranteed terminal-and-successful here:
// a failed dependency halts the run before this tier starts.
func (r *run) resolveInputs(def *task.Definition) task.Inputs {
	in := make(task.Inputs, len(def.DependsOn))
	for _, dep := range def.DependsOn {
		if o, ok := r.results.Lookup(dep); ok && o.Err == nil {
			in[dep] = o.Value
		}
	}
	return in
}

// resolveItems materializes the item sequence of a mapped task.
func (r *run) resolveItems(def *task.Definition) ([]any, error) {
	if def.Source.Static() {
		return def.Source.Items(), nil
	}

	src := def.Source.Task()
	o, ok := r.results.Lookup(src)
	if !ok {
		return nil, errors.ResultUnavailable(src)
	}
	if o.Err != nil {
		return nil, o.Err
	}
	return materializeItems(def.Name, o.Value)
}

// materializeItems turns a source result into the item slice, preserving
// source order.
func materializeItems(taskName string, v any) ([]any, error) {
	switch items := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return items, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.InvalidMappedSignature(taskName,
			fmt.Sprintf("item source result of type %T is not iterable", v))
	}
	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

// finalize aggregates a completed expansion into the result store.
// Completion order is not result order: mapped results are assembled by
// instance index.
func (r *run) finalize(exp *expansion) {
	def := exp.def

	if !def.Mapped() {
		inst := exp.insts[0]
		switch inst.State() {
		case StateSucceeded:
			r.results.setOutcome(def.Name, Outcome{Value: inst.Value()})
			r.results.setTiming(def.Name, inst.Duration())
		case StateFailed:
			r.results.setOutcome(def.Name, Outcome{Err: inst.Err()})
			r.results.setTiming(def.Name, inst.Duration())
		}
		// Cancelled instances leave no slot; they are visible only through
		// the instance records.
		return
	}

	values := make([]any, len(exp.insts))
	var firstStart, lastEnd = exp.insts[0].Window()
	for _, inst := range exp.insts {
		start, end := inst.Window()
		if !start.IsZero() && (firstStart.IsZero() || start.Before(firstStart)) {
			firstStart = start
		}
		if end.After(lastEnd) {
			lastEnd = end
		}

		switch inst.State() {
		case StateSucceeded:
			values[inst.Index] = inst.Value()
		case StateFailed:
			r.results.setOutcome(def.Name, Outcome{Err: inst.Err()})
			r.results.setTiming(def.Name, span(firstStart, lastEnd))
			return
		case StateCancelled:
			return
		}
	}

	if def.Source.Single() {
		r.results.setOutcome(def.Name, Outcome{Value: values[0]})
	} else {
		r.results.setOutcome(def.Name, Outcome{Value: values})
	}
	r.results.setTiming(def.Name, span(firstStart, lastEnd))
}

func span(start, end time.Time) time.Duration {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return end.Sub(start)
}

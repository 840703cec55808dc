package engine

import (
	"sync"
	"time"

	"github.com/kbukum/loom/dag"
	"github.com/kbukum/loom/errors"
)

// Outcome is the tagged value-or-failure stored in one result slot.
type Outcome struct {
	Value any
	Err   error
}

// Unwrap returns the value, or the stored failure as an error.
func (o Outcome) Unwrap() (any, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	return o.Value, nil
}

// Results is the result store of one run: one write-once slot per task
// name, declaration-order iteration, a "final" alias for the last-declared
// task, per-task timings, and the instance records for inspection. It is
// mutated only by the coordinator between instance-completion events and
// never after the run returns.
type Results struct {
	mu       sync.RWMutex
	order    []string
	finalKey string
	slots    map[string]Outcome
	timings  map[string]time.Duration
	insts    []*Instance
	failure  error
	plan     *dag.Plan
}

func newResults(order []string, plan *dag.Plan) *Results {
	r := &Results{
		order:   append([]string(nil), order...),
		slots:   make(map[string]Outcome, len(order)),
		timings: make(map[string]time.Duration, len(order)),
		plan:    plan,
	}
	if len(order) > 0 {
		r.finalKey = order[len(order)-1]
	}
	return r
}

// Lookup returns the slot for a task name. ok is false if the task never
// reached a terminal state.
func (r *Results) Lookup(name string) (Outcome, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.slots[name]
	return o, ok
}

// Get returns a task's value, the stored failure, or RESULT_UNAVAILABLE if
// the task never got to run.
func (r *Results) Get(name string) (any, error) {
	o, ok := r.Lookup(name)
	if !ok {
		return nil, errors.ResultUnavailable(name)
	}
	return o.Unwrap()
}

// Final returns the result of the last-declared task.
func (r *Results) Final() (any, error) {
	r.mu.RLock()
	key := r.finalKey
	r.mu.RUnlock()
	if key == "" {
		return nil, errors.ResultUnavailable("")
	}
	return r.Get(key)
}

// Names returns the task names in declaration order.
func (r *Results) Names() []string {
	return append([]string(nil), r.order...)
}

// All returns the available outcomes in declaration order. Slots that were
// never filled are skipped.
func (r *Results) All() []Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Outcome, 0, len(r.order))
	for _, name := range r.order {
		if o, ok := r.slots[name]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Err returns the run's terminal failure: the first instance failure that
// exhausted its retries, or nil for a fully successful run.
func (r *Results) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.failure
}

// Timings returns each task's elapsed wall time. For mapped tasks this is
// the span from the first instance start to the last instance end.
func (r *Results) Timings() map[string]time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]time.Duration, len(r.timings))
	for k, v := range r.timings {
		out[k] = v
	}
	return out
}

// Instances returns every instance created during the run, in creation
// order. Cancelled collateral of another task's failure is visible here.
func (r *Results) Instances() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Instance(nil), r.insts...)
}

// InstancesOf returns the instances of one task in expansion order.
func (r *Results) InstancesOf(name string) []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Instance
	for _, inst := range r.insts {
		if inst.Task == name {
			out = append(out, inst)
		}
	}
	return out
}

// Plan returns the execution plan snapshot the run was built from.
func (r *Results) Plan() *dag.Plan {
	return r.plan
}

// --- coordinator-side mutation ---

// setOutcome fills a slot. Slots are write-once: the first outcome wins.
func (r *Results) setOutcome(name string, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.slots[name]; exists {
		return
	}
	r.slots[name] = o
}

func (r *Results) setTiming(name string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timings[name] = d
}

func (r *Results) addInstances(insts []*Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insts = append(r.insts, insts...)
}

// setFailure records the terminal failure. First failure wins.
func (r *Results) setFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure == nil {
		r.failure = err
	}
}

package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of one task instance.
type State int32

const (
	// StatePending marks an instance created but not yet admitted.
	StatePending State = iota
	// StateRunning marks an instance whose body is executing (or retrying).
	StateRunning
	// StateSucceeded marks a completed instance with a value.
	StateSucceeded
	// StateFailed marks an instance whose final attempt failed.
	StateFailed
	// StateCancelled marks an instance stopped by the run, not by its own
	// logic.
	StateCancelled
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// Instance is one concrete execution: a whole non-mapped task, or one
// element of a mapped task's expansion.
type Instance struct {
	// ID uniquely identifies the instance within the run.
	ID string
	// Task is the owning task name.
	Task string
	// Index is the element position for mapped instances, -1 otherwise.
	Index int
	// Item is the mapped element, nil for non-mapped instances.
	Item any

	mu        sync.Mutex
	state     State
	attempts  int
	startedAt time.Time
	endedAt   time.Time
	value     any
	err       error
}

func newInstance(taskName string, index int, item any) *Instance {
	return &Instance{
		ID:    uuid.NewString(),
		Task:  taskName,
		Index: index,
		Item:  item,
	}
}

// State returns the current lifecycle state.
func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Attempts returns the number of attempts made so far.
func (i *Instance) Attempts() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.attempts
}

// Window returns the start and end timestamps. The zero time means the
// instance never started (or never finished).
func (i *Instance) Window() (time.Time, time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.startedAt, i.endedAt
}

// Duration returns the elapsed wall time between start and end.
func (i *Instance) Duration() time.Duration {
	start, end := i.Window()
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return end.Sub(start)
}

// Value returns the instance result for succeeded instances.
func (i *Instance) Value() any {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.value
}

// Err returns the terminal failure for failed or cancelled instances.
func (i *Instance) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

func (i *Instance) markRunning() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = StateRunning
	i.startedAt = time.Now()
}

func (i *Instance) markAttempt(n int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.attempts = n
}

func (i *Instance) succeed(value any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = StateSucceeded
	i.value = value
	i.endedAt = time.Now()
}

func (i *Instance) fail(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = StateFailed
	i.err = err
	i.endedAt = time.Now()
}

func (i *Instance) cancel(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = StateCancelled
	i.err = err
	i.endedAt = time.Now()
}

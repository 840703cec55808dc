package task

type sourceKind int

const (
	sourceNone sourceKind = iota
	sourceStatic
	sourceTask
)

// Source declares where a mapped task's items come from: a static iterable
// fixed at build time, or the result of another task resolved when that
// task succeeds.
type Source struct {
	kind   sourceKind
	items  []any
	single bool
	task   string
}

// Each returns a static source over the given items. The mapped task runs
// one instance per item and its result is the ordered list of instance
// results.
func Each(items ...any) Source {
	return Source{kind: sourceStatic, items: items}
}

// Value returns a static single-value source: the item body runs once with
// v and the task's result is the bare instance result, not a list.
func Value(v any) Source {
	return Source{kind: sourceStatic, items: []any{v}, single: true}
}

// From returns a dynamic source naming another task. Resolution is deferred
// until that task succeeds; its result is iterated as the item sequence.
func From(name string) Source {
	return Source{kind: sourceTask, task: name}
}

// Static reports whether the items are fixed at build time.
func (s Source) Static() bool { return s.kind == sourceStatic }

// Single reports whether this is the single-value convenience form.
func (s Source) Single() bool { return s.single }

// Task returns the named source task for dynamic sources, or "".
func (s Source) Task() string { return s.task }

// Items returns the static items. Nil for dynamic sources.
func (s Source) Items() []any { return s.items }

func (s Source) clone() Source {
	out := s
	out.items = append([]any(nil), s.items...)
	return out
}

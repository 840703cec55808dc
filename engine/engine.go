package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/loom/dag"
	"github.com/kbukum/loom/logger"
	"github.com/kbukum/loom/observability"
	"github.com/kbukum/loom/resilience"
	"github.com/kbukum/loom/task"
)

// Engine executes task registries. One engine can drive many runs; all
// per-run state lives on the run, not the engine.
type Engine struct {
	cfg      Config
	log      *logger.Logger
	metrics  *observability.Metrics
	blocking *resilience.Bulkhead
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger to the engine.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l.WithComponent("engine") }
}

// WithMetrics attaches scheduler metric instruments to the engine.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine from configuration.
func New(cfg Config, opts ...Option) *Engine {
	cfg.ApplyDefaults()
	e := &Engine{
		cfg:      cfg,
		log:      logger.Nop(),
		blocking: resilience.NewBulkhead(cfg.MaxWorkers),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan validates the registry and returns the execution plan snapshot
// without running anything.
func (e *Engine) Plan(reg *task.Registry, initial map[string]any) (*dag.Plan, error) {
	return dag.Build(reg, seedNames(initial))
}

// Run executes the registry to completion. initial seeds pre-satisfied
// result slots that dependencies may name; a seed whose name collides
// with a declared task fails the build with DUPLICATE_TASK.
//
// Build-time validation errors are always returned directly and nothing
// executes. A run-time terminal failure is returned or captured in its
// task's result slot depending on Config.Propagation; in both cases the
// returned Results is valid and holds everything that completed. The
// caller's context cancelling the run is always returned as an error.
func (e *Engine) Run(ctx context.Context, reg *task.Registry, initial map[string]any) (*Results, error) {
	plan, err := dag.Build(reg, seedNames(initial))
	if err != nil {
		return nil, err
	}

	results := newResults(reg.Names(), plan)
	for name, value := range initial {
		results.setOutcome(name, Outcome{Value: value})
	}

	r := &run{
		engine:  e,
		reg:     reg,
		plan:    plan,
		results: results,
		id:      uuid.NewString(),
	}
	r.log = e.log.WithFields(logger.Fields(logger.FieldRunID, r.id))

	if e.cfg.Debug {
		r.log.Info("execution plan\n" + dag.Render(plan))
	}

	if err := r.execute(ctx); err != nil {
		if ctx.Err() != nil || e.cfg.Propagation == PropagateRaise {
			return results, err
		}
	}
	return results, nil
}

func seedNames(initial map[string]any) []string {
	names := make([]string, 0, len(initial))
	for name := range initial {
		names = append(names, name)
	}
	return names
}

func (e *Engine) recordInstance(ctx context.Context, taskName, status string, d time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordInstance(ctx, taskName, status, d)
	}
}

func (e *Engine) recordRetry(ctx context.Context, taskName string) {
	if e.metrics != nil {
		e.metrics.RecordRetry(ctx, taskName)
	}
}

// run is the per-run coordinator state.
type run struct {
	engine  *Engine
	reg     *task.Registry
	plan    *dag.Plan
	results *Results
	id      string
	log     *logger.Logger

	ctx    context.Context
	cancel context.CancelCauseFunc
}

// execute drives the tiers strictly in order. Tier i+1 instances are not
// created until every instance of tier i is terminal.
func (r *run) execute(ctx context.Context) error {
	rc := observability.NewRunContext(r.id, r.engine.metrics)
	sctx, runSpan := rc.StartRunSpan(ctx)

	runCtx, cancel := context.WithCancelCause(sctx)
	defer cancel(nil)
	r.ctx = runCtx
	r.cancel = cancel

	r.log.Info("run started", logger.Fields(
		"tasks", r.reg.Len(),
		"tiers", len(r.plan.Tiers),
	))

	for i, tier := range r.plan.Tiers {
		if r.results.Err() != nil || runCtx.Err() != nil {
			break
		}
		r.runTier(i, tier)
	}

	r.propagateSourceFailures()

	err := ctx.Err()
	if err == nil {
		err = r.results.Err()
	}

	if err != nil {
		rc.EndRunSpan(ctx, runSpan, "failed", err)
		return err
	}

	rc.EndRunSpan(ctx, runSpan, "succeeded", nil)
	r.log.Info("run complete", logger.Fields(
		logger.FieldDuration, rc.Duration().Milliseconds(),
	))
	return nil
}

// runTier expands and launches every instance of one tier concurrently,
// then waits for all of them to reach a terminal state before aggregating.
func (r *run) runTier(idx int, names []string) {
	r.log.Debug("tier started", logger.Fields(logger.FieldTier, idx))

	expansions := make([]*expansion, 0, len(names))
	for _, name := range names {
		def, _ := r.reg.Get(name)
		exp, runnable := r.expand(def)
		if !runnable {
			continue
		}
		r.results.addInstances(exp.insts)
		expansions = append(expansions, exp)
	}

	var wg sync.WaitGroup
	for _, exp := range expansions {
		for _, inst := range exp.insts {
			wg.Add(1)
			go func(exp *expansion, inst *Instance) {
				defer wg.Done()
				r.runInstance(exp, inst)
			}(exp, inst)
		}
	}
	wg.Wait()

	for _, exp := range expansions {
		r.finalize(exp)
	}

	r.log.Debug("tier complete", logger.Fields(logger.FieldTier, idx))
}

// propagateSourceFailures records a mapped task's slot as its failed
// dynamic source's failure. The mapped task never ran and is not
// independently retried. Walks the topological order, where every source
// precedes its consumers, so the failure crosses chains of mapped tasks
// no matter how they were declared.
func (r *run) propagateSourceFailures() {
	for _, name := range r.plan.Order {
		def, _ := r.reg.Get(name)
		src := def.Source.Task()
		if src == "" {
			continue
		}
		if _, ok := r.results.Lookup(name); ok {
			continue
		}
		if o, ok := r.results.Lookup(src); ok && o.Err != nil {
			r.results.setOutcome(name, Outcome{Err: o.Err})
		}
	}
}

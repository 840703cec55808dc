package engine

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/loom/errors"
	"github.com/kbukum/loom/logger"
	"github.com/kbukum/loom/observability"
	"github.com/kbukum/loom/resilience"
	"github.com/kbukum/loom/task"
)

// runInstance executes one instance under its task's policy. It owns the
// instance's full lifecycle: admission through the task gates and the
// blocking pool, the retry/timeout loop, and the terminal transition.
func (r *run) runInstance(exp *expansion, inst *Instance) {
	def := exp.def
	ctx := r.ctx

	// Admission gates. Rate limiting spaces out starts; the worker cap
	// bounds concurrently running instances of this mapped task; the
	// blocking pool bounds synchronous bodies across the whole run.
	if exp.limiter != nil {
		if err := exp.limiter.Wait(ctx); err != nil {
			r.cancelInstance(inst)
			return
		}
	}
	if exp.workers != nil {
		if err := exp.workers.Acquire(ctx); err != nil {
			r.cancelInstance(inst)
			return
		}
		defer exp.workers.Release()
	}
	if def.Blocking {
		if err := r.engine.blocking.Acquire(ctx); err != nil {
			r.cancelInstance(inst)
			return
		}
		defer r.engine.blocking.Release()
	}
	if ctx.Err() != nil {
		r.cancelInstance(inst)
		return
	}

	inst.markRunning()
	spanCtx, span := observability.StartSpan(ctx, observability.SpanInstance)
	defer span.End()
	observability.SetSpanAttribute(spanCtx, observability.AttrTask, inst.Task)
	observability.SetSpanAttribute(spanCtx, observability.AttrInstance, inst.ID)

	cfg := resilience.RetryConfig{
		MaxAttempts: def.Policy.MaxAttempts(),
		RetryIf: func(err error) bool {
			return ctx.Err() == nil && !stderrors.Is(err, context.Canceled)
		},
		OnRetry: func(attempt int, err error, _ time.Duration) {
			r.log.Warn("attempt failed, retrying", logger.Fields(
				logger.FieldTask, inst.Task,
				logger.FieldInstance, inst.ID,
				logger.FieldAttempt, attempt,
				logger.FieldError, err.Error(),
			))
			r.engine.recordRetry(spanCtx, inst.Task)
		},
	}

	value, attempts, err := resilience.Retry(spanCtx, cfg, func(attempt int) (any, error) {
		inst.markAttempt(attempt)
		return r.attempt(spanCtx, def, exp.inputs, inst)
	})

	switch {
	case err == nil:
		inst.succeed(value)
		r.engine.recordInstance(spanCtx, inst.Task, "succeeded", inst.Duration())
	case stderrors.Is(err, context.Canceled) || ctx.Err() != nil:
		observability.SetSpanError(spanCtx, err)
		r.cancelInstance(inst)
	default:
		if def.Policy.Retries > 0 {
			err = errors.RetriesExhausted(inst.Task, attempts, err)
		}
		inst.fail(err)
		observability.SetSpanError(spanCtx, err)
		r.engine.recordInstance(spanCtx, inst.Task, "failed", inst.Duration())
		r.failRun(inst, err)
	}
}

// attempt runs the body once, racing it against the policy deadline.
func (r *run) attempt(ctx context.Context, def *task.Definition, in task.Inputs, inst *Instance) (any, error) {
	actx := ctx
	cancel := func() {}
	if def.Policy.Timeout > 0 {
		actx, cancel = context.WithTimeout(ctx, def.Policy.Timeout)
	}
	defer cancel()

	var value any
	var err error
	if def.Mapped() {
		value, err = def.RunItem(actx, in, inst.Item)
	} else {
		value, err = def.Run(actx, in)
	}
	if err == nil {
		return value, nil
	}

	// Deadline expiry on the attempt context is this task's timeout policy;
	// anything arriving through the run context is external cancellation.
	if def.Policy.Timeout > 0 && actx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return nil, errors.TimeoutExceeded(def.Name, def.Policy.Timeout.Seconds()).WithCause(err)
	}
	if ctx.Err() != nil {
		return nil, context.Canceled
	}
	return nil, err
}

// cancelInstance transitions an instance to Cancelled as collateral of the
// run's terminal failure (or the caller's cancellation).
func (r *run) cancelInstance(inst *Instance) {
	err := errors.Cancelled(inst.Task)
	if cause := context.Cause(r.ctx); cause != nil {
		err = err.WithCause(cause)
	}
	inst.cancel(err)
	r.engine.recordInstance(r.ctx, inst.Task, "cancelled", inst.Duration())
	r.log.Debug("instance cancelled", logger.Fields(
		logger.FieldTask, inst.Task,
		logger.FieldInstance, inst.ID,
	))
}

// failRun marks the run terminally failed: no further tiers start and
// everything still running is cancelled.
func (r *run) failRun(inst *Instance, err error) {
	r.results.setFailure(err)
	r.cancel(err)
	r.log.Error("task failed, cancelling run", logger.Fields(
		logger.FieldTask, inst.Task,
		logger.FieldInstance, inst.ID,
		logger.FieldAttempt, inst.Attempts(),
		logger.FieldError, err.Error(),
	))
}

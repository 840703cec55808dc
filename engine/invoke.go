package engine

import (
	"context"
	"sync"

	"github.com/kbukum/loom/errors"
)

// MaxInvokeDepth is the nesting ceiling for dynamic invocations.
const MaxInvokeDepth = 100

type invokeDepthKey struct{}

// Invoke executes an arbitrary callable inside a task body under the same
// cancellation rules as the body itself. Nested invocations share a depth
// counter carried on the context; exceeding MaxInvokeDepth fails with
// RECURSION_LIMIT_EXCEEDED.
func Invoke(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	ictx, err := deepen(ctx)
	if err != nil {
		return nil, err
	}
	return fn(ictx)
}

// InvokeEach executes fn once per item, all items concurrently, and
// returns the results in item order regardless of completion order. The
// first error cancels the remaining invocations.
func InvokeEach(ctx context.Context, items []any, fn func(context.Context, any) (any, error)) ([]any, error) {
	ictx, err := deepen(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []any{}, nil
	}

	ictx, cancel := context.WithCancelCause(ictx)
	defer cancel(nil)

	results := make([]any, len(items))
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for i, item := range items {
		wg.Add(1)
		go func(i int, item any) {
			defer wg.Done()
			v, err := fn(ictx, item)
			if err != nil {
				once.Do(func() {
					firstErr = err
					cancel(err)
				})
				return
			}
			results[i] = v
		}(i, item)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// InvokeDepth returns the current dynamic-invocation nesting depth.
func InvokeDepth(ctx context.Context) int {
	if d, ok := ctx.Value(invokeDepthKey{}).(int); ok {
		return d
	}
	return 0
}

func deepen(ctx context.Context) (context.Context, error) {
	depth := InvokeDepth(ctx)
	if depth >= MaxInvokeDepth {
		return nil, errors.RecursionLimitExceeded(MaxInvokeDepth)
	}
	return context.WithValue(ctx, invokeDepthKey{}, depth+1), nil
}

package async

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes multiple tasks in parallel and waits for all of them.
// Errors from every failing task are joined, each prefixed with the task name.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))

	for _, task := range tasks {
		go func() {
			err := task.Func(ctx)
			resultChan <- result{name: task.Name, err: err}
		}()
	}

	var errs []error
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.name, res.err))
		}
	}

	return errors.Join(errs...)
}

// Map calls fn for every item concurrently, at most limit at a time
// (limit <= 0 means unbounded), and returns the results in input order.
// The first error cancels the context passed to the remaining calls and is
// returned; no partial results are returned.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Future is the pending outcome of a function started with Go.
type Future struct {
	name string
	done chan struct{}
	err  error
}

// Go runs fn in the background. The caller is not blocked; the outcome is
// available through the returned Future.
func Go(ctx context.Context, name string, fn func(context.Context) error) *Future {
	f := &Future{name: name, done: make(chan struct{})}
	go func() {
		defer close(f.done)
		if err := fn(ctx); err != nil {
			f.err = fmt.Errorf("%s: %w", name, err)
		}
	}()
	return f
}

// Name returns the name given to Go.
func (f *Future) Name() string {
	return f.name
}

// Done is closed once the function has returned.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the function returns or ctx is done.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

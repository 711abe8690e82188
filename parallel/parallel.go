// Package parallel provides the fan-out/fan-in primitive shared by the
// availability coordinator and the validation aggregator: run N independent
// tasks on a bounded pool, collect one result per input positionally, and
// substitute a fallback result for any task that exceeds its per-task
// timeout.
package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Options configures a Run call.
type Options struct {
	// MaxWorkers bounds the number of tasks executing at once.
	// Zero or negative means one worker per input.
	MaxWorkers int
	// TaskTimeout bounds each task individually. Zero means no timeout.
	// A task exceeding the timeout is abandoned: its slot in the result
	// slice is filled by the fallback and any late result is discarded.
	TaskTimeout time.Duration
}

// Run executes fn once per input and returns exactly len(inputs) results in
// input order, regardless of completion order. Tasks run concurrently on a
// pool bounded by MaxWorkers. A task that times out, panics, or is cut short
// by ctx cancellation is substituted by fallback(input, cause); siblings are
// never cancelled by one task's failure.
//
// Zero inputs return an empty slice immediately without dispatching.
func Run[In, Out any](ctx context.Context, inputs []In, fn func(ctx context.Context, in In) Out, fallback func(in In, cause error) Out, optFns ...func(o *Options)) []Out {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	results := make([]Out, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = len(inputs)
	}
	sem := make(chan struct{}, maxWorkers)

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in In) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			taskCtx := ctx
			cancel := func() {}
			if opts.TaskTimeout > 0 {
				taskCtx, cancel = context.WithTimeout(ctx, opts.TaskTimeout)
			}
			defer cancel()

			// Buffered so an abandoned task's late result is dropped
			// instead of leaking its goroutine.
			resCh := make(chan Out, 1)
			errCh := make(chan error, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						errCh <- fmt.Errorf("task panicked: %v", r)
					}
				}()
				resCh <- fn(taskCtx, in)
			}()

			select {
			case out := <-resCh:
				results[i] = out
			case err := <-errCh:
				results[i] = fallback(in, err)
			case <-taskCtx.Done():
				results[i] = fallback(in, taskCtx.Err())
			}
		}(i, in)
	}

	wg.Wait()
	return results
}

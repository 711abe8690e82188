package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/ledger"
	"github.com/hupe1980/schedmesh/logging"
	"github.com/hupe1980/schedmesh/parallel"
)

const (
	// DefaultWorkerTimeout bounds one attendee check.
	DefaultWorkerTimeout = 3 * time.Second
	// DefaultMaxParallel bounds the worker pool.
	DefaultMaxParallel = 50
)

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	// WorkerTimeout bounds each individual attendee check. A worker
	// exceeding it is abandoned and substituted by an unknown result.
	WorkerTimeout time.Duration
	// MaxParallel bounds the number of workers running at once.
	MaxParallel int
	Ledger      core.Ledger
	Logger      logging.Logger
}

// Coordinator fans one Worker out per check request and fans the results
// back in. It always waits for every worker to complete or time out before
// returning; there is no early cancellation on first failure, so partial
// failure of one attendee never blocks visibility into the others.
type Coordinator struct {
	worker      *Worker
	timeout     time.Duration
	maxParallel int
	ledger      core.Ledger
	logger      logging.Logger
}

// NewCoordinator creates a coordinator dispatching workers against the given
// provider.
func NewCoordinator(provider core.CalendarProvider, optFns ...func(o *CoordinatorOptions)) *Coordinator {
	opts := CoordinatorOptions{
		WorkerTimeout: DefaultWorkerTimeout,
		MaxParallel:   DefaultMaxParallel,
		Ledger:        ledger.Discard(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	worker := NewWorker(provider, func(o *WorkerOptions) {
		o.Ledger = opts.Ledger
		o.Logger = opts.Logger
	})

	return &Coordinator{
		worker:      worker,
		timeout:     opts.WorkerTimeout,
		maxParallel: opts.MaxParallel,
		ledger:      opts.Ledger,
		logger:      opts.Logger,
	}
}

// WorkerTimeout returns the per-worker timeout in effect.
func (c *Coordinator) WorkerTimeout() time.Duration { return c.timeout }

// CheckAll dispatches one worker per request and returns exactly one result
// per request, in input order regardless of completion order. A worker
// exceeding the per-worker timeout is abandoned (a late result is discarded)
// and replaced with an unknown-status result carrying the timeout error.
//
// Zero requests return an empty slice immediately without dispatching.
func (c *Coordinator) CheckAll(ctx context.Context, reqs []core.CheckRequest) []core.AvailabilityResult {
	if len(reqs) == 0 {
		return []core.AvailabilityResult{}
	}

	correlationID := reqs[0].CorrelationID
	start := time.Now()

	c.ledger.Record(core.NewThought(correlationID, core.ThoughtDecision,
		fmt.Sprintf("spawning %d availability workers", len(reqs))).
		WithMetadata(map[string]any{"worker_count": len(reqs), "timeout": c.timeout.String()}))

	results := parallel.Run(ctx, reqs,
		func(ctx context.Context, req core.CheckRequest) core.AvailabilityResult {
			return c.worker.Check(ctx, req)
		},
		func(req core.CheckRequest, cause error) core.AvailabilityResult {
			return core.AvailabilityResult{
				AttendeeID: req.AttendeeID,
				Status:     core.StatusUnknown,
				Elapsed:    c.timeout,
				Err:        fmt.Errorf("availability check for %s timed out after %s: %w", req.AttendeeID, c.timeout, cause),
			}
		},
		func(o *parallel.Options) {
			o.TaskTimeout = c.timeout
			o.MaxWorkers = c.maxParallel
		})

	elapsed := time.Since(start)
	counts := countByStatus(results)
	c.logger.Info("availability fan-in complete",
		"workers", len(reqs),
		"available", counts[core.StatusAvailable],
		"busy", counts[core.StatusBusy],
		"unknown", counts[core.StatusUnknown],
		"duration", elapsed)

	c.ledger.Record(core.NewThought(correlationID, core.ThoughtAnalysis,
		fmt.Sprintf("availability checks finished: %d available, %d busy, %d unknown in %s",
			counts[core.StatusAvailable], counts[core.StatusBusy], counts[core.StatusUnknown], elapsed.Round(time.Millisecond))).
		WithMetadata(map[string]any{
			"available": counts[core.StatusAvailable],
			"busy":      counts[core.StatusBusy],
			"unknown":   counts[core.StatusUnknown],
			"elapsed":   elapsed.String(),
		}))

	return results
}

func countByStatus(results []core.AvailabilityResult) map[core.AvailabilityStatus]int {
	counts := make(map[core.AvailabilityStatus]int, 3)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

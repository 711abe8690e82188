package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/ledger"
	"github.com/hupe1980/schedmesh/logging"
)

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	Ledger core.Ledger
	Logger logging.Logger
}

// Worker performs a single attendee availability check. It is stateless and
// safe for concurrent use by multiple coordinator goroutines.
type Worker struct {
	provider core.CalendarProvider
	ledger   core.Ledger
	logger   logging.Logger
}

// NewWorker creates a worker bound to a calendar provider.
func NewWorker(provider core.CalendarProvider, optFns ...func(o *WorkerOptions)) *Worker {
	opts := WorkerOptions{Ledger: ledger.Discard(), Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Worker{provider: provider, ledger: opts.Ledger, logger: opts.Logger}
}

// Check queries busy intervals for one attendee and classifies the window.
// It never returns past its own boundary with a failure: malformed requests,
// provider errors and timeouts all become an "unknown" result carrying the
// cause, so one bad worker cannot abort an aggregation.
func (w *Worker) Check(ctx context.Context, req core.CheckRequest) core.AvailabilityResult {
	start := time.Now()

	result := w.check(ctx, req)
	result.Elapsed = time.Since(start)

	w.logger.Debug("availability check completed",
		"attendee_id", req.AttendeeID, "status", string(result.Status), "duration", result.Elapsed)

	w.ledger.Record(core.NewThought(req.CorrelationID, core.ThoughtValidation, w.describe(result)).
		WithMetadata(map[string]any{
			"attendee_id": req.AttendeeID,
			"status":      string(result.Status),
			"conflicts":   len(result.Conflicts),
		}))

	return result
}

func (w *Worker) check(ctx context.Context, req core.CheckRequest) core.AvailabilityResult {
	if err := req.Validate(); err != nil {
		return core.AvailabilityResult{AttendeeID: req.AttendeeID, Status: core.StatusUnknown, Err: err}
	}

	intervals, err := w.provider.BusyIntervals(ctx, req.AttendeeID, req.Window)
	if err != nil {
		return core.AvailabilityResult{
			AttendeeID: req.AttendeeID,
			Status:     core.StatusUnknown,
			Err:        fmt.Errorf("calendar provider failed for %s: %w", req.AttendeeID, err),
		}
	}

	var conflicts []core.Interval
	for _, iv := range intervals {
		if iv.Overlaps(req.Window) {
			conflicts = append(conflicts, iv)
		}
	}

	if len(conflicts) > 0 {
		return core.AvailabilityResult{AttendeeID: req.AttendeeID, Status: core.StatusBusy, Conflicts: conflicts}
	}
	return core.AvailabilityResult{AttendeeID: req.AttendeeID, Status: core.StatusAvailable}
}

func (w *Worker) describe(r core.AvailabilityResult) string {
	switch r.Status {
	case core.StatusBusy:
		return fmt.Sprintf("%s is busy: %d conflicting event(s) in window", r.AttendeeID, len(r.Conflicts))
	case core.StatusUnknown:
		return fmt.Sprintf("availability of %s is unknown: %v", r.AttendeeID, r.Err)
	default:
		return fmt.Sprintf("%s is available", r.AttendeeID)
	}
}

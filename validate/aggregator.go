package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/schedmesh/availability"
	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/datastore"
	"github.com/hupe1980/schedmesh/ledger"
	"github.com/hupe1980/schedmesh/logging"
	"github.com/hupe1980/schedmesh/parallel"
	"github.com/hupe1980/schedmesh/policy"
)

// Options configures an Aggregator.
type Options struct {
	// WorkerTimeout bounds each availability worker and the room
	// calendar lookup.
	WorkerTimeout time.Duration
	// MaxParallel bounds the availability worker pool.
	MaxParallel int
	// ClarifyOnWarnings makes a warning-only outcome resolve to
	// needs_clarification instead of valid.
	ClarifyOnWarnings bool
	Ledger            core.Ledger
	Logger            logging.Logger
}

// Aggregator runs all validation dimensions concurrently and owns the
// merged ValidationResult. Callers receive an immutable value.
type Aggregator struct {
	provider          core.CalendarProvider
	store             core.DataStore
	coordinator       *availability.Coordinator
	engine            *policy.Engine
	workerTimeout     time.Duration
	clarifyOnWarnings bool
	ledger            core.Ledger
	logger            logging.Logger
}

// New creates an aggregator over a calendar provider and a data store.
func New(provider core.CalendarProvider, store core.DataStore, optFns ...func(o *Options)) *Aggregator {
	opts := Options{
		WorkerTimeout: availability.DefaultWorkerTimeout,
		MaxParallel:   availability.DefaultMaxParallel,
		Ledger:        ledger.Discard(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	coordinator := availability.NewCoordinator(provider, func(o *availability.CoordinatorOptions) {
		o.WorkerTimeout = opts.WorkerTimeout
		o.MaxParallel = opts.MaxParallel
		o.Ledger = opts.Ledger
		o.Logger = opts.Logger
	})

	engine := policy.NewEngine(func(o *policy.Options) {
		o.Teams = func(team string) []string {
			users, err := store.LoadUsers()
			if err != nil {
				return nil
			}
			return datastore.TeamMembers(users, team)
		}
		o.Ledger = opts.Ledger
		o.Logger = opts.Logger
	})

	return &Aggregator{
		provider:          provider,
		store:             store,
		coordinator:       coordinator,
		engine:            engine,
		workerTimeout:     opts.WorkerTimeout,
		clarifyOnWarnings: opts.ClarifyOnWarnings,
		ledger:            opts.Ledger,
		logger:            opts.Logger,
	}
}

// CheckAll exposes the availability coordinator as an independently callable
// sub-capability.
func (a *Aggregator) CheckAll(ctx context.Context, reqs []core.CheckRequest) []core.AvailabilityResult {
	return a.coordinator.CheckAll(ctx, reqs)
}

// Validate checks a proposed event across every dimension and merges the
// findings. The returned error is non-nil only for malformed input
// (*core.InputError); all downstream failures degrade into issues.
func (a *Aggregator) Validate(ctx context.Context, event core.ProposedEvent) (core.ValidationResult, error) {
	if err := event.Validate(); err != nil {
		return core.ValidationResult{}, err
	}

	correlationID := core.NewID()
	start := time.Now()

	tasks := a.dimensionTasks(event, correlationID)

	a.ledger.Record(core.NewThought(correlationID, core.ThoughtPlanning,
		fmt.Sprintf("validating %q across %d dimensions", event.Title, len(tasks))).
		WithMetadata(map[string]any{"attendees": len(event.Attendees), "location": event.Location}))

	outcomes := parallel.Run(ctx, tasks,
		func(ctx context.Context, t dimensionTask) dimensionOutcome {
			return t.run(ctx)
		},
		func(t dimensionTask, cause error) dimensionOutcome {
			return dimensionOutcome{name: t.name, err: cause}
		})

	var all []core.ValidationIssue
	var attendeeResults []core.AvailabilityResult
	for _, out := range outcomes {
		if out.err != nil {
			a.logger.Warn("validation dimension failed", "dimension", string(out.name), "error", out.err.Error())
			a.ledger.Record(core.NewThought(correlationID, core.ThoughtConcern,
				fmt.Sprintf("%s validation failed and was converted to a blocking issue: %v", out.name, out.err)))
			all = append(all, core.ValidationIssue{
				Dimension: out.name,
				Severity:  core.SeverityBlocking,
				Message:   fmt.Sprintf("%s validation failed: %v", out.name, out.err),
				Source:    string(out.name),
			})
			continue
		}
		all = append(all, out.issues...)
		if out.name == core.DimensionAvailability {
			attendeeResults = out.availability
		}
	}

	result := core.ValidationResult{
		Verdict:       core.ComputeVerdict(all, a.clarifyOnWarnings),
		Issues:        core.OrderIssues(all),
		Elapsed:       time.Since(start),
		CorrelationID: correlationID,
	}

	a.ledger.Record(core.NewThought(correlationID, core.ThoughtDecision,
		fmt.Sprintf("verdict %s with %d issue(s)", result.Verdict, len(result.Issues))).
		WithMetadata(map[string]any{"verdict": string(result.Verdict), "issues": len(result.Issues)}))

	if result.Verdict == core.VerdictInvalid {
		a.recommend(correlationID, event, attendeeResults)
	}

	a.logger.Info("validation completed",
		"correlation_id", correlationID,
		"verdict", string(result.Verdict),
		"issues", len(result.Issues),
		"duration", result.Elapsed)

	return result, nil
}

// recommend emits a best-effort next-action suggestion for invalid verdicts.
// It derives alternatives only from data already collected and never affects
// the verdict.
func (a *Aggregator) recommend(correlationID string, event core.ProposedEvent, results []core.AvailabilityResult) {
	free := 0
	var clearedAt time.Time
	for _, r := range results {
		if r.Status == core.StatusAvailable {
			free++
		}
		for _, c := range r.Conflicts {
			if c.End.After(clearedAt) {
				clearedAt = c.End
			}
		}
	}

	msg := "review the blocking issues and adjust the request"
	md := map[string]any{"available_attendees": free}
	if clearedAt.After(event.Window.Start) {
		msg = fmt.Sprintf("propose an alternate start after %s when current conflicts have cleared; %d of %d attendees are already free",
			clearedAt.Format(time.RFC3339), free, len(results))
		md["conflicts_clear_at"] = clearedAt.Format(time.RFC3339)
	}

	a.ledger.Record(core.NewThought(correlationID, core.ThoughtRecommendation, msg).WithMetadata(md))
}

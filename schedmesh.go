// Package schedmesh provides a high-level façade over the validation
// aggregator and service abstractions (sessions, memory, reasoning ledger &
// logging) enabling rapid construction of scheduling assistants. Most
// applications interact with this package by:
//  1. Creating a SchedMesh via New() (optionally overriding default in-memory services)
//  2. Validating proposed events (Validate) or probing availability directly (CheckAll)
//  3. Inspecting the recorded reasoning chain (ChainFor) and persisting sessions
//
// The façade delegates validation to validate.Aggregator while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a real calendar
// provider, a durable session store and a structured logger.
package schedmesh

import (
	"context"
	"time"

	"github.com/hupe1980/schedmesh/calendar"
	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/datastore"
	"github.com/hupe1980/schedmesh/ledger"
	"github.com/hupe1980/schedmesh/logging"
	"github.com/hupe1980/schedmesh/session"
	"github.com/hupe1980/schedmesh/validate"
)

// Options configures the SchedMesh instance.
type Options struct {
	// Provider answers busy-interval queries for attendee and facility
	// calendars. Defaults to an empty static provider.
	Provider core.CalendarProvider

	// DataStore resolves users, facilities and policy rules. Defaults to
	// a static store carrying only the built-in policy rules.
	DataStore core.DataStore

	// Stores (default to in-memory implementations if not provided)
	SessionStore core.SessionStore
	MemoryStore  core.MemoryStore

	// Ledger records the reasoning chain per validation run. Defaults to
	// an in-memory ledger so ChainFor works out of the box.
	Ledger core.Ledger

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// WorkerTimeout bounds each availability worker and room lookup.
	WorkerTimeout time.Duration
	// MaxParallel bounds the availability worker pool.
	MaxParallel int
	// ClarifyOnWarnings makes a warning-only verdict resolve to
	// needs_clarification instead of valid.
	ClarifyOnWarnings bool

	// AutoMemory persists a session's state blob as a memory record on
	// every SaveSession, best effort.
	AutoMemory bool
}

// SchedMesh is the high-level façade aggregating the validation pipeline and
// the session/memory services.
type SchedMesh struct {
	opts       Options
	aggregator *validate.Aggregator
}

// New creates a new SchedMesh instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *SchedMesh {
	store := session.NewInMemoryStore()

	opts := Options{
		Provider:      calendar.NewStaticProvider(),
		DataStore:     &datastore.StaticStore{},
		SessionStore:  store,
		MemoryStore:   store,
		Ledger:        ledger.NewInMemoryLedger(),
		Logger:        logging.NoOpLogger{},
		WorkerTimeout: 0,
		MaxParallel:   0,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	aggregator := validate.New(opts.Provider, opts.DataStore, func(o *validate.Options) {
		if opts.WorkerTimeout > 0 {
			o.WorkerTimeout = opts.WorkerTimeout
		}
		if opts.MaxParallel > 0 {
			o.MaxParallel = opts.MaxParallel
		}
		o.ClarifyOnWarnings = opts.ClarifyOnWarnings
		o.Ledger = opts.Ledger
		o.Logger = opts.Logger
	})

	return &SchedMesh{opts: opts, aggregator: aggregator}
}

// Validate checks a proposed event across all dimensions and returns the
// merged result. The only caller-visible error is malformed input
// (*core.InputError).
func (m *SchedMesh) Validate(ctx context.Context, event core.ProposedEvent) (core.ValidationResult, error) {
	return m.aggregator.Validate(ctx, event)
}

// CheckAll probes attendee availability without running the full validation
// pipeline.
func (m *SchedMesh) CheckAll(ctx context.Context, reqs []core.CheckRequest) []core.AvailabilityResult {
	return m.aggregator.CheckAll(ctx, reqs)
}

// ChainFor returns the recorded reasoning chain for a validation run,
// oldest thought first.
func (m *SchedMesh) ChainFor(correlationID string) core.ReasoningChain {
	return m.opts.Ledger.ChainFor(correlationID)
}

// GetOrCreateSession resumes a session or lazily creates an active one.
func (m *SchedMesh) GetOrCreateSession(id string) (*core.Session, error) {
	return m.opts.SessionStore.GetOrCreate(id)
}

// SaveSession persists the session snapshot. With AutoMemory enabled the
// state blob is additionally recorded as a memory entry; memory failures
// never fail the save.
func (m *SchedMesh) SaveSession(sess *core.Session) error {
	if err := m.opts.SessionStore.Save(sess); err != nil {
		return err
	}
	if m.opts.AutoMemory && len(sess.State) > 0 {
		if _, err := m.opts.MemoryStore.Remember(sess.ID, string(sess.State)); err != nil {
			m.opts.Logger.Warn("auto-memory record failed", "session_id", sess.ID, "error", err.Error())
		}
	}
	return nil
}

// CloseSession flips the session status to closed; it remains queryable.
func (m *SchedMesh) CloseSession(id string) error {
	return m.opts.SessionStore.Close(id)
}

// ActiveSessions lists sessions currently offered to new turns.
func (m *SchedMesh) ActiveSessions() ([]*core.Session, error) {
	return m.opts.SessionStore.Active()
}

// Remember stores a long-term memory record for the session.
func (m *SchedMesh) Remember(sessionID, content string) (*core.MemoryRecord, error) {
	return m.opts.MemoryStore.Remember(sessionID, content)
}

// Search retrieves memory records by textual relevance across all sessions.
func (m *SchedMesh) Search(query string, limit int) ([]core.MemoryRecord, error) {
	return m.opts.MemoryStore.Search(query, limit)
}

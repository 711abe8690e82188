package ledger

import (
	"encoding/json"
	"sync"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/logging"
)

// Options configures an InMemoryLedger.
type Options struct {
	// Logger receives internal diagnostics (listener failures). Defaults
	// to NoOpLogger.
	Logger logging.Logger
}

// InMemoryLedger is a process-local core.Ledger storing chains in a map
// keyed by correlation id. It is safe for concurrent access; ChainFor
// returns a defensive copy so callers can never mutate recorded thoughts.
type InMemoryLedger struct {
	mu        sync.RWMutex
	chains    map[string]core.ReasoningChain
	listeners []func(core.Thought)
	logger    logging.Logger
}

// NewInMemoryLedger constructs an empty in-memory ledger.
func NewInMemoryLedger(optFns ...func(o *Options)) *InMemoryLedger {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemoryLedger{chains: make(map[string]core.ReasoningChain), logger: opts.Logger}
}

// Record appends a thought to its correlation chain and notifies listeners.
// It never fails: a thought without an id or timestamp is completed here, and
// a panicking listener is contained and logged.
func (l *InMemoryLedger) Record(t core.Thought) {
	if t.ID == "" {
		filled := core.NewThought(t.CorrelationID, t.Type, t.Content)
		filled.Metadata = t.Metadata
		t = filled
	}

	l.mu.Lock()
	l.chains[t.CorrelationID] = append(l.chains[t.CorrelationID], t)
	listeners := make([]func(core.Thought), len(l.listeners))
	copy(listeners, l.listeners)
	l.mu.Unlock()

	for _, listener := range listeners {
		l.notify(listener, t)
	}
}

func (l *InMemoryLedger) notify(listener func(core.Thought), t core.Thought) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("thought listener panicked", "panic", r)
		}
	}()
	listener(t)
}

// ChainFor returns the ordered chain recorded for a correlation id. The
// returned slice is a copy; an unknown id yields an empty chain.
func (l *InMemoryLedger) ChainFor(correlationID string) core.ReasoningChain {
	l.mu.RLock()
	defer l.mu.RUnlock()

	chain := l.chains[correlationID]
	out := make(core.ReasoningChain, len(chain))
	copy(out, chain)
	return out
}

// Subscribe registers a listener invoked for every recorded thought.
// Listeners observe thoughts in record order per correlation id.
func (l *InMemoryLedger) Subscribe(listener func(core.Thought)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, listener)
}

// Summary aggregates counts and time bounds for a chain.
func (l *InMemoryLedger) Summary(correlationID string) core.ChainSummary {
	return l.ChainFor(correlationID).Summary()
}

// ExportJSON renders a chain as JSON for external inspection.
func (l *InMemoryLedger) ExportJSON(correlationID string, pretty bool) ([]byte, error) {
	export := l.ChainFor(correlationID).Export()
	if pretty {
		return json.MarshalIndent(export, "", "  ")
	}
	return json.Marshal(export)
}

// Discard returns a ledger that drops every thought. Useful when observable
// reasoning is disabled.
func Discard() core.Ledger { return discardLedger{} }

type discardLedger struct{}

func (discardLedger) Record(core.Thought) {}

func (discardLedger) ChainFor(string) core.ReasoningChain { return nil }

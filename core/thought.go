package core

import "time"

// ThoughtType categorizes a reasoning step.
type ThoughtType string

const (
	// ThoughtAnalysis captures understanding of the request or of results.
	ThoughtAnalysis ThoughtType = "analysis"
	// ThoughtPlanning captures deciding what to do next.
	ThoughtPlanning ThoughtType = "planning"
	// ThoughtDecision captures a specific choice being made.
	ThoughtDecision ThoughtType = "decision"
	// ThoughtConcern flags a potential issue.
	ThoughtConcern ThoughtType = "concern"
	// ThoughtValidation captures a correctness check.
	ThoughtValidation ThoughtType = "validation"
	// ThoughtPattern captures a pattern recognized from history.
	ThoughtPattern ThoughtType = "pattern"
	// ThoughtSuggestion offers a non-final recommendation.
	ThoughtSuggestion ThoughtType = "suggestion"
	// ThoughtWarning flags an important concern.
	ThoughtWarning ThoughtType = "warning"
	// ThoughtRecommendation captures a final recommendation.
	ThoughtRecommendation ThoughtType = "recommendation"
)

// Thought is a single reasoning step. Thoughts are append-only: once recorded
// they are never mutated or removed.
type Thought struct {
	ID            string         `json:"id"`
	CorrelationID string         `json:"correlation_id"`
	Type          ThoughtType    `json:"type"`
	Content       string         `json:"content"`
	Timestamp     time.Time      `json:"timestamp"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// NewThought creates a timestamped thought bound to a correlation id.
func NewThought(correlationID string, typ ThoughtType, content string) Thought {
	return Thought{
		ID:            NewID(),
		CorrelationID: correlationID,
		Type:          typ,
		Content:       content,
		Timestamp:     time.Now().UTC(),
	}
}

// WithMetadata returns a copy of the thought with the given metadata attached.
func (t Thought) WithMetadata(md map[string]any) Thought {
	t.Metadata = md
	return t
}

// ReasoningChain is the ordered sequence of thoughts sharing a correlation
// id. It is a read view over the ledger, not a separately owned entity.
type ReasoningChain []Thought

// Filter returns the thoughts of the given type, preserving order.
func (c ReasoningChain) Filter(typ ThoughtType) ReasoningChain {
	var out ReasoningChain
	for _, t := range c {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

// Export converts the chain to a structured key/value form for external
// inspection.
func (c ReasoningChain) Export() []map[string]any {
	out := make([]map[string]any, 0, len(c))
	for _, t := range c {
		entry := map[string]any{
			"content":   t.Content,
			"type":      string(t.Type),
			"timestamp": t.Timestamp.Format(time.RFC3339Nano),
		}
		if len(t.Metadata) > 0 {
			entry["metadata"] = t.Metadata
		}
		out = append(out, entry)
	}
	return out
}

// ChainSummary aggregates counts and time bounds of a reasoning chain.
type ChainSummary struct {
	Total  int                 `json:"total_thoughts"`
	ByType map[ThoughtType]int `json:"thoughts_by_type"`
	First  time.Time           `json:"first_thought,omitzero"`
	Last   time.Time           `json:"last_thought,omitzero"`
}

// Summary computes counts by type plus first/last timestamps.
func (c ReasoningChain) Summary() ChainSummary {
	s := ChainSummary{Total: len(c), ByType: map[ThoughtType]int{}}
	for _, t := range c {
		s.ByType[t.Type]++
	}
	if len(c) > 0 {
		s.First = c[0].Timestamp
		s.Last = c[len(c)-1].Timestamp
	}
	return s
}

// Ledger records reasoning steps and exposes them for inspection. Record is
// fire-and-forget: it never blocks the caller's primary flow and never fails;
// persistence problems are handled internally by implementations.
type Ledger interface {
	Record(t Thought)
	ChainFor(correlationID string) ReasoningChain
}

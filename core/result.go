package core

import (
	"sort"
	"time"
)

// AvailabilityStatus classifies the outcome of a single attendee check.
type AvailabilityStatus string

const (
	// StatusAvailable means no busy interval overlaps the requested window.
	StatusAvailable AvailabilityStatus = "available"
	// StatusBusy means at least one busy interval overlaps the window.
	StatusBusy AvailabilityStatus = "busy"
	// StatusUnknown means the provider call failed or timed out.
	StatusUnknown AvailabilityStatus = "unknown"
)

// AvailabilityResult is the verdict for one CheckRequest. Exactly one result
// is produced per dispatched request, keyed by attendee id.
type AvailabilityResult struct {
	AttendeeID string             `json:"attendee_id"`
	Status     AvailabilityStatus `json:"status"`
	Conflicts  []Interval         `json:"conflicts,omitempty"`
	Elapsed    time.Duration      `json:"elapsed"`
	Err        error              `json:"-"`
}

// Dimension is one independent axis of validation.
type Dimension string

const (
	// DimensionAvailability covers per-attendee calendar conflicts.
	DimensionAvailability Dimension = "availability"
	// DimensionRoom covers facility existence, capacity and booking state.
	DimensionRoom Dimension = "room"
	// DimensionTimezone covers attendee-local time fitness.
	DimensionTimezone Dimension = "timezone"
	// DimensionPolicy covers organizational policy rules.
	DimensionPolicy Dimension = "policy"
)

// Dimensions returns all validation dimensions in merge-priority order.
// Issue ordering in a ValidationResult follows this sequence.
func Dimensions() []Dimension {
	return []Dimension{DimensionAvailability, DimensionRoom, DimensionTimezone, DimensionPolicy}
}

// Severity classifies how strongly an issue affects the verdict.
type Severity string

const (
	// SeverityBlocking issues force an invalid verdict.
	SeverityBlocking Severity = "blocking"
	// SeverityWarning issues inform the caller without blocking.
	SeverityWarning Severity = "warning"
)

// ValidationIssue is an immutable finding from one validation dimension.
// Source identifies what triggered the issue (attendee id, facility name or
// policy rule id).
type ValidationIssue struct {
	Dimension Dimension `json:"dimension"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
}

// Verdict is the terminal classification of a validation pass.
type Verdict string

const (
	// VerdictValid means no issues were found.
	VerdictValid Verdict = "valid"
	// VerdictInvalid means at least one blocking issue exists.
	VerdictInvalid Verdict = "invalid"
	// VerdictNeedsClarification means only warnings exist and the caller
	// requested confirmation for warning-only outcomes.
	VerdictNeedsClarification Verdict = "needs_clarification"
)

// ValidationResult is the merged outcome of all validation dimensions.
// Issues are ordered deterministically: grouped by dimension in the order of
// Dimensions(), blocking before warning within a dimension, insertion order
// within severity. Callers receive an immutable view.
type ValidationResult struct {
	Verdict       Verdict           `json:"verdict"`
	Issues        []ValidationIssue `json:"issues"`
	Elapsed       time.Duration     `json:"elapsed"`
	CorrelationID string            `json:"correlation_id"`
}

// HasBlocking reports whether any issue is blocking.
func (r ValidationResult) HasBlocking() bool { return countBySeverity(r.Issues, SeverityBlocking) > 0 }

// OrderIssues returns a copy of issues in the canonical deterministic order.
// The sort is stable so insertion order is preserved within each
// dimension/severity group.
func OrderIssues(issues []ValidationIssue) []ValidationIssue {
	ordered := make([]ValidationIssue, len(issues))
	copy(ordered, issues)
	sort.SliceStable(ordered, func(i, j int) bool {
		return issueRank(ordered[i]) < issueRank(ordered[j])
	})
	return ordered
}

func issueRank(issue ValidationIssue) int {
	rank := len(Dimensions()) * 2 // unknown dimensions sort last
	for i, d := range Dimensions() {
		if issue.Dimension == d {
			rank = i * 2
			break
		}
	}
	if issue.Severity != SeverityBlocking {
		rank++
	}
	return rank
}

// ComputeVerdict applies the verdict rule: invalid iff a blocking issue
// exists, needs_clarification iff only warnings exist and the caller opted
// into confirmation, valid otherwise.
func ComputeVerdict(issues []ValidationIssue, clarifyOnWarnings bool) Verdict {
	if countBySeverity(issues, SeverityBlocking) > 0 {
		return VerdictInvalid
	}
	if len(issues) > 0 && clarifyOnWarnings {
		return VerdictNeedsClarification
	}
	return VerdictValid
}

func countBySeverity(issues []ValidationIssue, s Severity) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

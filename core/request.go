package core

import (
	"fmt"
	"strings"
	"time"
)

// TimeWindow is a half-open interval [Start, End) in which an event is
// proposed to take place. Timezone carries the IANA zone name the window was
// expressed in; Start and End themselves are absolute instants.
type TimeWindow struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Timezone string    `json:"timezone,omitempty"`
}

// Validate reports whether the window is well-formed (non-zero bounds, start
// strictly before end).
func (w TimeWindow) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("time window bounds must be set")
	}
	if !w.Start.Before(w.End) {
		return fmt.Errorf("time window start %s must be before end %s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Duration returns the length of the window.
func (w TimeWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

// Interval is a busy period on a calendar, optionally annotated with the
// summary of the occupying event.
type Interval struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Summary string    `json:"summary,omitempty"`
}

// Overlaps reports whether the interval intersects the window.
func (i Interval) Overlaps(w TimeWindow) bool {
	return i.Start.Before(w.End) && w.Start.Before(i.End)
}

// CheckRequest asks for the availability of a single attendee within a time
// window. Immutable once dispatched.
type CheckRequest struct {
	AttendeeID    string     `json:"attendee_id"`
	Window        TimeWindow `json:"window"`
	CorrelationID string     `json:"correlation_id"`
}

// Validate rejects requests with a missing attendee or malformed window.
func (r CheckRequest) Validate() error {
	if strings.TrimSpace(r.AttendeeID) == "" {
		return fmt.Errorf("attendee id must not be empty")
	}
	return r.Window.Validate()
}

// ProposedEvent is the typed meeting request entering the validation engine.
// Natural-language parsing has already happened upstream; fields are concrete.
type ProposedEvent struct {
	Title      string     `json:"title"`
	Window     TimeWindow `json:"window"`
	Attendees  []string   `json:"attendees"`
	Location   string     `json:"location,omitempty"`
	CalendarID string     `json:"calendar_id,omitempty"`
}

// Validate performs the synchronous input check performed before any dispatch.
// It returns an *InputError describing every problem found, or nil.
func (e ProposedEvent) Validate() error {
	var problems []string
	if len(e.Attendees) == 0 {
		problems = append(problems, "at least one attendee is required")
	}
	for i, a := range e.Attendees {
		if strings.TrimSpace(a) == "" {
			problems = append(problems, fmt.Sprintf("attendee %d is empty", i))
		}
	}
	if err := e.Window.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return &InputError{Problems: problems}
	}
	return nil
}

// InputError is the typed validation failure for malformed requests. It is
// the only caller-visible failure of the validation engine; everything past
// input checking degrades into issues instead of errors.
type InputError struct {
	Problems []string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return "invalid event: " + strings.Join(e.Problems, "; ")
}

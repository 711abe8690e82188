package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/datastore"
)

// dimensionOutcome carries one dimension's findings back to the merge step.
// A non-nil err marks an unrecoverable dimension failure (distinct from
// reported issues) which the aggregator converts into a blocking issue.
type dimensionOutcome struct {
	name         core.Dimension
	issues       []core.ValidationIssue
	availability []core.AvailabilityResult
	err          error
}

type dimensionTask struct {
	name core.Dimension
	run  func(ctx context.Context) dimensionOutcome
}

// dimensionTasks assembles the concurrent dimension runs in merge-priority
// order. Every dimension has the same shape: event in, issues out.
func (a *Aggregator) dimensionTasks(event core.ProposedEvent, correlationID string) []dimensionTask {
	return []dimensionTask{
		{core.DimensionAvailability, func(ctx context.Context) dimensionOutcome {
			return a.availabilityDimension(ctx, event, correlationID)
		}},
		{core.DimensionRoom, func(ctx context.Context) dimensionOutcome {
			return a.roomDimension(ctx, event)
		}},
		{core.DimensionTimezone, func(ctx context.Context) dimensionOutcome {
			return a.timezoneDimension(ctx, event)
		}},
		{core.DimensionPolicy, func(ctx context.Context) dimensionOutcome {
			return a.policyDimension(ctx, event)
		}},
	}
}

func (a *Aggregator) availabilityDimension(ctx context.Context, event core.ProposedEvent, correlationID string) dimensionOutcome {
	reqs := make([]core.CheckRequest, len(event.Attendees))
	for i, attendee := range event.Attendees {
		reqs[i] = core.CheckRequest{AttendeeID: attendee, Window: event.Window, CorrelationID: correlationID}
	}

	results := a.coordinator.CheckAll(ctx, reqs)

	var issues []core.ValidationIssue
	for _, r := range results {
		switch r.Status {
		case core.StatusBusy:
			issues = append(issues, core.ValidationIssue{
				Dimension: core.DimensionAvailability,
				Severity:  core.SeverityBlocking,
				Message:   fmt.Sprintf("%s has %d conflicting event(s) in the requested window", r.AttendeeID, len(r.Conflicts)),
				Source:    r.AttendeeID,
			})
		case core.StatusUnknown:
			issues = append(issues, core.ValidationIssue{
				Dimension: core.DimensionAvailability,
				Severity:  core.SeverityWarning,
				Message:   fmt.Sprintf("availability of %s could not be determined: %v", r.AttendeeID, r.Err),
				Source:    r.AttendeeID,
			})
		}
	}

	return dimensionOutcome{name: core.DimensionAvailability, issues: issues, availability: results}
}

func (a *Aggregator) roomDimension(ctx context.Context, event core.ProposedEvent) dimensionOutcome {
	out := dimensionOutcome{name: core.DimensionRoom}
	if event.Location == "" {
		return out
	}

	facilities, err := a.store.LoadFacilities()
	if err != nil {
		out.err = fmt.Errorf("load facilities: %w", err)
		return out
	}

	facility := datastore.FacilityByName(facilities, event.Location)
	if facility == nil {
		out.issues = append(out.issues, core.ValidationIssue{
			Dimension: core.DimensionRoom,
			Severity:  core.SeverityBlocking,
			Message:   fmt.Sprintf("facility %q is not in the directory", event.Location),
			Source:    event.Location,
		})
		return out
	}

	if facility.Capacity < len(event.Attendees) {
		out.issues = append(out.issues, core.ValidationIssue{
			Dimension: core.DimensionRoom,
			Severity:  core.SeverityBlocking,
			Message:   fmt.Sprintf("facility %q seats %d but %d attendees are invited", facility.Name, facility.Capacity, len(event.Attendees)),
			Source:    facility.Name,
		})
	}

	calendarID := facility.CalendarID
	if calendarID == "" {
		calendarID = facility.Name
	}

	lookupCtx, cancel := context.WithTimeout(ctx, a.workerTimeout)
	defer cancel()

	busy, err := a.provider.BusyIntervals(lookupCtx, calendarID, event.Window)
	if err != nil {
		// A room that cannot be confirmed is not bookable.
		out.issues = append(out.issues, core.ValidationIssue{
			Dimension: core.DimensionRoom,
			Severity:  core.SeverityBlocking,
			Message:   fmt.Sprintf("availability of facility %q could not be confirmed: %v", facility.Name, err),
			Source:    facility.Name,
		})
		return out
	}

	for _, iv := range busy {
		if iv.Overlaps(event.Window) {
			summary := iv.Summary
			if summary == "" {
				summary = "another booking"
			}
			out.issues = append(out.issues, core.ValidationIssue{
				Dimension: core.DimensionRoom,
				Severity:  core.SeverityBlocking,
				Message:   fmt.Sprintf("facility %q is already booked in the requested window (%s)", facility.Name, summary),
				Source:    facility.Name,
			})
			break
		}
	}

	return out
}

func (a *Aggregator) timezoneDimension(_ context.Context, event core.ProposedEvent) dimensionOutcome {
	out := dimensionOutcome{name: core.DimensionTimezone}

	users, err := a.store.LoadUsers()
	if err != nil {
		out.err = fmt.Errorf("load users: %w", err)
		return out
	}

	zones := make(map[string]string, len(users))
	for _, u := range users {
		if u.Timezone != "" {
			zones[u.Email] = u.Timezone
		}
	}

	for _, attendee := range event.Attendees {
		zone, ok := zones[attendee]
		if !ok {
			continue
		}
		loc, err := time.LoadLocation(zone)
		if err != nil {
			a.logger.Debug("skipping attendee with unknown timezone", "attendee_id", attendee, "timezone", zone)
			continue
		}

		local := event.Window.Start.In(loc)
		if h := local.Hour(); h < 7 || h >= 20 {
			out.issues = append(out.issues, core.ValidationIssue{
				Dimension: core.DimensionTimezone,
				Severity:  core.SeverityWarning,
				Message:   fmt.Sprintf("meeting starts at %s local time (%s) for %s", local.Format("15:04"), zone, attendee),
				Source:    attendee,
			})
		}
	}

	return out
}

func (a *Aggregator) policyDimension(ctx context.Context, event core.ProposedEvent) dimensionOutcome {
	out := dimensionOutcome{name: core.DimensionPolicy}

	rules, err := a.store.LoadPolicyRules("")
	if err != nil {
		out.err = fmt.Errorf("load policy rules: %w", err)
		return out
	}

	out.issues = a.engine.Evaluate(ctx, event, rules)
	return out
}

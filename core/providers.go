package core

import "context"

// CalendarProvider fetches busy intervals for an attendee or facility
// calendar. Implementations may fail with transport errors; callers convert
// those into degraded results rather than propagating them.
type CalendarProvider interface {
	BusyIntervals(ctx context.Context, calendarID string, window TimeWindow) ([]Interval, error)
}

// User is a directory entry consumed by the policy and timezone dimensions.
type User struct {
	Email    string   `json:"email"`
	Name     string   `json:"name,omitempty"`
	Teams    []string `json:"teams,omitempty"`
	Timezone string   `json:"timezone,omitempty"`
}

// Facility is a bookable room or venue.
type Facility struct {
	Name       string   `json:"name"`
	CalendarID string   `json:"calendar_id,omitempty"`
	Capacity   int      `json:"capacity"`
	Amenities  []string `json:"amenities,omitempty"`
}

// DataStore loads read-only reference data. Implementations load fresh per
// call; the core implies no caching contract.
type DataStore interface {
	// LoadPolicyRules returns the rules for the given scope; the empty
	// scope loads every rule.
	LoadPolicyRules(scope RuleScope) ([]PolicyRule, error)
	LoadUsers() ([]User, error)
	LoadFacilities() ([]Facility, error)
}

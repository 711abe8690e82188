package datastore

import (
	"fmt"
	"time"

	"github.com/hupe1980/schedmesh/core"
)

// Rule kinds understood by BuildRule.
const (
	KindMaxAttendees  = "max_attendees"
	KindMaxDuration   = "max_duration"
	KindBusinessHours = "business_hours"
	KindWeekend       = "weekend"
	KindQuietHours    = "quiet_hours"
)

// RuleConfig is the declarative JSON shape of one policy rule.
type RuleConfig struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Scope     string  `json:"scope,omitempty"`
	Target    string  `json:"target,omitempty"`
	Severity  string  `json:"severity"`
	Message   string  `json:"message,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	StartHour int     `json:"start_hour,omitempty"`
	EndHour   int     `json:"end_hour,omitempty"`
}

// DefaultRuleConfigs returns the built-in organizational rule set used when
// no policies file is present: meetings of 20+ attendees are blocked pending
// executive approval; long, off-hours, weekend and very early/late meetings
// warn.
func DefaultRuleConfigs() []RuleConfig {
	return []RuleConfig{
		{ID: "executive-approval", Kind: KindMaxAttendees, Severity: string(core.SeverityBlocking), Threshold: 20},
		{ID: "duration-guideline", Kind: KindMaxDuration, Severity: string(core.SeverityWarning), Threshold: 4},
		{ID: "business-hours", Kind: KindBusinessHours, Severity: string(core.SeverityWarning), StartHour: 9, EndHour: 17},
		{ID: "weekend-meeting", Kind: KindWeekend, Severity: string(core.SeverityWarning)},
		{ID: "quiet-hours", Kind: KindQuietHours, Severity: string(core.SeverityWarning), StartHour: 7, EndHour: 20},
	}
}

// DefaultRules compiles the built-in rule set.
func DefaultRules() []core.PolicyRule {
	rules, err := BuildRules(DefaultRuleConfigs())
	if err != nil {
		// Built-in configs are compiled in tests; a failure here is a
		// programming error.
		panic(err)
	}
	return rules
}

// BuildRules compiles a slice of configs, failing on the first unknown kind.
func BuildRules(cfgs []RuleConfig) ([]core.PolicyRule, error) {
	rules := make([]core.PolicyRule, 0, len(cfgs))
	for _, cfg := range cfgs {
		rule, err := BuildRule(cfg)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// BuildRule compiles one declarative config into an executable PolicyRule.
func BuildRule(cfg RuleConfig) (core.PolicyRule, error) {
	rule := core.PolicyRule{
		ID:       cfg.ID,
		Scope:    core.RuleScope(cfg.Scope),
		Target:   cfg.Target,
		Severity: core.Severity(cfg.Severity),
		Message:  cfg.Message,
	}
	if rule.Scope == "" {
		rule.Scope = core.ScopeAll
	}
	if rule.Severity == "" {
		rule.Severity = core.SeverityWarning
	}

	switch cfg.Kind {
	case KindMaxAttendees:
		max := intThreshold(cfg.Threshold, 20)
		rule.Check = func(e core.ProposedEvent) (bool, string) {
			if len(e.Attendees) < max {
				return true, ""
			}
			return false, fmt.Sprintf("large meetings (%d attendees) with %d+ people require executive approval before scheduling", len(e.Attendees), max)
		}
	case KindMaxDuration:
		limit := cfg.Threshold
		if limit <= 0 {
			limit = 4
		}
		rule.Check = func(e core.ProposedEvent) (bool, string) {
			hours := e.Window.Duration().Hours()
			if hours <= limit {
				return true, ""
			}
			return false, fmt.Sprintf("meeting duration (%.1fh) exceeds the %.0f hour recommendation; consider splitting into multiple sessions", hours, limit)
		}
	case KindBusinessHours:
		from, to := hourRange(cfg, 9, 17)
		rule.Check = func(e core.ProposedEvent) (bool, string) {
			h := localStart(e).Hour()
			if h >= from && h < to {
				return true, ""
			}
			return false, fmt.Sprintf("meeting starts at %02d:00, outside business hours (%d:00-%d:00); consider attendee timezones", h, from, to)
		}
	case KindWeekend:
		rule.Check = func(e core.ProposedEvent) (bool, string) {
			day := localStart(e).Weekday()
			if day != time.Saturday && day != time.Sunday {
				return true, ""
			}
			return false, fmt.Sprintf("meeting scheduled on %s; ensure all attendees are willing to attend weekend meetings", day)
		}
	case KindQuietHours:
		early, late := hourRange(cfg, 7, 20)
		rule.Check = func(e core.ProposedEvent) (bool, string) {
			h := localStart(e).Hour()
			if h < early {
				return false, fmt.Sprintf("meeting starts at %02d:00, very early morning; consider timezones", h)
			}
			if h >= late {
				return false, fmt.Sprintf("meeting starts at %02d:00, late evening; consider timezones", h)
			}
			return true, ""
		}
	default:
		return core.PolicyRule{}, fmt.Errorf("unknown policy rule kind %q (rule %q)", cfg.Kind, cfg.ID)
	}

	return rule, nil
}

func intThreshold(v float64, def int) int {
	if v <= 0 {
		return def
	}
	return int(v)
}

func hourRange(cfg RuleConfig, defFrom, defTo int) (int, int) {
	from, to := cfg.StartHour, cfg.EndHour
	if from == 0 && to == 0 {
		return defFrom, defTo
	}
	return from, to
}

// localStart expresses the window start in the event's own timezone, falling
// back to the instant as given when the zone cannot be loaded.
func localStart(e core.ProposedEvent) time.Time {
	if e.Window.Timezone == "" {
		return e.Window.Start
	}
	loc, err := time.LoadLocation(e.Window.Timezone)
	if err != nil {
		return e.Window.Start
	}
	return e.Window.Start.In(loc)
}

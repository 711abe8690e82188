package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/ledger"
	"github.com/hupe1980/schedmesh/logging"
)

// TeamResolver maps a team name to its member ids. Used to decide whether a
// group-scoped rule applies to an event's attendees.
type TeamResolver func(team string) []string

// Options configures an Engine.
type Options struct {
	// Teams resolves group-scoped rules. When nil, group-scoped rules
	// never match.
	Teams  TeamResolver
	Ledger core.Ledger
	Logger logging.Logger
}

// Engine evaluates policy rules against proposed events. It is stateless per
// call and safe for concurrent use.
type Engine struct {
	teams  TeamResolver
	ledger core.Ledger
	logger logging.Logger
}

// NewEngine creates a policy engine.
func NewEngine(optFns ...func(o *Options)) *Engine {
	opts := Options{Ledger: ledger.Discard(), Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{teams: opts.Teams, ledger: opts.Ledger, logger: opts.Logger}
}

// Evaluate runs every applicable rule against the event and returns one
// issue per failed rule, in rule order. A rule whose predicate panics is
// isolated into a warning issue naming the rule; evaluation of the remaining
// rules continues.
func (e *Engine) Evaluate(ctx context.Context, event core.ProposedEvent, rules []core.PolicyRule) []core.ValidationIssue {
	issues := []core.ValidationIssue{}

	applied := 0
	for _, rule := range rules {
		select {
		case <-ctx.Done():
			issues = append(issues, core.ValidationIssue{
				Dimension: core.DimensionPolicy,
				Severity:  core.SeverityWarning,
				Message:   fmt.Sprintf("policy evaluation interrupted before rule %q: %v", rule.ID, ctx.Err()),
				Source:    rule.ID,
			})
			return issues
		default:
		}

		if !e.applies(rule, event) {
			continue
		}
		applied++

		if issue := e.evalRule(rule, event); issue != nil {
			issues = append(issues, *issue)
		}
	}

	e.logger.Debug("policy evaluation finished", "rules", len(rules), "applied", applied, "issues", len(issues))

	return issues
}

// applies resolves the rule's scope predicate against the event.
func (e *Engine) applies(rule core.PolicyRule, event core.ProposedEvent) bool {
	switch rule.Scope {
	case core.ScopeFacility:
		return strings.EqualFold(rule.Target, event.Location)
	case core.ScopeGroup:
		if e.teams == nil {
			return false
		}
		members := map[string]bool{}
		for _, m := range e.teams(rule.Target) {
			members[strings.ToLower(m)] = true
		}
		for _, a := range event.Attendees {
			if members[strings.ToLower(a)] {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// evalRule runs one rule predicate, containing panics from malformed rules.
func (e *Engine) evalRule(rule core.PolicyRule, event core.ProposedEvent) (issue *core.ValidationIssue) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("policy rule predicate panicked", "rule_id", rule.ID, "panic", r)
			issue = &core.ValidationIssue{
				Dimension: core.DimensionPolicy,
				Severity:  core.SeverityWarning,
				Message:   fmt.Sprintf("policy rule %q failed to evaluate: %v", rule.ID, r),
				Source:    rule.ID,
			}
		}
	}()

	if rule.Check == nil {
		return &core.ValidationIssue{
			Dimension: core.DimensionPolicy,
			Severity:  core.SeverityWarning,
			Message:   fmt.Sprintf("policy rule %q has no check predicate", rule.ID),
			Source:    rule.ID,
		}
	}

	ok, detail := rule.Check(event)
	if ok {
		return nil
	}

	message := detail
	if message == "" {
		message = rule.Message
	}
	return &core.ValidationIssue{
		Dimension: core.DimensionPolicy,
		Severity:  rule.Severity,
		Message:   message,
		Source:    rule.ID,
	}
}

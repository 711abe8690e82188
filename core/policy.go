package core

// RuleScope narrows the events a policy rule applies to.
type RuleScope string

const (
	// ScopeAll applies the rule to every proposed event.
	ScopeAll RuleScope = "all"
	// ScopeFacility applies the rule only to events at a named facility.
	ScopeFacility RuleScope = "facility"
	// ScopeGroup applies the rule only when an attendee belongs to a named
	// team.
	ScopeGroup RuleScope = "group"
)

// PolicyRule is a declarative organizational constraint. Rules are loaded
// from a DataStore per evaluation and are immutable during that evaluation.
// Check inspects a proposed event and reports whether the rule passes; when
// it fails, detail (or Message when detail is empty) becomes the issue text.
//
// Rules must be independent: no rule may depend on another rule's outcome
// within the same evaluation pass.
type PolicyRule struct {
	ID       string
	Scope    RuleScope
	Target   string // facility or team name for scoped rules
	Severity Severity
	Message  string
	Check    func(event ProposedEvent) (ok bool, detail string)
}

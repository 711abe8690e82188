// Package policy implements the rule-based engine evaluating organizational
// constraints against a proposed event. Rules are declarative, loaded fresh
// from a DataStore per evaluation, and evaluated independently: no rule may
// observe another rule's outcome, which keeps the engine order-independent
// and trivially parallelizable. A malformed rule degrades to a single
// warning issue naming the rule; it never aborts the remaining rules.
package policy

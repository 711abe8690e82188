// Package datastore houses concrete implementations of the core.DataStore
// capability: JSONStore reads users, facilities and policy rule
// configurations from JSON files (re-read on every load, no caching), and
// StaticStore serves fixed in-process data for tests and demos.
//
// Policy rules are configured declaratively (a rule kind plus parameters)
// and compiled into core.PolicyRule predicates here, so the rule set can
// live in a data file while the engine stays generic.
package datastore

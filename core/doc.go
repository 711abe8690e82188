// Package core provides the foundational domain types and interfaces used by
// SchedMesh. It defines the core abstractions for:
//
//   - Check requests and availability results (one per attendee)
//   - Validation issues, verdicts and the merged ValidationResult
//   - Policy rules (declarative organizational constraints)
//   - Thoughts and reasoning chains (observable decision records)
//   - Sessions and memory records (resumable scheduling state)
//   - Pluggable capabilities: CalendarProvider, DataStore, Ledger,
//     SessionStore and MemoryStore
//
// The package intentionally keeps implementation concerns (persistence,
// concurrency coordination, concrete providers) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core

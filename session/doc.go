// Package session houses concrete implementations of the core.SessionStore
// and core.MemoryStore contracts. Keeping only implementations here prevents
// higher level packages from depending on concrete storage.
//
// InMemoryStore is volatile and suited for tests or ephemeral demos.
// SQLiteStore persists sessions and memory records durably, with FTS5-backed
// relevance search over memory content. Both stores guarantee
// read-after-write consistency per session id, never hard-delete a session
// (closing only flips its status), and let memory records outlive their
// originating session.
package session

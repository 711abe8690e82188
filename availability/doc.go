// Package availability implements the per-attendee calendar checks: a Worker
// performing a single check against the CalendarProvider, and a Coordinator
// fanning one worker out per attendee with a bounded pool and per-worker
// timeout.
//
// Failure isolation is the central contract: a worker never raises past its
// own boundary (provider failures become an "unknown" result), and one slow
// or failed worker degrades only its own result, never its siblings'.
// Results are returned in input order regardless of completion order so
// callers can zip them back to attendees positionally.
package availability

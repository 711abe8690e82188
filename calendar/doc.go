// Package calendar houses concrete implementations of the
// core.CalendarProvider capability. The real provider integration (Google
// Calendar, Exchange, ...) lives outside this module; StaticProvider serves
// demos and tests with configurable busy intervals, injectable latency and
// per-calendar failures.
package calendar

// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer SchedLogger with contextual
// helpers (correlation id, component) and domain specific logging helpers for
// availability workers, validation dimensions and verdicts.
package logging

// Package validate implements the validation aggregator: the primary entry
// point that fans the independent validation dimensions (availability, room,
// timezone, policy) out concurrently, waits for all of them, and merges
// their findings into a single deterministic ValidationResult.
//
// No dimension can short-circuit another, and no dimension failure escapes
// as an error: an unrecoverable dimension is converted into a blocking issue
// attributed to it, degrading the verdict instead of crashing the workflow.
// The only caller-visible failure is invalid input, rejected synchronously
// before any dispatch.
package validate

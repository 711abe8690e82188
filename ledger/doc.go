// Package ledger houses concrete implementations of the core.Ledger
// contract: an append-only, timestamped record of reasoning steps keyed by
// correlation id. Entries are immutable once written, so readers may consume
// the ledger concurrently with the write path and always observe a
// consistent prefix.
//
// Recording a thought is fire-and-forget: listener failures and internal
// problems are logged and dropped, never surfaced to the caller. Business
// logic must never branch on ledger contents.
package ledger

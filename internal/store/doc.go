// Package store provides optional SQLite-backed history for comparison
// runs.
//
// Recording is opt-in (the compare command's --record flag); a default
// invocation persists nothing. Each recorded run captures the inputs,
// the verdict and, for divergences, the mismatching program counters,
// so past comparisons can be listed and re-examined without re-running
// them.
//
// Query results are ordered deterministically (created_at, then id with
// binary collation) so repeated listings are stable.
package store

// Package knowledge implements the pattern store: a persistent,
// file-backed knowledge base of lessons, reusable components and an
// append-only history log.
//
// Records carry confidence scores recomputed on every reapplication from
// the historical success rate and a recency-weighted rolling window, and
// decay through an explicit state machine when unreinforced:
//
//	new -> active -> (reinforced|decaying) -> stale -> (reactivated|archived)
//
// Every mutation is a read-modify-write against a backing file, guarded
// by an advisory lock with a bounded wait and promoted by atomic rename,
// so no reader ever observes a half-written file. Rate limits are counted
// from the durable history log, never from memory, so they survive
// process restarts.
package knowledge

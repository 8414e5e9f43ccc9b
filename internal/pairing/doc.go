// Package pairing matches anonymous chat sessions that share a problem id and relays
// messages between matched partners.
//
// All shared state lives in a Registry owned by an Engine. Every mutation, and every
// read that feeds a broadcast, happens inside the engine's single critical section, so
// two sessions connecting at the same instant can never both claim the same waiting
// partner. The lock is process-wide; it is the known contention point if one process
// ever serves a very large number of problems at once.
//
// Sessions are appended to a per-problem sequence and only removed when they
// disconnect. Matching scans that sequence in windows of two and pairs a newcomer with
// the entry sitting alone in the trailing window. Paired entries are never compacted
// out, so matching is not strictly first-come-first-served once disconnects interleave
// with connects.
package pairing

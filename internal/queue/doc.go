// Package queue implements per-session-type task queues on top of the
// coordination store.
//
// Each session type owns one JSON array at tasks/<session_type>_queue.json.
// Tasks are appended in insertion order, move from pending to completed
// exactly once, and are never removed. A missing or unparsable queue reads as
// empty; a later Enqueue replaces it with a fresh array.
//
// Concurrent Enqueue calls within one process are serialized per queue.
// Across processes the last writer wins unless the store was opened with
// locking enabled.
package queue

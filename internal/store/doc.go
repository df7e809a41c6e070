// Package store is the durable store shared by every handoff session: a
// directory tree of JSON documents on a filesystem all sessions can reach.
//
// The store is the only communication medium. No component assumes that any
// other session is alive; everything a session needs to know is in a file.
//
//	<project_root>/.coordination/
//	    tasks/<session_type>_queue.json   -- array of tasks
//	    test_plans/plan_<unix_ts>.json    -- one test plan
//	    results/results_<unix_ts>.json    -- one result
//	    <signal_type>_signal.json         -- at most one signal per type
//
// # Writes
//
// [Store.WriteJSON] writes to a temporary file in the target directory and
// renames it into place, so a reader never observes a half-written document
// and a crash mid-write leaves the previous version intact. It does not make
// concurrent read-modify-write cycles safe: two processes appending to the
// same queue can still lose one append (last writer wins). [Store.Update]
// serializes such cycles within a process, and additionally across processes
// when the store is opened [WithLocking].
//
// # Reads
//
// [Store.ReadJSON] distinguishes a missing document ([errors.ErrDocumentNotFound])
// from an unparsable one ([errors.ErrDocumentCorrupt]). Broker components
// treat both as absence.
//
// # Thread Safety
//
// A Store is safe for concurrent use by multiple goroutines.
package store

// Package plan manages test plans: documents a coding session hands to a
// testing session describing what to verify.
//
// Each plan is one file under test_plans/. The registry owns the id,
// created_at, status, started_at and completed_at keys; every other key is
// caller data stored beside them at the top level of the document.
package plan

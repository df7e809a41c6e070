// Package event provides a synchronous pub-sub bus for broker activity.
//
// The coordination broker publishes an event after every successful
// mutation: a task enqueued or completed, a plan created or moved to a new
// status, a result recorded, a signal sent or received, a retention sweep.
// Subscribers such as the notification sink and the event log react without
// the broker knowing about them.
//
// Event types follow the pattern "category.action":
//   - task.enqueued, task.completed
//   - plan.created, plan.status_changed
//   - result.recorded
//   - signal.sent, signal.received
//   - retention.swept
//
// Handlers run synchronously on the publishing goroutine. A panicking
// handler is logged and does not stop delivery to the others.
package event

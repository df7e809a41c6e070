package event

import "time"

// Event types published by the broker.
const (
	TypeTaskEnqueued      = "task.enqueued"
	TypeTaskCompleted     = "task.completed"
	TypePlanCreated       = "plan.created"
	TypePlanStatusChanged = "plan.status_changed"
	TypeResultRecorded    = "result.recorded"
	TypeSignalSent        = "signal.sent"
	TypeSignalReceived    = "signal.received"
	TypeRetentionSwept    = "retention.swept"
)

// Event is the interface that all events implement.
type Event interface {
	// EventType returns a "category.action" identifier.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Queue Events
// -----------------------------------------------------------------------------

// TaskEnqueuedEvent is emitted after a task is appended to a queue.
type TaskEnqueuedEvent struct {
	baseEvent
	SessionType string
	TaskID      string
}

// NewTaskEnqueuedEvent creates a TaskEnqueuedEvent.
func NewTaskEnqueuedEvent(sessionType, taskID string) TaskEnqueuedEvent {
	return TaskEnqueuedEvent{
		baseEvent:   newBaseEvent(TypeTaskEnqueued),
		SessionType: sessionType,
		TaskID:      taskID,
	}
}

// TaskCompletedEvent is emitted after a pending task is marked completed.
type TaskCompletedEvent struct {
	baseEvent
	SessionType string
	TaskID      string
}

// NewTaskCompletedEvent creates a TaskCompletedEvent.
func NewTaskCompletedEvent(sessionType, taskID string) TaskCompletedEvent {
	return TaskCompletedEvent{
		baseEvent:   newBaseEvent(TypeTaskCompleted),
		SessionType: sessionType,
		TaskID:      taskID,
	}
}

// -----------------------------------------------------------------------------
// Plan and Result Events
// -----------------------------------------------------------------------------

// PlanCreatedEvent is emitted after a test plan is written.
type PlanCreatedEvent struct {
	baseEvent
	Path string
}

// NewPlanCreatedEvent creates a PlanCreatedEvent.
func NewPlanCreatedEvent(path string) PlanCreatedEvent {
	return PlanCreatedEvent{baseEvent: newBaseEvent(TypePlanCreated), Path: path}
}

// PlanStatusChangedEvent is emitted after a plan's status is rewritten.
type PlanStatusChangedEvent struct {
	baseEvent
	Path   string
	Status string
}

// NewPlanStatusChangedEvent creates a PlanStatusChangedEvent.
func NewPlanStatusChangedEvent(path, status string) PlanStatusChangedEvent {
	return PlanStatusChangedEvent{
		baseEvent: newBaseEvent(TypePlanStatusChanged),
		Path:      path,
		Status:    status,
	}
}

// ResultRecordedEvent is emitted after a result is written.
type ResultRecordedEvent struct {
	baseEvent
	Path   string
	PlanID string // empty when the result is not linked to a plan
	Fields map[string]any
}

// NewResultRecordedEvent creates a ResultRecordedEvent.
func NewResultRecordedEvent(path, planID string, fields map[string]any) ResultRecordedEvent {
	return ResultRecordedEvent{
		baseEvent: newBaseEvent(TypeResultRecorded),
		Path:      path,
		PlanID:    planID,
		Fields:    fields,
	}
}

// -----------------------------------------------------------------------------
// Signal Events
// -----------------------------------------------------------------------------

// SignalSentEvent is emitted after a signal file is written.
type SignalSentEvent struct {
	baseEvent
	SignalType string
	Sender     string
	Data       any
}

// NewSignalSentEvent creates a SignalSentEvent.
func NewSignalSentEvent(signalType, sender string, data any) SignalSentEvent {
	return SignalSentEvent{
		baseEvent:  newBaseEvent(TypeSignalSent),
		SignalType: signalType,
		Sender:     sender,
		Data:       data,
	}
}

// SignalReceivedEvent is emitted after a signal is consumed.
type SignalReceivedEvent struct {
	baseEvent
	SignalType string
	Sender     string
}

// NewSignalReceivedEvent creates a SignalReceivedEvent.
func NewSignalReceivedEvent(signalType, sender string) SignalReceivedEvent {
	return SignalReceivedEvent{
		baseEvent:  newBaseEvent(TypeSignalReceived),
		SignalType: signalType,
		Sender:     sender,
	}
}

// -----------------------------------------------------------------------------
// Retention Events
// -----------------------------------------------------------------------------

// RetentionSweptEvent is emitted after a retention sweep that removed files.
type RetentionSweptEvent struct {
	baseEvent
	Removed int
	MaxAge  time.Duration
}

// NewRetentionSweptEvent creates a RetentionSweptEvent.
func NewRetentionSweptEvent(removed int, maxAge time.Duration) RetentionSweptEvent {
	return RetentionSweptEvent{
		baseEvent: newBaseEvent(TypeRetentionSwept),
		Removed:   removed,
		MaxAge:    maxAge,
	}
}

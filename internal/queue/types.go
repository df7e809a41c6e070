package queue

// Status is the lifecycle state of a task.
type Status string

// Task statuses.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Task is one unit of work addressed to a session type. Task holds any JSON
// value the caller supplied; objects decode as map[string]any.
type Task struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Task        any    `json:"task"`
	Status      Status `json:"status"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// IsPending reports whether the task has not been completed.
func (t Task) IsPending() bool { return t.Status == StatusPending }

package queue

import (
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/handoff/internal/errors"
	"github.com/Iron-Ham/handoff/internal/logging"
	"github.com/Iron-Ham/handoff/internal/store"
)

const queueSuffix = "_queue.json"

// Manager reads and mutates task queues in a store.
type Manager struct {
	store  *store.Store
	logger *logging.Logger
}

// NewManager returns a Manager for s.
func NewManager(s *store.Store) *Manager {
	return &Manager{
		store:  s,
		logger: s.Logger().WithComponent("queue"),
	}
}

// Path returns the queue document path for sessionType.
func (m *Manager) Path(sessionType string) string {
	return m.store.Path(store.TasksDir, sessionType+queueSuffix)
}

// Enqueue appends a pending task carrying payload to the queue for
// sessionType and returns its id. payload may be any JSON value; nil is
// stored as an empty object.
func (m *Manager) Enqueue(sessionType string, payload any) (string, error) {
	if err := validateSessionType(sessionType); err != nil {
		return "", err
	}
	if payload == nil {
		payload = store.Payload{}
	}

	task := Task{
		ID:        m.store.NewID(sessionType),
		Timestamp: m.store.Timestamp(),
		Task:      store.CloneValue(payload),
		Status:    StatusPending,
	}

	path := m.Path(sessionType)
	err := m.store.Update(path, func() error {
		tasks := m.load(path)
		tasks = append(tasks, task)
		return m.store.WriteJSON(path, tasks)
	})
	if err != nil {
		m.logger.Failure("enqueue failed", err, "session_type", sessionType)
		return "", err
	}

	m.logger.Debug("task enqueued", "session_type", sessionType, "task_id", task.ID)
	return task.ID, nil
}

// List returns every task in the queue for sessionType in insertion order.
func (m *Manager) List(sessionType string) []Task {
	if validateSessionType(sessionType) != nil {
		return nil
	}
	return m.load(m.Path(sessionType))
}

// ListPending returns the pending tasks for sessionType in insertion order.
func (m *Manager) ListPending(sessionType string) []Task {
	var pending []Task
	for _, t := range m.List(sessionType) {
		if t.IsPending() {
			pending = append(pending, t)
		}
	}
	return pending
}

// Complete marks the first task with taskID as completed. It returns false
// when the queue is missing or unreadable, no task has that id, the task was
// already completed, or the write fails.
func (m *Manager) Complete(sessionType, taskID string) bool {
	if validateSessionType(sessionType) != nil || taskID == "" {
		return false
	}

	path := m.Path(sessionType)
	completed := false
	err := m.store.Update(path, func() error {
		tasks := m.load(path)
		for i := range tasks {
			if tasks[i].ID != taskID {
				continue
			}
			if !tasks[i].IsPending() {
				return nil
			}
			tasks[i].Status = StatusCompleted
			tasks[i].CompletedAt = m.store.Timestamp()
			if err := m.store.WriteJSON(path, tasks); err != nil {
				return err
			}
			completed = true
			return nil
		}
		return nil
	})
	if err != nil {
		m.logger.Failure("complete failed", err, "session_type", sessionType, "task_id", taskID)
		return false
	}
	return completed
}

// SessionTypes returns the session types that have a queue document, sorted.
func (m *Manager) SessionTypes() []string {
	paths, err := m.store.List(m.store.Path(store.TasksDir), "*"+queueSuffix)
	if err != nil {
		m.logger.Failure("list queues failed", err)
		return nil
	}

	types := make([]string, 0, len(paths))
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), queueSuffix)
		if name != "" {
			types = append(types, name)
		}
	}
	return types
}

// PendingCounts returns the number of pending tasks per discovered queue.
func (m *Manager) PendingCounts() map[string]int {
	counts := make(map[string]int)
	for _, st := range m.SessionTypes() {
		counts[st] = len(m.ListPending(st))
	}
	return counts
}

// load reads the queue at path. Missing and corrupt queues read as empty.
func (m *Manager) load(path string) []Task {
	var tasks []Task
	if err := m.store.ReadJSON(path, &tasks); err != nil {
		if !errors.IsAbsent(err) {
			m.logger.Failure("queue unreadable, treating as empty", err, "path", path)
		}
		return nil
	}
	return tasks
}

func validateSessionType(sessionType string) error {
	if sessionType == "" || strings.ContainsAny(sessionType, `/\`) || sessionType == "." || sessionType == ".." {
		return errors.NewValidationError("invalid session type").WithField("session_type").WithValue(sessionType)
	}
	return nil
}

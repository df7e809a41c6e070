package plan

import (
	"encoding/json"

	"github.com/Iron-Ham/handoff/internal/store"
)

// Status is the lifecycle state of a plan. Statuses outside the constants
// below are stored verbatim.
type Status string

// Well-known plan statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Envelope keys owned by the registry.
const (
	keyID          = "id"
	keyCreatedAt   = "created_at"
	keyStatus      = "status"
	keyStartedAt   = "started_at"
	keyCompletedAt = "completed_at"
	keyFile        = "file"
)

// Plan is a test plan document. Fields holds the caller-supplied keys.
// Path is the file the plan was read from; it is never persisted, and when
// set it replaces any caller "file" field in the JSON form.
type Plan struct {
	ID          string
	CreatedAt   string
	Status      Status
	StartedAt   string
	CompletedAt string
	Fields      store.Payload
	Path        string
}

// MarshalJSON writes the envelope and caller fields as one flat object, with
// Path under "file" when set.
func (p Plan) MarshalJSON() ([]byte, error) {
	env := map[string]any{
		keyID:        p.ID,
		keyCreatedAt: p.CreatedAt,
		keyStatus:    string(p.Status),
	}
	if p.StartedAt != "" {
		env[keyStartedAt] = p.StartedAt
	}
	if p.CompletedAt != "" {
		env[keyCompletedAt] = p.CompletedAt
	}
	if p.Path != "" {
		env[keyFile] = p.Path
	}
	return json.Marshal(store.MergeEnvelope(p.Fields, env))
}

// UnmarshalJSON splits a flat plan object into envelope and caller fields.
func (p *Plan) UnmarshalJSON(data []byte) error {
	env, fields, err := store.SplitEnvelope(data, keyID, keyCreatedAt, keyStatus, keyStartedAt, keyCompletedAt)
	if err != nil {
		return err
	}
	*p = Plan{
		ID:          env[keyID],
		CreatedAt:   env[keyCreatedAt],
		Status:      Status(env[keyStatus]),
		StartedAt:   env[keyStartedAt],
		CompletedAt: env[keyCompletedAt],
		Fields:      fields,
	}
	return nil
}

// document is the persisted form of a plan, which keeps only a caller's own
// "file" field.
func (p Plan) document() Plan {
	p.Path = ""
	return p
}

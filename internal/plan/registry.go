package plan

import (
	"path/filepath"
	"sort"

	"github.com/Iron-Ham/handoff/internal/errors"
	"github.com/Iron-Ham/handoff/internal/logging"
	"github.com/Iron-Ham/handoff/internal/store"
)

const idPrefix = "plan"

// Registry creates, lists and updates test plans in a store.
type Registry struct {
	store  *store.Store
	logger *logging.Logger
}

// NewRegistry returns a Registry for s.
func NewRegistry(s *store.Store) *Registry {
	return &Registry{
		store:  s,
		logger: s.Logger().WithComponent("plan"),
	}
}

// Dir returns the directory holding plan documents.
func (r *Registry) Dir() string { return r.store.Path(store.PlansDir) }

// Create persists a new pending plan built from fields and returns its path.
// Caller fields named id, created_at or status are overridden.
func (r *Registry) Create(fields store.Payload) (string, error) {
	p := Plan{
		ID:        r.store.NewID(idPrefix),
		CreatedAt: r.store.Timestamp(),
		Status:    StatusPending,
		Fields:    withoutReserved(fields),
	}

	path := filepath.Join(r.Dir(), p.ID+".json")
	if err := r.store.WriteJSON(path, p.document()); err != nil {
		r.logger.Failure("create plan failed", err, "path", path)
		return "", err
	}

	r.logger.Debug("plan created", "plan_id", p.ID, "path", path)
	return path, nil
}

// Get reads the plan at path. Missing and corrupt plans report false.
func (r *Registry) Get(path string) (Plan, bool) {
	var p Plan
	if err := r.store.ReadJSON(path, &p); err != nil {
		if !errors.IsAbsent(err) {
			r.logger.Failure("skipping unreadable plan", err, "path", path)
		}
		return Plan{}, false
	}
	p.Path = path
	return p, true
}

// List returns the plans whose status equals status, oldest first. An empty
// status matches every plan. Unreadable files are skipped.
func (r *Registry) List(status Status) []Plan {
	paths, err := r.store.List(r.Dir(), "*.json")
	if err != nil {
		r.logger.Failure("list plans failed", err)
		return nil
	}

	var plans []Plan
	for _, path := range paths {
		p, ok := r.Get(path)
		if !ok {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		plans = append(plans, p)
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].CreatedAt < plans[j].CreatedAt
	})
	return plans
}

// SetStatus sets the status of the plan at path, stamping completed_at when
// the new status is completed and started_at when it is in_progress. Any
// transition is accepted. It returns false when the plan cannot be read or
// written.
func (r *Registry) SetStatus(path string, status Status) bool {
	if status == "" {
		return false
	}

	ok := false
	err := r.store.Update(path, func() error {
		p, found := r.Get(path)
		if !found {
			return nil
		}

		p.Status = status
		switch status {
		case StatusCompleted:
			p.CompletedAt = r.store.Timestamp()
		case StatusInProgress:
			p.StartedAt = r.store.Timestamp()
		}

		if err := r.store.WriteJSON(path, p.document()); err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		r.logger.Failure("update plan status failed", err, "path", path, "status", status)
		return false
	}
	return ok
}

// Count returns the number of plans with the given status.
func (r *Registry) Count(status Status) int {
	return len(r.List(status))
}

func withoutReserved(fields store.Payload) store.Payload {
	out := fields.Clone()
	for _, k := range []string{keyID, keyCreatedAt, keyStatus} {
		delete(out, k)
	}
	return out
}

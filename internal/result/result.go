// Package result records test results reported back by a testing session.
// Results are write-once documents under results/, optionally linked to the
// plan they answer.
package result

import (
	"encoding/json"
	"path/filepath"
	"sort"

	"github.com/Iron-Ham/handoff/internal/errors"
	"github.com/Iron-Ham/handoff/internal/logging"
	"github.com/Iron-Ham/handoff/internal/store"
)

const idPrefix = "results"

const (
	keyID        = "id"
	keyCreatedAt = "created_at"
	keyPlanID    = "plan_id"
	keyFile      = "file"
)

// Result is a recorded result document. PlanID is empty when the result is
// not linked to a plan; it is persisted as JSON null in that case. Path is
// never persisted and, when set, replaces any caller "file" field in the
// JSON form.
type Result struct {
	ID        string
	CreatedAt string
	PlanID    string
	Fields    store.Payload
	Path      string
}

// MarshalJSON writes the envelope and caller fields as one flat object.
func (r Result) MarshalJSON() ([]byte, error) {
	env := map[string]any{
		keyID:        r.ID,
		keyCreatedAt: r.CreatedAt,
		keyPlanID:    nil,
	}
	if r.PlanID != "" {
		env[keyPlanID] = r.PlanID
	}
	if r.Path != "" {
		env[keyFile] = r.Path
	}
	return json.Marshal(store.MergeEnvelope(r.Fields, env))
}

// UnmarshalJSON splits a flat result object into envelope and caller fields.
func (r *Result) UnmarshalJSON(data []byte) error {
	env, fields, err := store.SplitEnvelope(data, keyID, keyCreatedAt, keyPlanID)
	if err != nil {
		return err
	}
	*r = Result{
		ID:        env[keyID],
		CreatedAt: env[keyCreatedAt],
		PlanID:    env[keyPlanID],
		Fields:    fields,
	}
	return nil
}

// Registry records and lists results in a store.
type Registry struct {
	store  *store.Store
	logger *logging.Logger
}

// NewRegistry returns a Registry for s.
func NewRegistry(s *store.Store) *Registry {
	return &Registry{
		store:  s,
		logger: s.Logger().WithComponent("result"),
	}
}

// Dir returns the directory holding result documents.
func (r *Registry) Dir() string { return r.store.Path(store.ResultsDir) }

// Record persists fields as a new result linked to planID, which may be
// empty, and returns the document path.
func (r *Registry) Record(fields store.Payload, planID string) (string, error) {
	clean := fields.Clone()
	for _, k := range []string{keyID, keyCreatedAt, keyPlanID} {
		delete(clean, k)
	}

	res := Result{
		ID:        r.store.NewID(idPrefix),
		CreatedAt: r.store.Timestamp(),
		PlanID:    planID,
		Fields:    clean,
	}

	path := filepath.Join(r.Dir(), res.ID+".json")
	if err := r.store.WriteJSON(path, res); err != nil {
		r.logger.Failure("record result failed", err, "path", path)
		return "", err
	}

	r.logger.Debug("result recorded", "result_id", res.ID, "plan_id", planID)
	return path, nil
}

// Get reads the result at path.
func (r *Registry) Get(path string) (Result, bool) {
	var res Result
	if err := r.store.ReadJSON(path, &res); err != nil {
		if !errors.IsAbsent(err) {
			r.logger.Failure("skipping unreadable result", err, "path", path)
		}
		return Result{}, false
	}
	res.Path = path
	return res, true
}

// List returns results oldest first. A non-empty planID keeps only results
// linked to that plan. Unreadable files are skipped.
func (r *Registry) List(planID string) []Result {
	paths, err := r.store.List(r.Dir(), "*.json")
	if err != nil {
		r.logger.Failure("list results failed", err)
		return nil
	}

	var results []Result
	for _, path := range paths {
		res, ok := r.Get(path)
		if !ok {
			continue
		}
		if planID != "" && res.PlanID != planID {
			continue
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt < results[j].CreatedAt
	})
	return results
}

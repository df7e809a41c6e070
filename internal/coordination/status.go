package coordination

import "github.com/Iron-Ham/handoff/internal/plan"

// Status is a point-in-time summary of a coordination directory. It is
// computed on demand and never persisted.
type Status struct {
	PendingTasks        map[string]int `json:"pending_tasks" yaml:"pending_tasks"`
	PendingTestPlans    int            `json:"pending_test_plans" yaml:"pending_test_plans"`
	InProgressTestPlans int            `json:"in_progress_test_plans" yaml:"in_progress_test_plans"`
	RecentResults       int            `json:"recent_results" yaml:"recent_results"`
	OutstandingSignals  []string       `json:"outstanding_signals" yaml:"outstanding_signals"`
	CoordinationDir     string         `json:"coordination_dir" yaml:"coordination_dir"`

	// SignalSenders maps each outstanding signal type to its sender, for
	// the text view. It is left out of the JSON and YAML forms.
	SignalSenders map[string]string `json:"-" yaml:"-"`
}

// Status computes the current Status. It only reads.
func (b *Broker) Status() Status {
	signals := b.signals.Pending()
	if signals == nil {
		signals = []string{}
	}
	senders := make(map[string]string, len(signals))
	for _, t := range signals {
		if sig, ok := b.signals.Peek(t); ok {
			senders[t] = sig.Sender
		}
	}
	return Status{
		PendingTasks:        b.queue.PendingCounts(),
		PendingTestPlans:    b.plans.Count(plan.StatusPending),
		InProgressTestPlans: b.plans.Count(plan.StatusInProgress),
		RecentResults:       len(b.results.List("")),
		OutstandingSignals:  signals,
		CoordinationDir:     b.store.Dir(),
		SignalSenders:       senders,
	}
}

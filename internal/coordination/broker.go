package coordination

import (
	"context"
	"time"

	"github.com/Iron-Ham/handoff/internal/event"
	"github.com/Iron-Ham/handoff/internal/logging"
	"github.com/Iron-Ham/handoff/internal/plan"
	"github.com/Iron-Ham/handoff/internal/queue"
	"github.com/Iron-Ham/handoff/internal/result"
	"github.com/Iron-Ham/handoff/internal/retention"
	"github.com/Iron-Ham/handoff/internal/signal"
	"github.com/Iron-Ham/handoff/internal/store"
)

// Broker is the facade over one coordination directory.
type Broker struct {
	store   *store.Store
	queue   *queue.Manager
	plans   *plan.Registry
	results *result.Registry
	signals *signal.Channel
	sweeper *retention.Sweeper
	bus     *event.Bus
	logger  *logging.Logger
}

// New returns a Broker for the coordination directory under projectRoot.
// Nothing is created on disk until the first write.
func New(projectRoot string, opts ...Option) *Broker {
	cfg := &brokerConfig{uniqueIDs: true, lockWait: store.DefaultLockWait}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NopLogger()
	}
	if cfg.bus == nil {
		cfg.bus = event.NewBus(event.WithLogger(cfg.logger))
	}

	storeOpts := []store.Option{
		store.WithLogger(cfg.logger),
		store.WithLocking(cfg.locking),
		store.WithLockWait(cfg.lockWait),
		store.WithUniqueIDs(cfg.uniqueIDs),
	}
	if cfg.clock != nil {
		storeOpts = append(storeOpts, store.WithClock(cfg.clock))
	}
	s := store.Open(projectRoot, cfg.dirName, storeOpts...)

	return &Broker{
		store:   s,
		queue:   queue.NewManager(s),
		plans:   plan.NewRegistry(s),
		results: result.NewRegistry(s),
		signals: signal.NewChannel(s, signal.WithSender(cfg.sender)),
		sweeper: retention.NewSweeper(s),
		bus:     cfg.bus,
		logger:  cfg.logger.WithComponent("broker"),
	}
}

// Dir returns the coordination directory.
func (b *Broker) Dir() string { return b.store.Dir() }

// Store returns the underlying document store.
func (b *Broker) Store() *store.Store { return b.store }

// Queue returns the task queue manager.
func (b *Broker) Queue() *queue.Manager { return b.queue }

// Plans returns the test plan registry.
func (b *Broker) Plans() *plan.Registry { return b.plans }

// Results returns the result registry.
func (b *Broker) Results() *result.Registry { return b.results }

// Signals returns the signal channel.
func (b *Broker) Signals() *signal.Channel { return b.signals }

// Sweeper returns the retention sweeper.
func (b *Broker) Sweeper() *retention.Sweeper { return b.sweeper }

// Bus returns the bus broker events are published on.
func (b *Broker) Bus() *event.Bus { return b.bus }

// EnqueueTask appends a pending task for sessionType and returns its id.
func (b *Broker) EnqueueTask(sessionType string, payload any) (string, error) {
	id, err := b.queue.Enqueue(sessionType, payload)
	if err != nil {
		return "", err
	}
	b.bus.Publish(event.NewTaskEnqueuedEvent(sessionType, id))
	return id, nil
}

// PendingTasks returns the pending tasks for sessionType in insertion order.
func (b *Broker) PendingTasks(sessionType string) []queue.Task {
	return b.queue.ListPending(sessionType)
}

// CompleteTask marks a pending task completed and reports whether it did.
func (b *Broker) CompleteTask(sessionType, taskID string) bool {
	if !b.queue.Complete(sessionType, taskID) {
		return false
	}
	b.bus.Publish(event.NewTaskCompletedEvent(sessionType, taskID))
	return true
}

// CreateTestPlan writes a new pending plan and returns its path.
func (b *Broker) CreateTestPlan(fields store.Payload) (string, error) {
	path, err := b.plans.Create(fields)
	if err != nil {
		return "", err
	}
	b.bus.Publish(event.NewPlanCreatedEvent(path))
	return path, nil
}

// TestPlans returns plans with the given status, oldest first.
func (b *Broker) TestPlans(status plan.Status) []plan.Plan {
	return b.plans.List(status)
}

// SetTestPlanStatus rewrites a plan's status and reports whether it did.
func (b *Broker) SetTestPlanStatus(path string, status plan.Status) bool {
	if !b.plans.SetStatus(path, status) {
		return false
	}
	b.bus.Publish(event.NewPlanStatusChangedEvent(path, string(status)))
	return true
}

// RecordResults writes a result linked to planID, which may be empty, and
// returns its path.
func (b *Broker) RecordResults(fields store.Payload, planID string) (string, error) {
	path, err := b.results.Record(fields, planID)
	if err != nil {
		return "", err
	}
	b.bus.Publish(event.NewResultRecordedEvent(path, planID, fields.Clone()))
	return path, nil
}

// TestResults returns results oldest first, filtered by planID when it is
// not empty.
func (b *Broker) TestResults(planID string) []result.Result {
	return b.results.List(planID)
}

// SendSignal raises a signal of signalType, replacing any unread one.
func (b *Broker) SendSignal(signalType string, data any) error {
	if err := b.signals.Send(signalType, data); err != nil {
		return err
	}
	b.bus.Publish(event.NewSignalSentEvent(signalType, b.signals.Sender(), store.CloneValue(data)))
	return nil
}

// ReceiveSignal consumes the outstanding signal of signalType.
func (b *Broker) ReceiveSignal(signalType string) (*signal.Signal, bool) {
	sig, ok := b.signals.Receive(signalType)
	if ok {
		b.bus.Publish(event.NewSignalReceivedEvent(signalType, sig.Sender))
	}
	return sig, ok
}

// WatchSignals delivers each signal of signalType to handler as it
// arrives, until ctx is done. See signal.Channel.Watch.
func (b *Broker) WatchSignals(ctx context.Context, signalType string, handler signal.Handler, opts ...signal.WatchOption) error {
	return b.signals.Watch(ctx, signalType, func(sig *signal.Signal) {
		b.bus.Publish(event.NewSignalReceivedEvent(signalType, sig.Sender))
		handler(sig)
	}, opts...)
}

// WaitSignal blocks until one signal of signalType is consumed or ctx is
// done, in which case it returns errors.ErrSignalAbsent.
func (b *Broker) WaitSignal(ctx context.Context, signalType string, opts ...signal.WatchOption) (*signal.Signal, error) {
	sig, err := b.signals.Wait(ctx, signalType, opts...)
	if err != nil {
		return nil, err
	}
	b.bus.Publish(event.NewSignalReceivedEvent(signalType, sig.Sender))
	return sig, nil
}

// Cleanup removes plans and results last modified more than maxAge ago and
// returns how many were removed.
func (b *Broker) Cleanup(maxAge time.Duration) int {
	n := b.sweeper.Cleanup(maxAge)
	if n > 0 {
		b.bus.Publish(event.NewRetentionSweptEvent(n, maxAge))
	}
	return n
}

// CleanupDays is Cleanup with the window given in whole days.
func (b *Broker) CleanupDays(days int) int {
	return b.Cleanup(time.Duration(days) * retention.Day)
}

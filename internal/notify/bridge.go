package notify

import (
	"github.com/Iron-Ham/handoff/internal/event"
	"github.com/Iron-Ham/handoff/internal/store"
)

// FromEvent maps a broker event to the notification a watching human would
// want, if any.
func FromEvent(e event.Event) (Notification, bool) {
	switch ev := e.(type) {
	case event.SignalSentEvent:
		data, _ := store.AsPayload(ev.Data)
		if t, _ := data.String("type"); t == "new_test_plan" {
			return Build(KindTestPlanReady, data), true
		}
	case event.ResultRecordedEvent:
		data := map[string]any{}
		for _, k := range []string{"summary", "priority", "blocking"} {
			if v, ok := ev.Fields[k]; ok {
				data[k] = v
			}
		}
		if failed, ok := ev.Fields["failed"]; ok && isPositive(failed) {
			if _, ok := data["priority"]; !ok {
				data["priority"] = string(PriorityCritical)
			}
			if summary, ok := data["summary"].(string); ok && summary != "" {
				data["message"] = "Critical test failures detected: " + summary
			}
			return Build(KindCriticalFailure, data), true
		}
		return Build(KindTestResultsAvailable, data), true
	}
	return Notification{}, false
}

// Forwarder delivers notifications for broker events to a sink.
type Forwarder struct {
	bus   *event.Bus
	sink  Sink
	subID string
	onErr func(error)
}

// NewForwarder subscribes to every event on bus and forwards the ones
// FromEvent maps to sink. onErr, if non-nil, receives delivery failures.
func NewForwarder(bus *event.Bus, sink Sink, onErr func(error)) *Forwarder {
	f := &Forwarder{bus: bus, sink: sink, onErr: onErr}
	f.subID = bus.SubscribeAll(f.handle)
	return f
}

// Stop unsubscribes the forwarder.
func (f *Forwarder) Stop() { f.bus.Unsubscribe(f.subID) }

func (f *Forwarder) handle(e event.Event) {
	n, ok := FromEvent(e)
	if !ok {
		return
	}
	if err := f.sink.Notify(n); err != nil && f.onErr != nil {
		f.onErr(err)
	}
}

func isPositive(v any) bool {
	switch n := v.(type) {
	case bool:
		return n
	case float64:
		return n > 0
	case int:
		return n > 0
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		return err == nil && i > 0
	}
	return false
}

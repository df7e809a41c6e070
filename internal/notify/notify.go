// Package notify turns coordination events into short human-readable
// notifications and delivers them to a sink.
package notify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Priority orders how urgently a notification should be surfaced.
type Priority string

// Priorities, lowest to highest.
const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Notification kinds with dedicated messages.
const (
	KindTestPlanReady        = "test_plan_ready"
	KindTestResultsAvailable = "test_results_available"
	KindCriticalFailure      = "critical_failure"
	KindTestsPassed          = "tests_passed"
	KindCoordinationError    = "coordination_error"
	KindPostTool             = "post_tool_notification"
)

const blockingSuffix = " This is blocking further development."

// Notification is a rendered message ready for a sink.
type Notification struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
}

// Build renders the notification for kind from data. Unknown kinds get a
// generic message. A true "blocking" value appends a blocking note and
// raises the priority to critical.
func Build(kind string, data map[string]any) Notification {
	n := Notification{
		Kind:     kind,
		Message:  message(kind, data),
		Priority: Priority(stringOr(data, "priority", string(PriorityNormal))),
	}
	if b, _ := data["blocking"].(bool); b {
		n.Message += blockingSuffix
		n.Priority = PriorityCritical
	}
	return n
}

func message(kind string, data map[string]any) string {
	switch kind {
	case KindTestPlanReady:
		return "Test plan ready for execution. Priority: " + stringOr(data, "priority", string(PriorityNormal))
	case KindTestResultsAvailable:
		return "Test results available. " + stringOr(data, "summary", "Check coordination status.")
	case KindCriticalFailure:
		return stringOr(data, "message", "Critical failure detected. Immediate attention required.")
	case KindTestsPassed:
		return stringOr(data, "message", "All tests passed. Ready for next development task.")
	case KindCoordinationError:
		return "Coordination system error. Check system status."
	case KindPostTool:
		return stringOr(data, "message", "Tool operation completed.")
	}
	return "Coordination update: " + kind
}

// ParseData interprets command-line arguments as notification data: a JSON
// object when args is a single valid one, otherwise the arguments joined as
// the message.
func ParseData(args []string) map[string]any {
	if len(args) == 0 {
		return map[string]any{}
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(args[0]), &data); err == nil && data != nil {
		return data
	}
	return map[string]any{"message": strings.Join(args, " ")}
}

func stringOr(data map[string]any, key, fallback string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/handoff/internal/eventlog"
	"github.com/Iron-Ham/handoff/internal/store"
	"github.com/Iron-Ham/handoff/internal/transcript"
)

// hookInput is the subset of the end-of-session hook payload handoff reads.
type hookInput struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	StopHookActive bool   `json:"stop_hook_active"`
}

func (a *app) handoffCmd() *cobra.Command {
	var sessionType string
	cmd := &cobra.Command{
		Use:   "handoff",
		Short: "Hand a finished coding session over to the testing session",
		Long: `Read an end-of-session hook payload (a JSON object) from stdin.

For a coding session whose transcript tail talks about testing, a test plan
is derived from the transcript and the testing session is signalled with
{"type": "new_test_plan", "priority": "high", "plan_file": <path>}.
The raw payload is always appended to the handoff event log.

Problems are reported as warnings; the command exits zero so that it never
blocks the calling hook.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			errOut := cmd.ErrOrStderr()

			raw, err := io.ReadAll(a.stdin)
			if err != nil {
				a.warn(errOut, "could not read hook input: %v", err)
				return nil
			}
			var data map[string]any
			if err := json.Unmarshal(raw, &data); err != nil || data == nil {
				a.warn(errOut, "hook input is not a JSON object")
				return nil
			}
			var in hookInput
			_ = json.Unmarshal(raw, &in)

			a.logger = a.logger.WithSessionType(sessionType)
			a.logger.Info("handoff", "session_id", in.SessionID)

			if sessionType == "coding" && in.TranscriptPath != "" {
				a.handOffPlan(cmd, in.TranscriptPath)
			}

			if a.events != nil {
				data["session_type"] = sessionType
				if err := a.events.Append(eventlog.HandoffLog, eventlog.Entry{Kind: "handoff", Data: data}); err != nil {
					a.warn(errOut, "could not append to event log: %v", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionType, "session-type", "coding", "type of the session that is ending: coding or testing")
	return cmd
}

// handOffPlan derives a plan from the transcript and signals the testing
// session about it.
func (a *app) handOffPlan(cmd *cobra.Command, transcriptPath string) {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	fields, ok := transcript.ExtractTestPlan(transcriptPath, time.Now())
	if !ok {
		a.logger.Debug("no test plan in transcript", "path", transcriptPath)
		return
	}

	b := a.broker(cmd)
	planFile, err := b.CreateTestPlan(fields)
	if err != nil {
		a.warn(errOut, "could not write test plan: %v", err)
		return
	}
	err = b.SendSignal("testing", store.Payload{
		"type":      "new_test_plan",
		"priority":  "high",
		"plan_file": planFile,
	})
	if err != nil {
		a.warn(errOut, "could not signal testing session: %v", err)
		return
	}
	_, _ = fmt.Fprintf(out, "Coordination signal sent: testing (%s)\n", planFile)
}

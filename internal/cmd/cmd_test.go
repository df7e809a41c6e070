package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/handoff/internal/errors"
	"github.com/Iron-Ham/handoff/internal/eventlog"
	"github.com/Iron-Ham/handoff/internal/testutil"
)

type cmdResult struct {
	stdout string
	stderr string
	err    error
}

// executeCommand runs a fresh command tree against root with args and
// returns captured output.
func executeCommand(t *testing.T, root, stdin string, args ...string) cmdResult {
	t.Helper()
	a := &app{
		v:          viper.New(),
		stdin:      strings.NewReader(stdin),
		isTerminal: func(io.Writer) bool { return false },
	}
	cmd := a.rootCmd()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--root", root}, args...))
	err := cmd.Execute()
	return cmdResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

// setupTestEnvironment isolates the user config and returns a project root.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HANDOFF_COORDINATION_SENDER", "tester")
	return testutil.SetupProjectRoot(t)
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "handoff", cmd.Use)

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"task", "plan", "result", "signal", "status", "cleanup", "handoff", "notify", "config"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, name := range []string{"config", "root"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing global flag --%s", name)
	}
}

func TestSelfTest(t *testing.T) {
	root := setupTestEnvironment(t)

	res := executeCommand(t, root, "")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Test plan written: ")
	assert.Contains(t, res.stdout, "Signal sent to testing session")
	assert.Contains(t, res.stdout, `"outstanding_signals": [`)
	assert.Contains(t, res.stderr, "Test plan ready for execution. Priority: high")

	sig := testutil.ReadJSONObject(t, filepath.Join(root, ".coordination", "testing_signal.json"))
	data := sig["data"].(map[string]any)
	assert.Equal(t, "new_test_plan", data["type"])
	assert.Equal(t, "tester", sig["sender"])

	plan := testutil.ReadJSONObject(t, data["plan_file"].(string))
	assert.Equal(t, "AI Chat System", plan["feature"])
	assert.Equal(t, "pending", plan["status"])

	entries, err := eventlog.New(filepath.Join(root, eventlog.DefaultDir)).Read(eventlog.BrokerLog)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "plan.created", entries[0].Kind)
	assert.Equal(t, "signal.sent", entries[1].Kind)
}

func TestSelfTest_ExitsZeroOnFailure(t *testing.T) {
	root := setupTestEnvironment(t)
	// A regular file where the coordination directory belongs makes every
	// write fail.
	testutil.WriteFile(t, filepath.Join(root, ".coordination"), "not a directory")

	res := executeCommand(t, root, "")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Warning: could not write test plan")
	assert.Contains(t, res.stderr, "Warning: could not signal testing session")
}

func TestTaskCommands(t *testing.T) {
	root := setupTestEnvironment(t)

	res := executeCommand(t, root, "", "task", "add", "testing", `{"feature": "login"}`)
	require.NoError(t, res.err)
	id := strings.TrimSpace(res.stdout)
	assert.True(t, strings.HasPrefix(id, "testing_"), "id = %q", id)

	res = executeCommand(t, root, "", "task", "list", "testing")
	require.NoError(t, res.err)
	tasks := decodeJSON[[]map[string]any](t, res.stdout)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0]["id"])
	assert.Equal(t, "login", tasks[0]["task"].(map[string]any)["feature"])

	res = executeCommand(t, root, "", "task", "complete", "testing", id)
	require.NoError(t, res.err)

	res = executeCommand(t, root, "", "task", "complete", "testing", id)
	assert.Error(t, res.err, "completing twice should fail")

	res = executeCommand(t, root, "", "task", "list", "testing")
	require.NoError(t, res.err)
	assert.Empty(t, decodeJSON[[]map[string]any](t, res.stdout))

	res = executeCommand(t, root, "", "task", "list", "testing", "--all")
	require.NoError(t, res.err)
	all := decodeJSON[[]map[string]any](t, res.stdout)
	require.Len(t, all, 1)
	assert.Equal(t, "completed", all[0]["status"])
}

func TestTaskAdd_NonObjectPayloads(t *testing.T) {
	root := setupTestEnvironment(t)

	for _, payload := range []string{`{"feature": "login"}`, `"run the smoke suite"`, `[1, 2]`, `7`} {
		res := executeCommand(t, root, "", "task", "add", "testing", payload)
		require.NoError(t, res.err, "task add %s", payload)
	}

	res := executeCommand(t, root, "", "task", "list", "testing")
	require.NoError(t, res.err)
	tasks := decodeJSON[[]map[string]any](t, res.stdout)
	require.Len(t, tasks, 4)
	assert.Equal(t, "run the smoke suite", tasks[1]["task"])
	assert.Equal(t, []any{float64(1), float64(2)}, tasks[2]["task"])
	assert.Equal(t, float64(7), tasks[3]["task"])
}

func TestTaskAdd_RejectsBadInput(t *testing.T) {
	root := setupTestEnvironment(t)

	tests := []struct {
		name string
		args []string
	}{
		{"payload not json", []string{"task", "add", "testing", `{oops`}},
		{"session type with slash", []string{"task", "add", "a/b", `{}`}},
		{"missing payload", []string{"task", "add", "testing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := executeCommand(t, root, "", tt.args...)
			assert.Error(t, res.err)
		})
	}
}

func TestPlanCommands(t *testing.T) {
	root := setupTestEnvironment(t)

	res := executeCommand(t, root, "", "plan", "create", `{"feature": "search", "status": "ignored"}`)
	require.NoError(t, res.err)
	path := strings.TrimSpace(res.stdout)
	assert.FileExists(t, path)

	res = executeCommand(t, root, "", "plan", "list", "--status", "pending")
	require.NoError(t, res.err)
	plans := decodeJSON[[]map[string]any](t, res.stdout)
	require.Len(t, plans, 1)
	assert.Equal(t, "search", plans[0]["feature"])
	assert.Equal(t, "pending", plans[0]["status"])
	assert.Equal(t, path, plans[0]["file"])

	res = executeCommand(t, root, "", "plan", "show", path)
	require.NoError(t, res.err)
	shown := decodeJSON[map[string]any](t, res.stdout)
	assert.Equal(t, "search", shown["feature"])
	assert.Equal(t, path, shown["file"])

	res = executeCommand(t, root, "", "plan", "show", filepath.Join(root, "missing.json"))
	assert.ErrorContains(t, res.err, "no readable plan")

	res = executeCommand(t, root, "", "plan", "status", path, "in_progress")
	require.NoError(t, res.err)

	res = executeCommand(t, root, "", "plan", "list", "--status", "pending")
	require.NoError(t, res.err)
	assert.Empty(t, decodeJSON[[]map[string]any](t, res.stdout))

	doc := testutil.ReadJSONObject(t, path)
	assert.Equal(t, "in_progress", doc["status"])
	assert.NotEmpty(t, doc["started_at"])

	res = executeCommand(t, root, "", "plan", "status", path, "done")
	assert.ErrorContains(t, res.err, "invalid status")

	res = executeCommand(t, root, "", "plan", "status", filepath.Join(root, "missing.json"), "completed")
	assert.Error(t, res.err)

	res = executeCommand(t, root, "", "plan", "list", "--status", "bogus")
	assert.Error(t, res.err)
}

func TestResultCommands(t *testing.T) {
	root := setupTestEnvironment(t)

	res := executeCommand(t, root, "", "result", "record", "--plan-id", "plan_1", `{"passed": 3, "failed": 2, "summary": "two broken"}`)
	require.NoError(t, res.err)
	assert.FileExists(t, strings.TrimSpace(res.stdout))
	assert.Contains(t, res.stderr, "Critical test failures detected: two broken")
	assert.Contains(t, res.stderr, "(Priority: critical)")

	res = executeCommand(t, root, "", "result", "record", `{"passed": 1}`)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Test results available. Check coordination status.")

	res = executeCommand(t, root, "", "result", "list", "--plan-id", "plan_1")
	require.NoError(t, res.err)
	results := decodeJSON[[]map[string]any](t, res.stdout)
	require.Len(t, results, 1)
	assert.Equal(t, "plan_1", results[0]["plan_id"])

	res = executeCommand(t, root, "", "result", "list")
	require.NoError(t, res.err)
	all := decodeJSON[[]map[string]any](t, res.stdout)
	require.Len(t, all, 2)
	assert.Nil(t, all[1]["plan_id"])
}

func TestSignalCommands(t *testing.T) {
	root := setupTestEnvironment(t)

	res := executeCommand(t, root, "", "signal", "send", "coding", `{"type": "results_ready"}`)
	require.NoError(t, res.err)

	res = executeCommand(t, root, "", "signal", "peek", "coding")
	require.NoError(t, res.err)
	assert.Equal(t, "tester", decodeJSON[map[string]any](t, res.stdout)["sender"])

	res = executeCommand(t, root, "", "signal", "receive", "coding")
	require.NoError(t, res.err)
	sig := decodeJSON[map[string]any](t, res.stdout)
	assert.Equal(t, "tester", sig["sender"])
	assert.Equal(t, "results_ready", sig["data"].(map[string]any)["type"])

	res = executeCommand(t, root, "", "signal", "receive", "coding")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, errors.ErrSignalAbsent))

	res = executeCommand(t, root, "", "signal", "send", "coding")
	require.NoError(t, res.err)
	res = executeCommand(t, root, "", "signal", "receive", "coding")
	require.NoError(t, res.err)
	assert.Empty(t, decodeJSON[map[string]any](t, res.stdout)["data"])

	res = executeCommand(t, root, "", "signal", "peek", "coding")
	assert.True(t, errors.Is(res.err, errors.ErrSignalAbsent))

	res = executeCommand(t, root, "", "signal", "send", "coding", `"plan ready"`)
	require.NoError(t, res.err)
	res = executeCommand(t, root, "", "signal", "receive", "coding")
	require.NoError(t, res.err)
	assert.Equal(t, "plan ready", decodeJSON[map[string]any](t, res.stdout)["data"])
}

func TestSignalWatch(t *testing.T) {
	root := setupTestEnvironment(t)

	t.Run("outstanding signal returns at once", func(t *testing.T) {
		require.NoError(t, executeCommand(t, root, "", "signal", "send", "testing", `{"n": 1}`).err)

		res := executeCommand(t, root, "", "signal", "watch", "testing", "--timeout", "5s", "--poll-interval", "20ms")
		require.NoError(t, res.err)
		sig := decodeJSON[map[string]any](t, res.stdout)
		assert.Equal(t, float64(1), sig["data"].(map[string]any)["n"])
	})

	t.Run("timeout", func(t *testing.T) {
		start := time.Now()
		res := executeCommand(t, root, "", "signal", "watch", "testing", "--timeout", "100ms", "--poll-interval", "20ms")
		require.Error(t, res.err)
		assert.True(t, errors.Is(res.err, errors.ErrSignalAbsent))
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("follow until timeout", func(t *testing.T) {
		require.NoError(t, executeCommand(t, root, "", "signal", "send", "testing", `{"n": 2}`).err)

		res := executeCommand(t, root, "", "signal", "watch", "testing", "--follow", "--timeout", "200ms", "--poll-interval", "20ms")
		require.NoError(t, res.err)
		lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], `"n":2`)
	})
}

func TestStatusFormats(t *testing.T) {
	root := setupTestEnvironment(t)
	require.NoError(t, executeCommand(t, root, "", "task", "add", "coding", `{}`).err)
	require.NoError(t, executeCommand(t, root, "", "signal", "send", "testing").err)

	res := executeCommand(t, root, "", "status", "--format", "json")
	require.NoError(t, res.err)
	st := decodeJSON[map[string]any](t, res.stdout)
	assert.Equal(t, float64(1), st["pending_tasks"].(map[string]any)["coding"])
	assert.Equal(t, []any{"testing"}, st["outstanding_signals"])
	assert.Equal(t, filepath.Join(root, ".coordination"), st["coordination_dir"])
	assert.Len(t, st, 6)

	res = executeCommand(t, root, "", "status", "--format", "yaml")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "pending_test_plans: 0")
	assert.Contains(t, res.stdout, "- testing")

	res = executeCommand(t, root, "", "status")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Coordination status")
	assert.Contains(t, res.stdout, "coding")
	assert.Contains(t, res.stdout, "testing (from tester)")
	assert.NotContains(t, res.stdout, "\x1b[", "text output should be unstyled off a terminal")

	res = executeCommand(t, root, "", "status", "--format", "xml")
	assert.ErrorContains(t, res.err, "invalid format")
}

func TestStatus_DoesNotCreateDirectory(t *testing.T) {
	root := setupTestEnvironment(t)

	res := executeCommand(t, root, "", "status", "--format", "json")
	require.NoError(t, res.err)
	assert.NoDirExists(t, filepath.Join(root, ".coordination"))
}

func TestCleanupCommand(t *testing.T) {
	root := setupTestEnvironment(t)

	res := executeCommand(t, root, "", "plan", "create", `{"n": "old"}`)
	require.NoError(t, res.err)
	oldPlan := strings.TrimSpace(res.stdout)
	testutil.AgeFile(t, oldPlan, 10*24*time.Hour)

	res = executeCommand(t, root, "", "plan", "create", `{"n": "new"}`)
	require.NoError(t, res.err)
	newPlan := strings.TrimSpace(res.stdout)

	res = executeCommand(t, root, "", "cleanup", "--dry-run")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "would remove "+oldPlan)
	assert.FileExists(t, oldPlan)

	res = executeCommand(t, root, "", "cleanup", "--days", "30")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Removed 0 file(s)")

	res = executeCommand(t, root, "", "cleanup")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Removed 1 file(s) older than 7 day(s)")
	assert.NoFileExists(t, oldPlan)
	assert.FileExists(t, newPlan)

	res = executeCommand(t, root, "", "cleanup", "--days", "-1")
	assert.Error(t, res.err)
}

func TestCleanupCommand_StaleTempFiles(t *testing.T) {
	root := setupTestEnvironment(t)
	stale := filepath.Join(root, ".coordination", ".testing_signal.json.1a2b3c4d.tmp")
	testutil.WriteFile(t, stale, `{"sender": "crashed"}`)
	testutil.AgeFile(t, stale, 10*24*time.Hour)

	res := executeCommand(t, root, "", "cleanup", "--dry-run")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "would remove "+stale+" (stale temporary file)")
	assert.FileExists(t, stale)

	res = executeCommand(t, root, "", "cleanup")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Removed 0 file(s)")
	assert.NoFileExists(t, stale)
}

func TestHandoffCommand(t *testing.T) {
	root := setupTestEnvironment(t)
	transcriptPath := filepath.Join(root, "transcript.jsonl")
	testutil.WriteFile(t, transcriptPath, `{"message": "Here is the test plan for login"}`+"\n"+
		`{"timestamp": "2026-01-01T00:00:00Z", "session_id": "s-1"}`+"\n")

	input := `{"session_id": "s-1", "transcript_path": "` + transcriptPath + `"}`
	res := executeCommand(t, root, input, "handoff", "--session-type", "coding")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Coordination signal sent: testing")

	sig := testutil.ReadJSONObject(t, filepath.Join(root, ".coordination", "testing_signal.json"))
	data := sig["data"].(map[string]any)
	assert.Equal(t, "new_test_plan", data["type"])
	assert.Equal(t, "high", data["priority"])

	plan := testutil.ReadJSONObject(t, data["plan_file"].(string))
	assert.Equal(t, "conversation_transcript", plan["source"])
	assert.Equal(t, "s-1", plan["session_id"])

	entries, err := eventlog.New(filepath.Join(root, eventlog.DefaultDir)).Read(eventlog.HandoffLog)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s-1", entries[0].Data["session_id"])
	assert.Equal(t, "coding", entries[0].Data["session_type"])
}

func TestHandoffCommand_NoPlan(t *testing.T) {
	tests := []struct {
		name        string
		sessionType string
		input       string
		wantWarning bool
	}{
		{"testing session", "testing", `{"session_id": "s"}`, false},
		{"no transcript", "coding", `{"session_id": "s"}`, false},
		{"missing transcript file", "coding", `{"transcript_path": "/nonexistent/t.jsonl"}`, false},
		{"malformed input", "coding", `not json`, true},
		{"empty input", "coding", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := setupTestEnvironment(t)

			res := executeCommand(t, root, tt.input, "handoff", "--session-type", tt.sessionType)
			require.NoError(t, res.err, "handoff must never fail the hook")
			assert.NoFileExists(t, filepath.Join(root, ".coordination", "testing_signal.json"))
			if tt.wantWarning {
				assert.Contains(t, res.stderr, "Warning:")
			}
		})
	}
}

func TestNotifyCommand(t *testing.T) {
	root := setupTestEnvironment(t)

	res := executeCommand(t, root, "", "notify", "critical_failure", `{"message": "db down.", "blocking": true}`)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "db down. This is blocking further development.")
	assert.Contains(t, res.stderr, "(Priority: critical)")
	assert.Contains(t, res.stderr, "\a")

	res = executeCommand(t, root, "", "notify", "custom_kind", "free", "text")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Coordination update: custom_kind")

	entries, err := eventlog.New(filepath.Join(root, eventlog.DefaultDir)).Read(eventlog.NotifyLog)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "critical_failure", entries[0].Kind)
}

func TestNotifyCommand_SinkFromConfig(t *testing.T) {
	root := setupTestEnvironment(t)
	t.Setenv("HANDOFF_NOTIFY_SINK", "none")

	res := executeCommand(t, root, "", "notify", "tests_passed")
	require.NoError(t, res.err)
	assert.Empty(t, res.stderr)
}

func TestConfigShow(t *testing.T) {
	root := setupTestEnvironment(t)

	res := executeCommand(t, root, "", "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "dir_name: .coordination")
	assert.Contains(t, res.stdout, "retention_days: 7")
	assert.Contains(t, res.stdout, "sender: tester")
}

func TestConfig_Sources(t *testing.T) {
	t.Run("project file", func(t *testing.T) {
		root := setupTestEnvironment(t)
		testutil.WriteFile(t, filepath.Join(root, ".handoff.yaml"), "coordination:\n  dir_name: .handoff-data\n")

		res := executeCommand(t, root, "", "signal", "send", "testing")
		require.NoError(t, res.err)
		assert.FileExists(t, filepath.Join(root, ".handoff-data", "testing_signal.json"))
	})

	t.Run("environment", func(t *testing.T) {
		root := setupTestEnvironment(t)
		t.Setenv("HANDOFF_COORDINATION_UNIQUE_IDS", "false")

		res := executeCommand(t, root, "", "task", "add", "coding", `{}`)
		require.NoError(t, res.err)
		id := strings.TrimSpace(res.stdout)
		assert.Regexp(t, `^coding_\d+$`, id)
	})

	t.Run("explicit file", func(t *testing.T) {
		root := setupTestEnvironment(t)
		cfgPath := filepath.Join(t.TempDir(), "custom.yaml")
		testutil.WriteFile(t, cfgPath, "notify:\n  sink: none\n")

		res := executeCommand(t, root, "", "--config", cfgPath, "notify", "tests_passed")
		require.NoError(t, res.err)
		assert.Empty(t, res.stderr)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		root := setupTestEnvironment(t)
		res := executeCommand(t, root, "", "--config", filepath.Join(root, "nope.yaml"), "status")
		assert.ErrorContains(t, res.err, "failed to read config")
	})

	t.Run("invalid value", func(t *testing.T) {
		root := setupTestEnvironment(t)
		t.Setenv("HANDOFF_NOTIFY_SINK", "pager")
		res := executeCommand(t, root, "", "status")
		assert.ErrorContains(t, res.err, "invalid configuration")
	})
}

func TestConfigInit(t *testing.T) {
	root := setupTestEnvironment(t)

	res := executeCommand(t, root, "", "config", "init")
	require.NoError(t, res.err)
	path := strings.TrimPrefix(strings.TrimSpace(res.stdout), "Created config file: ")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "unique_ids: true")

	res = executeCommand(t, root, "", "config", "init")
	assert.ErrorContains(t, res.err, "already exists")

	res = executeCommand(t, root, "", "config", "path")
	require.NoError(t, res.err)
	assert.Equal(t, path, strings.TrimSpace(res.stdout))
}

func TestLoggingEnabled(t *testing.T) {
	root := setupTestEnvironment(t)
	t.Setenv("HANDOFF_LOGGING_ENABLED", "true")
	t.Setenv("HANDOFF_LOGGING_LEVEL", "debug")

	require.NoError(t, executeCommand(t, root, "", "signal", "send", "testing").err)
	logPath := filepath.Join(root, ".coordination", "logs", "handoff.log")
	assert.FileExists(t, logPath)

	res := executeCommand(t, root, `{"session_id": "s-9"}`, "handoff", "--session-type", "testing")
	require.NoError(t, res.err)
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session_type":"testing"`)
	assert.Contains(t, string(data), `"session_id":"s-9"`)
}

func TestListTextFormat(t *testing.T) {
	root := setupTestEnvironment(t)
	long := strings.Repeat("very long feature name ", 10)

	require.NoError(t, executeCommand(t, root, "", "plan", "create", `{"feature": "`+long+`"}`).err)
	require.NoError(t, executeCommand(t, root, "", "result", "record", `{"summary": "all green"}`).err)

	res := executeCommand(t, root, "", "plan", "list", "-o", "text")
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "pending")
	assert.True(t, strings.HasSuffix(lines[1], "..."), "long summaries are truncated: %q", lines[1])

	res = executeCommand(t, root, "", "result", "list", "-o", "text")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "all green")
	assert.Contains(t, res.stdout, " - ")

	res = executeCommand(t, root, "", "plan", "list", "-o", "csv")
	assert.ErrorContains(t, res.err, "invalid format")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"anything", 3, "..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.width), "truncate(%q, %d)", tt.in, tt.width)
	}

	styled := lipgloss.NewStyle().Bold(true).Render("styled text that is long")
	assert.LessOrEqual(t, lipgloss.Width(truncate(styled, 10)), 10)
}

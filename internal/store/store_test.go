package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/handoff/internal/errors"
)

func TestOpen_DefaultDirName(t *testing.T) {
	root := t.TempDir()
	s := Open(root, "")

	if want := filepath.Join(root, DefaultDirName); s.Dir() != want {
		t.Errorf("Dir() = %q, want %q", s.Dir(), want)
	}
	if _, err := os.Stat(s.Dir()); !os.IsNotExist(err) {
		t.Error("Open should not create the directory eagerly")
	}
	if got := s.Path(TasksDir, "x.json"); got != filepath.Join(root, DefaultDirName, TasksDir, "x.json") {
		t.Errorf("Path() = %q", got)
	}
}

func TestWriteJSON_CreatesParentsAndIndents(t *testing.T) {
	s := New(t.TempDir())
	path := s.Path(PlansDir, "plan_1.json")

	doc := map[string]any{"feature": "<X>", "tests": []string{"a", "b"}}
	if err := s.WriteJSON(path, doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"feature\": \"<X>\"") {
		t.Errorf("expected two-space indentation without HTML escaping, got:\n%s", data)
	}
	if strings.HasSuffix(string(data), "\n") {
		t.Error("document should not end with a trailing newline")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the document in the directory, found %d entries", len(entries))
	}
}

func TestWriteJSON_ReplacesExisting(t *testing.T) {
	s := New(t.TempDir())
	path := s.Path("testing_signal.json")

	for _, v := range []string{"first", "second"} {
		if err := s.WriteJSON(path, map[string]string{"v": v}); err != nil {
			t.Fatalf("WriteJSON(%s): %v", v, err)
		}
	}

	var got map[string]string
	if err := s.ReadJSON(path, &got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got["v"] != "second" {
		t.Errorf("v = %q, want second", got["v"])
	}
}

func TestReadJSON_Errors(t *testing.T) {
	s := New(t.TempDir())

	var v map[string]any
	err := s.ReadJSON(s.Path("missing.json"), &v)
	if !errors.Is(err, errors.ErrDocumentNotFound) {
		t.Errorf("missing document: err = %v, want ErrDocumentNotFound", err)
	}

	tests := []struct {
		name    string
		content string
	}{
		{"garbage", "{not json"},
		{"truncated", `{"a": 1`},
		{"trailing data", `{"a": 1} {"b": 2}`},
		{"wrong shape", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := s.Path(tt.name + ".json")
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			var v map[string]any
			err := s.ReadJSON(path, &v)
			if !errors.Is(err, errors.ErrDocumentCorrupt) {
				t.Errorf("err = %v, want ErrDocumentCorrupt", err)
			}
			if errors.IsAbsent(err) {
				t.Error("corrupt documents should not classify as absent")
			}
		})
	}
}

func TestReadJSON_PreservesIntegers(t *testing.T) {
	s := New(t.TempDir())
	path := s.Path("n.json")
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"n": 9007199254740993}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var p Payload
	if err := s.ReadJSON(path, &p); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if p["n"] != json.Number("9007199254740993") {
		t.Errorf("n = %#v, want exact json.Number", p["n"])
	}
}

func TestList(t *testing.T) {
	s := New(t.TempDir())
	dir := s.Path(TasksDir)

	if paths, err := s.List(dir, "*_queue.json"); err != nil || len(paths) != 0 {
		t.Fatalf("List on missing dir = %v, %v; want empty, nil", paths, err)
	}

	for _, name := range []string{"testing_queue.json", "coding_queue.json", "notes.txt", "coding_queue.json.lock", ".coding_queue.json.123.tmp"} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub_queue.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := s.List(dir, "*_queue.json")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{filepath.Join(dir, "coding_queue.json"), filepath.Join(dir, "testing_queue.json")}
	if len(paths) != len(want) {
		t.Fatalf("List = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	if _, err := s.List(dir, "[unclosed"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("bad pattern: err = %v, want ErrInvalidInput", err)
	}

	temps, err := s.TempFiles(dir)
	if err != nil {
		t.Fatalf("TempFiles: %v", err)
	}
	if len(temps) != 1 || temps[0] != filepath.Join(dir, ".coding_queue.json.123.tmp") {
		t.Errorf("TempFiles = %v, want only the temp file", temps)
	}
	if temps, err := s.TempFiles(s.Path("missing")); err != nil || len(temps) != 0 {
		t.Errorf("TempFiles on missing dir = %v, %v", temps, err)
	}
}

func TestRemove(t *testing.T) {
	s := New(t.TempDir())
	path := s.Path("x.json")

	if err := s.Remove(path); err != nil {
		t.Errorf("Remove of missing document should succeed, got %v", err)
	}
	if err := s.WriteJSON(path, map[string]int{}); err != nil {
		t.Fatal(err)
	}
	if !s.Exists(path) {
		t.Fatal("document should exist after write")
	}
	if err := s.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Exists(path) {
		t.Error("document should be gone after Remove")
	}
}

func TestUpdate_SerializesWithinProcess(t *testing.T) {
	for _, locking := range []bool{false, true} {
		t.Run(map[bool]string{false: "mutex", true: "flock"}[locking], func(t *testing.T) {
			s := New(t.TempDir(), WithLocking(locking))
			path := s.Path("counter.json")

			const n = 20
			var wg sync.WaitGroup
			for range n {
				wg.Go(func() {
					err := s.Update(path, func() error {
						var count int
						if err := s.ReadJSON(path, &count); err != nil && !errors.IsAbsent(err) {
							return err
						}
						return s.WriteJSON(path, count+1)
					})
					if err != nil {
						t.Errorf("Update: %v", err)
					}
				})
			}
			wg.Wait()

			var count int
			if err := s.ReadJSON(path, &count); err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if count != n {
				t.Errorf("count = %d, want %d", count, n)
			}
		})
	}
}

func TestNewID(t *testing.T) {
	fixed := time.Unix(1700000000, 0)

	legacy := New(t.TempDir(), WithUniqueIDs(false), WithClock(func() time.Time { return fixed }))
	if got := legacy.NewID("plan"); got != "plan_1700000000" {
		t.Errorf("legacy NewID = %q, want plan_1700000000", got)
	}
	if legacy.NewID("plan") != legacy.NewID("plan") {
		t.Error("legacy ids in the same second should collide")
	}

	unique := New(t.TempDir(), WithClock(func() time.Time { return fixed }))
	a, b := unique.NewID("plan"), unique.NewID("plan")
	if a == b {
		t.Errorf("unique ids collided: %q", a)
	}
	if !strings.HasPrefix(a, "plan_1700000000_") || len(a) != len("plan_1700000000_")+8 {
		t.Errorf("unique id %q has unexpected shape", a)
	}
}

func TestFormatTime_SortsChronologically(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 5*3600))
	earlier := FormatTime(base)
	later := FormatTime(base.Add(1500 * time.Microsecond))

	if !strings.HasSuffix(earlier, "Z") {
		t.Errorf("timestamps should be UTC, got %q", earlier)
	}
	if len(earlier) != len(later) {
		t.Errorf("timestamps should be fixed width: %q vs %q", earlier, later)
	}
	if !(earlier < later) {
		t.Errorf("%q should sort before %q", earlier, later)
	}
}

func TestClaim(t *testing.T) {
	s := New(t.TempDir())
	path := s.Path("testing_signal.json")
	if err := s.WriteJSON(path, map[string]string{"k": "v"}); err != nil {
		t.Fatal(err)
	}

	claimed, err := s.Claim(path)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if s.Exists(path) {
		t.Error("original path should be gone after Claim")
	}
	if !isTempName(filepath.Base(claimed)) {
		t.Errorf("claimed name %q should be hidden from List", claimed)
	}

	var got map[string]string
	if err := s.ReadJSON(claimed, &got); err != nil || got["k"] != "v" {
		t.Errorf("claimed document = %v, %v", got, err)
	}

	if _, err := s.Claim(path); !errors.Is(err, errors.ErrDocumentNotFound) {
		t.Errorf("second Claim err = %v, want ErrDocumentNotFound", err)
	}
}

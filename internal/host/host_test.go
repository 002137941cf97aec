package host

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"praxis/internal/process"
	"praxis/internal/runspace"
	"praxis/internal/schema"
	"praxis/internal/task"
)

var testInfo = process.Info{ID: "fixture", Name: "Fixture", Description: "test", Version: "1.0.0"}

func echoDef() *task.Def {
	return &task.Def{
		Name:         "echo",
		Agent:        "echo-agent",
		Instructions: "Echo the payload.",
		Output: schema.Object("echo result",
			schema.Field("value", schema.String("echoed value")),
		),
	}
}

func newTestHost(t *testing.T, results map[string][]map[string]any, opts ...Option) (*Host, *runspace.Run) {
	t.Helper()
	run := runspace.New(t.TempDir(), "fixture-20260301-090000-abcd1234")
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	h, err := New(run, testInfo, NewScriptedExecutor(results), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h, run
}

func TestTaskPersistsInputAndResult(t *testing.T) {
	h, run := newTestHost(t, map[string][]map[string]any{
		"echo": {{"value": "hello"}},
	})
	result, err := h.Task(context.Background(), echoDef(), map[string]any{"value": "hello"})
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if result["value"] != "hello" {
		t.Fatalf("unexpected result: %v", result)
	}

	entries, err := os.ReadDir(run.TasksDir())
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one effect dir, got %v (%v)", entries, err)
	}
	effectID := entries[0].Name()
	if !strings.HasPrefix(effectID, "echo-") {
		t.Fatalf("unexpected effect id: %s", effectID)
	}

	inputData, err := os.ReadFile(run.TaskInputPath(effectID))
	if err != nil {
		t.Fatalf("read input.json: %v", err)
	}
	var input map[string]any
	if err := json.Unmarshal(inputData, &input); err != nil {
		t.Fatalf("decode input.json: %v", err)
	}
	if input["task"] != "echo" || input["agent"] != "echo-agent" {
		t.Fatalf("input.json missing invocation fields: %v", input)
	}

	resultData, err := os.ReadFile(run.TaskResultPath(effectID))
	if err != nil {
		t.Fatalf("read result.json: %v", err)
	}
	var persisted map[string]any
	if err := json.Unmarshal(resultData, &persisted); err != nil {
		t.Fatalf("decode result.json: %v", err)
	}
	if _, ok := persisted["_praxis"]; !ok {
		t.Fatalf("result.json missing provenance block: %v", persisted)
	}
}

func TestTaskRejectsSchemaViolation(t *testing.T) {
	h, _ := newTestHost(t, map[string][]map[string]any{
		"echo": {{"value": 42}},
	})
	_, err := h.Task(context.Background(), echoDef(), nil)
	if err == nil || !strings.Contains(err.Error(), "output schema") {
		t.Fatalf("expected schema violation, got %v", err)
	}
}

func TestTaskRejectsUnserializableArgs(t *testing.T) {
	h, _ := newTestHost(t, nil)
	_, err := h.Task(context.Background(), echoDef(), map[string]any{"fn": func() {}})
	if err == nil {
		t.Fatal("expected error for unserializable args")
	}
}

func TestTaskRepairsMojibakeResults(t *testing.T) {
	h, _ := newTestHost(t, map[string][]map[string]any{
		"echo": {{"value": "a â€” b"}},
	})
	result, err := h.Task(context.Background(), echoDef(), nil)
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if result["value"] != "a - b" {
		t.Fatalf("expected repaired value, got %q", result["value"])
	}
}

func TestParallelTasksPreservesOrder(t *testing.T) {
	h, _ := newTestHost(t, map[string][]map[string]any{
		"echo": {{"value": "first"}, {"value": "second"}, {"value": "third"}},
	}, WithMaxParallel(2))
	def := echoDef()
	calls := []process.TaskCall{
		{Def: def, Args: map[string]any{"n": 1}},
		{Def: def, Args: map[string]any{"n": 2}},
		{Def: def, Args: map[string]any{"n": 3}},
	}
	results, err := h.ParallelTasks(context.Background(), calls)
	if err != nil {
		t.Fatalf("ParallelTasks: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// The scripted queue is popped under a lock, so the set of values is
	// fixed even though arrival order is not.
	seen := map[string]bool{}
	for _, result := range results {
		value, _ := result["value"].(string)
		seen[value] = true
	}
	for _, want := range []string{"first", "second", "third"} {
		if !seen[want] {
			t.Fatalf("missing result %q in %v", want, results)
		}
	}
}

func TestParallelTasksFailsFast(t *testing.T) {
	h, _ := newTestHost(t, map[string][]map[string]any{
		"echo": {{"value": "only"}},
	}, WithMaxParallel(1))
	def := echoDef()
	calls := []process.TaskCall{
		{Def: def, Args: nil},
		{Def: def, Args: nil},
		{Def: def, Args: nil},
	}
	// The second dispatch exhausts the scripted queue.
	if _, err := h.ParallelTasks(context.Background(), calls); err == nil {
		t.Fatal("expected error when the queue runs dry")
	}
}

func TestBreakpointMarkerLifecycle(t *testing.T) {
	var sawMarker bool
	var run *runspace.Run
	approver := ApproverFunc(func(ctx context.Context, runID string, bp process.Breakpoint) error {
		sawMarker = run.AwaitingReview()
		return nil
	})
	h, r := newTestHost(t, nil, WithApprover(approver))
	run = r
	err := h.Breakpoint(context.Background(), process.Breakpoint{Title: "Check", Question: "Go on?"})
	if err != nil {
		t.Fatalf("Breakpoint: %v", err)
	}
	if !sawMarker {
		t.Fatal("awaiting-review marker absent while approver deliberated")
	}
	if run.AwaitingReview() {
		t.Fatal("awaiting-review marker not cleared")
	}
}

func TestBreakpointRejection(t *testing.T) {
	h, run := newTestHost(t, nil, WithApprover(DenyApprover()))
	err := h.Breakpoint(context.Background(), process.Breakpoint{Title: "Check", Question: "Go on?"})
	if !errors.Is(err, process.ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if run.AwaitingReview() {
		t.Fatal("awaiting-review marker not cleared after rejection")
	}
}

func TestBreakpointRequiresTitleAndQuestion(t *testing.T) {
	h, _ := newTestHost(t, nil)
	if err := h.Breakpoint(context.Background(), process.Breakpoint{Question: "?"}); err == nil {
		t.Fatal("expected error for missing title")
	}
}

type recordedCall struct {
	effect string
	status string
}

type memoryRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *memoryRecorder) TaskStarted(inv *task.Invocation, at time.Time) {}

func (r *memoryRecorder) TaskFinished(inv *task.Invocation, status string, at time.Time, runErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{effect: inv.EffectID, status: status})
}

func TestRecorderReceivesLifecycle(t *testing.T) {
	recorder := &memoryRecorder{}
	h, _ := newTestHost(t, map[string][]map[string]any{
		"echo": {{"value": "ok"}},
	}, WithRecorder(recorder))
	if _, err := h.Task(context.Background(), echoDef(), nil); err != nil {
		t.Fatalf("Task: %v", err)
	}
	if _, err := h.Task(context.Background(), echoDef(), nil); err == nil {
		t.Fatal("expected failure on exhausted queue")
	}
	if len(recorder.calls) != 2 {
		t.Fatalf("expected 2 records, got %+v", recorder.calls)
	}
	if recorder.calls[0].status != TaskCompleted || recorder.calls[1].status != TaskFailed {
		t.Fatalf("unexpected statuses: %+v", recorder.calls)
	}
}

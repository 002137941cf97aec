package argumentation

import (
	"context"
	"strings"
	"testing"

	"praxis/internal/contracts"
	"praxis/internal/process"
	"praxis/internal/process/processtest"
)

func scriptedHost() *processtest.Context {
	return processtest.New(map[string][]map[string]any{
		"extract-arguments": {{
			"arguments": []any{
				map[string]any{"id": "a1", "claim": "tariffs raise prices", "premises": []any{"import costs pass through"}, "stance": "con"},
				map[string]any{"id": "a2", "claim": "tariffs protect jobs", "premises": []any{"domestic demand shifts"}, "stance": "pro"},
			},
		}},
		"map-attacks": {{
			"attacks": []any{
				map[string]any{"from": "a1", "to": "a2", "kind": "undercut", "grounds": "price effects offset demand shift"},
			},
		}},
		"adjudicate": {{
			"accepted":  []any{"a1"},
			"rejected":  []any{"a2"},
			"undecided": []any{},
			"verdict":   "the con position prevails",
			"rationale": "a2 is defeated and undefended",
		}},
	})
}

func TestRunProducesVerdict(t *testing.T) {
	host := scriptedHost()
	report, err := New().Run(context.Background(), host, map[string]any{"topic": "tariffs"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success, got %+v", report)
	}
	want := []string{"extract-arguments", "map-attacks", "adjudicate"}
	got := host.TaskNames()
	if len(got) != len(want) {
		t.Fatalf("unexpected dispatches: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dispatch %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if len(host.Breakpoints) != 1 {
		t.Fatalf("expected one review pause, got %d", len(host.Breakpoints))
	}
	if !strings.Contains(host.Breakpoints[0].Question, "1 attacks") {
		t.Fatalf("review question missing counts: %q", host.Breakpoints[0].Question)
	}
	if report.Fields["verdict"] != "the con position prevails" {
		t.Fatalf("unexpected verdict field: %v", report.Fields["verdict"])
	}
	if errs := contracts.ValidateReport(New(), report); len(errs) != 0 {
		t.Fatalf("report fields drift from declaration: %v", errs)
	}
}

func TestRunRequiresTopic(t *testing.T) {
	if _, err := New().Run(context.Background(), scriptedHost(), nil); err == nil {
		t.Fatal("expected error for missing topic")
	}
}

func TestRunShortCircuitsOnEmptyInventory(t *testing.T) {
	host := processtest.New(map[string][]map[string]any{
		"extract-arguments": {{"arguments": []any{}}},
	})
	report, err := New().Run(context.Background(), host, map[string]any{"topic": "tariffs"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Success {
		t.Fatalf("expected unsuccessful report, got %+v", report)
	}
	if len(host.Calls) != 1 {
		t.Fatalf("expected a single dispatch before the short-circuit, got %v", host.TaskNames())
	}
}

func TestRunStopsOnRejectedReview(t *testing.T) {
	host := scriptedHost()
	host.ReviewErr = process.ErrRejected
	report, err := New().Run(context.Background(), host, map[string]any{"topic": "tariffs"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Success {
		t.Fatalf("expected unsuccessful report after rejection, got %+v", report)
	}
	for _, name := range host.TaskNames() {
		if name == "adjudicate" {
			t.Fatal("adjudication ran despite rejected review")
		}
	}
}

func TestProcessPassesContractLint(t *testing.T) {
	if errs := contracts.ValidateProcess(New()); len(errs) != 0 {
		t.Fatalf("contract lint failed: %v", errs)
	}
}

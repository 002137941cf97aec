package host

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"praxis/internal/process"
)

type fixtureProcess struct {
	process.Base
	fail bool
}

func newFixtureProcess(fail bool) *fixtureProcess {
	p := &fixtureProcess{Base: process.NewBase(testInfo), fail: fail}
	p.SetTasks(echoDef())
	p.SetOutputs("value")
	return p
}

func (p *fixtureProcess) Run(ctx context.Context, host process.Context, inputs map[string]any) (process.Report, error) {
	if p.fail {
		return process.Report{}, fmt.Errorf("deliberate failure")
	}
	result, err := host.Task(ctx, echoDef(), map[string]any{"value": "hello"})
	if err != nil {
		return process.Report{}, err
	}
	return process.Report{
		Success: true,
		Summary: "echoed one value",
		Fields:  map[string]any{"value": result["value"]},
	}, nil
}

func TestRunProcessWritesRunArtifacts(t *testing.T) {
	h, run := newTestHost(t, map[string][]map[string]any{
		"echo": {{"value": "hello"}},
	})
	report, err := RunProcess(context.Background(), h, newFixtureProcess(false), nil)
	if err != nil {
		t.Fatalf("RunProcess: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success, got %+v", report)
	}
	if !run.Completed() {
		t.Fatal("completion marker missing")
	}
	if run.Failed() {
		t.Fatal("failure marker present on a successful run")
	}

	manifestData, err := os.ReadFile(run.ManifestPath())
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var manifest map[string]any
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if manifest["status"] != StatusCompleted || manifest["success"] != true {
		t.Fatalf("unexpected manifest: %v", manifest)
	}
	if manifest["tasks"] != float64(1) {
		t.Fatalf("unexpected task count: %v", manifest["tasks"])
	}
	if _, ok := manifest["_praxis"]; !ok {
		t.Fatal("manifest missing provenance block")
	}

	reportData, err := os.ReadFile(run.ReportPath())
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	text := string(reportData)
	if !strings.Contains(text, "# Fixture") || !strings.Contains(text, "## value") {
		t.Fatalf("report missing sections:\n%s", text)
	}
}

func TestRunProcessRecordsFailure(t *testing.T) {
	h, run := newTestHost(t, nil)
	_, err := RunProcess(context.Background(), h, newFixtureProcess(true), nil)
	if err == nil {
		t.Fatal("expected run error")
	}
	if !run.Failed() {
		t.Fatal("failure marker missing")
	}
	if run.Completed() {
		t.Fatal("completion marker present on a failed run")
	}
	manifestData, err := os.ReadFile(run.ManifestPath())
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var manifest map[string]any
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if manifest["status"] != StatusFailed {
		t.Fatalf("unexpected manifest status: %v", manifest["status"])
	}
	if manifest["error"] != "deliberate failure" {
		t.Fatalf("unexpected manifest error: %v", manifest["error"])
	}
}

func TestRunProcessLogsLifecycle(t *testing.T) {
	h, _ := newTestHost(t, map[string][]map[string]any{
		"echo": {{"value": "hello"}},
	})
	if _, err := RunProcess(context.Background(), h, newFixtureProcess(false), nil); err != nil {
		t.Fatalf("RunProcess: %v", err)
	}
	lines := h.Logbook().Tail(20)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "run fixture-20260301-090000-abcd1234 started") {
		t.Fatalf("logbook missing start line:\n%s", joined)
	}
	if !strings.Contains(joined, "completed") {
		t.Fatalf("logbook missing completion line:\n%s", joined)
	}
}

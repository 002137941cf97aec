package host

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"praxis/internal/config"
	"praxis/internal/process"
	"praxis/internal/store"
)

func newLaunchConfig(t *testing.T) *config.Config {
	t.Helper()
	projectDir := t.TempDir()
	if err := config.InitPraxisDir(projectDir); err != nil {
		t.Fatalf("init praxis dir: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestLaunchRunsProcessEndToEnd(t *testing.T) {
	cfg := newLaunchConfig(t)
	reg := process.NewRegistry()
	reg.MustRegister(testInfo.ID, func(process.Config) (process.Process, error) {
		return newFixtureProcess(false), nil
	})
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	outcome, err := Launch(context.Background(), LaunchSpec{
		Config:    cfg,
		Registry:  reg,
		ProcessID: testInfo.ID,
		Executor:  NewScriptedExecutor(map[string][]map[string]any{"echo": {{"value": "hello"}}}),
		Clock:     func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if outcome.Err != nil {
		t.Fatalf("run error: %v", outcome.Err)
	}
	if !outcome.Report.Success {
		t.Fatalf("expected success, got %+v", outcome.Report)
	}
	if !strings.HasPrefix(outcome.RunID, testInfo.ID+"-") {
		t.Fatalf("run ID should carry the process ID: %s", outcome.RunID)
	}
	manifest := filepath.Join(cfg.RunsDir(), outcome.RunID, "run.json")
	if _, err := os.Stat(manifest); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
}

func TestLaunchRecordsRunHistory(t *testing.T) {
	cfg := newLaunchConfig(t)
	history, err := store.Open(cfg.HistoryDBPath())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer history.Close()

	reg := process.NewRegistry()
	reg.MustRegister(testInfo.ID, func(process.Config) (process.Process, error) {
		return newFixtureProcess(false), nil
	})
	outcome, err := Launch(context.Background(), LaunchSpec{
		Config:    cfg,
		Registry:  reg,
		ProcessID: testInfo.ID,
		Executor:  NewScriptedExecutor(map[string][]map[string]any{"echo": {{"value": "hello"}}}),
		Recorder:  history,
	})
	if err != nil || outcome.Err != nil {
		t.Fatalf("Launch: %v / %v", err, outcome.Err)
	}

	rows, err := history.ListRuns(5)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(rows))
	}
	row := rows[0]
	if row.RunID != outcome.RunID || row.Status != StatusCompleted || !row.Success || row.Tasks != 1 {
		t.Fatalf("unexpected history row: %+v", row)
	}
	calls, err := history.ListTaskCalls(outcome.RunID)
	if err != nil {
		t.Fatalf("ListTaskCalls: %v", err)
	}
	if len(calls) != 1 || calls[0].Task != "echo" {
		t.Fatalf("unexpected task calls: %+v", calls)
	}
}

func TestLaunchRejectsUnknownProcess(t *testing.T) {
	cfg := newLaunchConfig(t)
	if _, err := Launch(context.Background(), LaunchSpec{
		Config:    cfg,
		Registry:  process.NewRegistry(),
		ProcessID: "missing",
	}); err == nil {
		t.Fatalf("expected resolve error")
	}
}

func TestLaunchHonorsDenyPolicy(t *testing.T) {
	cfg := newLaunchConfig(t)
	cfg.Project.Review.Policy = "deny"
	if approver := approverFromConfig(cfg); approver == nil {
		t.Fatal("deny policy must yield an approver")
	} else if err := approver.Approve(context.Background(), "run-x", process.Breakpoint{Title: "T", Question: "Q"}); err == nil {
		t.Fatalf("deny approver should reject")
	}
}

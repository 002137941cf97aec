package host

import (
	"context"
	"fmt"
	"time"

	"praxis/internal/config"
	"praxis/internal/process"
	"praxis/internal/runspace"
	"praxis/internal/store"
)

// LaunchSpec bundles everything needed to take a process from registry ID to
// finished run directory. Callers override the executor or approver when the
// project config does not describe them (the TUI attaches its own approver,
// tests inject scripted executors).
type LaunchSpec struct {
	Config        *config.Config
	Registry      *process.Registry
	ProcessID     string
	Inputs        map[string]any
	ProcessConfig process.Config

	// Executor overrides the config-derived executor when non-nil.
	Executor Executor
	// Approver overrides the review policy when non-nil.
	Approver Approver
	// Recorder receives task lifecycle events when non-nil.
	Recorder Recorder
	// Clock overrides time.Now for run IDs and timestamps.
	Clock func() time.Time
}

// Outcome reports how a launched run ended.
type Outcome struct {
	RunID  string
	Report process.Report
	Err    error
}

// RunRecorder extends Recorder with run-level history rows. The store
// implements it; custom recorders that only care about task calls don't
// have to.
type RunRecorder interface {
	Recorder
	RunStarted(runID, processID, processVersion string, at time.Time) error
	RunFinished(record store.RunRecord) error
}

// Launch resolves the process, provisions a run directory under the project's
// runs dir, and executes the pipeline to completion. The returned run ID is
// valid even when the run itself failed.
func Launch(ctx context.Context, spec LaunchSpec) (Outcome, error) {
	if spec.Config == nil {
		return Outcome{}, fmt.Errorf("host: launch requires a config")
	}
	if spec.Registry == nil {
		return Outcome{}, fmt.Errorf("host: launch requires a registry")
	}
	proc, err := spec.Registry.Resolve(spec.ProcessID, spec.ProcessConfig)
	if err != nil {
		return Outcome{}, err
	}
	clock := spec.Clock
	if clock == nil {
		clock = time.Now
	}
	executor := spec.Executor
	if executor == nil {
		executor, err = executorFromConfig(spec.Config)
		if err != nil {
			return Outcome{}, err
		}
	}
	run := runspace.New(spec.Config.RunsDir(), runspace.NewRunID(spec.ProcessID, clock()))
	opts := []Option{WithClock(clock)}
	if spec.Approver != nil {
		opts = append(opts, WithApprover(spec.Approver))
	} else {
		opts = append(opts, WithApprover(approverFromConfig(spec.Config)))
	}
	if spec.Recorder != nil {
		opts = append(opts, WithRecorder(spec.Recorder))
	}
	if n := spec.Config.Project.Runtime.MaxParallel; n > 0 {
		opts = append(opts, WithMaxParallel(n))
	}
	h, err := New(run, proc.Info(), executor, opts...)
	if err != nil {
		return Outcome{RunID: run.ID()}, err
	}
	startedAt := clock()
	runRecorder, _ := spec.Recorder.(RunRecorder)
	if runRecorder != nil {
		// History failures must not block the run.
		_ = runRecorder.RunStarted(run.ID(), spec.ProcessID, proc.Info().Version, startedAt)
	}
	report, runErr := RunProcess(ctx, h, proc, spec.Inputs)
	if runRecorder != nil {
		record := store.RunRecord{
			RunID:          run.ID(),
			ProcessID:      spec.ProcessID,
			ProcessVersion: proc.Info().Version,
			Status:         StatusCompleted,
			Success:        runErr == nil && report.Success,
			Summary:        report.Summary,
			Tasks:          h.tasksDispatched(),
			StartedAt:      startedAt,
			FinishedAt:     clock(),
		}
		if runErr != nil {
			record.Status = StatusFailed
			record.Error = runErr.Error()
		}
		_ = runRecorder.RunFinished(record)
	}
	return Outcome{RunID: run.ID(), Report: report, Err: runErr}, nil
}

// executorFromConfig builds the executor the project config asks for. The
// scripted mode has no fixtures outside tests, so dispatches fail loudly
// instead of hanging.
func executorFromConfig(cfg *config.Config) (Executor, error) {
	executor := cfg.Project.Executor
	switch executor.Mode {
	case "command":
		return &CommandExecutor{
			Command: executor.Command[0],
			Args:    executor.Command[1:],
		}, nil
	case "scripted":
		return NewScriptedExecutor(nil), nil
	default:
		return nil, fmt.Errorf("host: unsupported executor mode %q", executor.Mode)
	}
}

// approverFromConfig maps the review policy onto an approver. The bridge
// policy needs a live queue, which the caller must supply; falling back to
// deny keeps unattended runs from silently approving reviews.
func approverFromConfig(cfg *config.Config) Approver {
	switch cfg.Project.Review.Policy {
	case "auto":
		return AutoApprover()
	default:
		return DenyApprover()
	}
}

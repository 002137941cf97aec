// Package host is the local reference runtime behind process.Context. It
// persists every task's input.json and result.json under the run directory,
// dispatches invocations through an Executor, enforces output schemas on the
// way back, and routes breakpoints to an Approver.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"praxis/internal/artifact"
	"praxis/internal/logbook"
	"praxis/internal/process"
	"praxis/internal/runspace"
	"praxis/internal/sanitize"
	"praxis/internal/task"
)

const defaultMaxParallel = 4

// Recorder receives task lifecycle records for durable run history.
type Recorder interface {
	TaskStarted(inv *task.Invocation, at time.Time)
	TaskFinished(inv *task.Invocation, status string, at time.Time, runErr error)
}

// Task record statuses handed to the Recorder.
const (
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

// Option customizes the host.
type Option func(*Host)

// WithApprover sets the breakpoint resolution strategy.
func WithApprover(approver Approver) Option {
	return func(h *Host) {
		if approver != nil {
			h.approver = approver
		}
	}
}

// WithClock overrides the host clock.
func WithClock(clock func() time.Time) Option {
	return func(h *Host) {
		if clock != nil {
			h.now = clock
		}
	}
}

// WithMaxParallel bounds concurrent task dispatches in ParallelTasks.
func WithMaxParallel(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.maxParallel = n
		}
	}
}

// WithRecorder attaches a durable task history sink.
func WithRecorder(recorder Recorder) Option {
	return func(h *Host) {
		h.recorder = recorder
	}
}

// Host implements process.Context against the local filesystem.
type Host struct {
	run         *runspace.Run
	info        process.Info
	executor    Executor
	approver    Approver
	artifacts   *artifact.Store
	book        *logbook.Logbook
	recorder    Recorder
	effects     *task.EffectIDs
	now         func() time.Time
	maxParallel int
	started     time.Time

	mu        sync.Mutex
	taskCount int
}

// New initializes the run directory and binds a host to it.
func New(run *runspace.Run, info process.Info, executor Executor, opts ...Option) (*Host, error) {
	if run == nil {
		return nil, fmt.Errorf("host: run is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("host: executor is required")
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if err := run.Initialize(); err != nil {
		return nil, fmt.Errorf("host: initialize run: %w", err)
	}
	h := &Host{
		run:         run,
		info:        info,
		executor:    executor,
		approver:    AutoApprover(),
		now:         time.Now,
		maxParallel: defaultMaxParallel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	book, err := logbook.New(run.LogbookPath(), logbook.WithClock(h.now))
	if err != nil {
		return nil, fmt.Errorf("host: open logbook: %w", err)
	}
	h.book = book
	h.artifacts = artifact.NewStore(run, artifact.WithClock(h.now))
	h.effects = task.NewEffectIDs(run.ID())
	h.started = h.now()
	return h, nil
}

// Logbook exposes the run's logbook for tailing.
func (h *Host) Logbook() *logbook.Logbook { return h.book }

// Task implements process.Context.
func (h *Host) Task(ctx context.Context, def *task.Def, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if err := task.CheckArgs(args); err != nil {
		return nil, fmt.Errorf("task %s: %w", def.Name, err)
	}

	effectID := h.effects.Next(def.Name)
	inv := &task.Invocation{
		EffectID: effectID,
		Task:     def.Name,
		Agent:    def.Agent,
		RunID:    h.run.ID(),
		Args:     args,
		Def:      def,
	}
	h.mu.Lock()
	h.taskCount++
	h.mu.Unlock()

	payload, err := inv.Payload()
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", def.Name, err)
	}
	if err := h.artifacts.Write(artifact.TaskInputRef(effectID), payload, h.metadata(effectID)); err != nil {
		return nil, fmt.Errorf("task %s: persist input: %w", def.Name, err)
	}

	started := h.now()
	if h.recorder != nil {
		h.recorder.TaskStarted(inv, started)
	}
	h.book.Info("dispatch %s (agent %s)", effectID, def.Agent)

	result, err := h.dispatch(ctx, inv)
	if h.recorder != nil {
		status := TaskCompleted
		if err != nil {
			status = TaskFailed
		}
		h.recorder.TaskFinished(inv, status, h.now(), err)
	}
	if err != nil {
		h.book.Error("task %s failed: %v", effectID, err)
		return nil, err
	}
	h.book.Info("task %s completed", effectID)
	return result, nil
}

func (h *Host) dispatch(ctx context.Context, inv *task.Invocation) (map[string]any, error) {
	inputPath := h.run.TaskInputPath(inv.EffectID)
	resultPath := h.run.TaskResultPath(inv.EffectID)
	if err := h.executor.Execute(ctx, inv, inputPath, resultPath); err != nil {
		return nil, fmt.Errorf("task %s: %w", inv.Task, err)
	}

	raw, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, fmt.Errorf("task %s: read result: %w", inv.Task, err)
	}
	var result map[string]any
	if err := json.Unmarshal(sanitize.Clean(raw), &result); err != nil {
		return nil, fmt.Errorf("task %s: decode result: %w", inv.Task, err)
	}
	delete(result, "_praxis")
	if err := inv.Def.Output.Check(result); err != nil {
		return nil, fmt.Errorf("task %s: result violates output schema: %w", inv.Task, err)
	}

	// Rewrite the result with provenance so the effect directory is
	// self-describing after the run.
	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("task %s: re-encode result: %w", inv.Task, err)
	}
	if err := h.artifacts.Write(artifact.TaskResultRef(inv.EffectID), encoded, h.metadata(inv.EffectID)); err != nil {
		return nil, fmt.Errorf("task %s: persist result: %w", inv.Task, err)
	}
	return result, nil
}

// ParallelTasks implements process.Context. Results come back in call
// order; the first failure cancels the remaining dispatches.
func (h *Host) ParallelTasks(ctx context.Context, calls []process.TaskCall) ([]map[string]any, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]map[string]any, len(calls))
	errs := make([]error, len(calls))
	sem := make(chan struct{}, h.maxParallel)
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call process.TaskCall) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			result, err := h.Task(ctx, call.Def, call.Args)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			results[i] = result
		}(i, call)
	}
	wg.Wait()

	// Prefer the causing failure over cancellation fallout.
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, context.Canceled) {
			return nil, err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// Breakpoint implements process.Context. The awaiting-review marker stays on
// disk for exactly as long as the approver deliberates.
func (h *Host) Breakpoint(ctx context.Context, bp process.Breakpoint) error {
	if err := bp.Validate(); err != nil {
		return err
	}
	if err := h.run.WriteMarker(runspace.MarkerAwaitingReview); err != nil {
		return fmt.Errorf("host: mark awaiting review: %w", err)
	}
	h.book.Info("breakpoint %q awaiting review", bp.Title)
	err := h.approver.Approve(ctx, h.run.ID(), bp)
	if clearErr := h.run.ClearMarker(runspace.MarkerAwaitingReview); clearErr != nil && err == nil {
		err = fmt.Errorf("host: clear review marker: %w", clearErr)
	}
	switch {
	case err == nil:
		h.book.Info("breakpoint %q approved", bp.Title)
	case errors.Is(err, process.ErrRejected):
		h.book.Warn("breakpoint %q rejected", bp.Title)
	default:
		h.book.Error("breakpoint %q: %v", bp.Title, err)
	}
	return err
}

// Log implements process.Context.
func (h *Host) Log(level process.LogLevel, format string, args ...any) {
	h.book.Append(logbook.ParseLevel(string(level)), fmt.Sprintf(format, args...))
}

// Now implements process.Context.
func (h *Host) Now() time.Time { return h.now() }

// RunID implements process.Context.
func (h *Host) RunID() string { return h.run.ID() }

func (h *Host) metadata(effectID string) artifact.Metadata {
	meta := artifact.Metadata{
		ProcessID: h.info.ID,
		Version:   h.info.Version,
		RunID:     h.run.ID(),
	}
	if effectID != "" {
		meta.Notes = map[string]string{"effect": effectID}
	}
	return meta
}

func (h *Host) tasksDispatched() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.taskCount
}

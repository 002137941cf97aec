package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"praxis/internal/task"
)

const defaultCommandTimeout = 5 * time.Minute

// Executor dispatches one task invocation to an agent. The host has already
// persisted input.json at inputPath; the executor must leave the agent's
// JSON output at resultPath.
type Executor interface {
	Execute(ctx context.Context, inv *task.Invocation, inputPath, resultPath string) error
}

// ScriptedExecutor serves canned results, queued per task name. It backs dry
// runs and tests where no agent toolchain is available.
type ScriptedExecutor struct {
	mu      sync.Mutex
	results map[string][]map[string]any
}

// NewScriptedExecutor seeds the executor with per-task result queues.
func NewScriptedExecutor(results map[string][]map[string]any) *ScriptedExecutor {
	queues := make(map[string][]map[string]any, len(results))
	for name, queue := range results {
		queues[name] = append([]map[string]any{}, queue...)
	}
	return &ScriptedExecutor{results: queues}
}

// Queue appends one more canned result for the task.
func (e *ScriptedExecutor) Queue(taskName string, result map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results[taskName] = append(e.results[taskName], result)
}

// Execute implements Executor.
func (e *ScriptedExecutor) Execute(ctx context.Context, inv *task.Invocation, inputPath, resultPath string) error {
	e.mu.Lock()
	queue := e.results[inv.Task]
	if len(queue) == 0 {
		e.mu.Unlock()
		return fmt.Errorf("host: no scripted result for task %s", inv.Task)
	}
	result := queue[0]
	e.results[inv.Task] = queue[1:]
	e.mu.Unlock()

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("host: marshal scripted result for %s: %w", inv.Task, err)
	}
	return os.WriteFile(resultPath, data, 0o644)
}

// CommandExecutor launches an external agent command per invocation. The
// command learns its assignment from PRAXIS_* environment variables and must
// write its JSON output to $PRAXIS_RESULT (stdout is accepted as a fallback
// when the file never appears).
type CommandExecutor struct {
	Command string
	Args    []string
	// Timeout bounds one invocation when the task definition carries none.
	Timeout time.Duration
}

// Execute implements Executor.
func (e *CommandExecutor) Execute(ctx context.Context, inv *task.Invocation, inputPath, resultPath string) error {
	if e.Command == "" {
		return fmt.Errorf("host: executor command is not configured")
	}
	timeout := e.Timeout
	if inv.Def != nil && inv.Def.Timeout > 0 {
		timeout = inv.Def.Timeout
	}
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.Command, e.Args...)
	cmd.Dir = filepath.Dir(inputPath)
	cmd.Env = append(os.Environ(),
		"PRAXIS_TASK="+inv.Task,
		"PRAXIS_AGENT="+inv.Agent,
		"PRAXIS_EFFECT_ID="+inv.EffectID,
		"PRAXIS_RUN_ID="+inv.RunID,
		"PRAXIS_INPUT="+inputPath,
		"PRAXIS_RESULT="+resultPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("host: agent command for %s: %w (stderr: %s)", inv.Task, err, tailLines(stderr.String(), 5))
	}

	if _, err := os.Stat(resultPath); os.IsNotExist(err) {
		out := bytes.TrimSpace(stdout.Bytes())
		if len(out) == 0 {
			return fmt.Errorf("host: agent for %s wrote neither %s nor stdout", inv.Task, filepath.Base(resultPath))
		}
		return os.WriteFile(resultPath, out, 0o644)
	}
	return nil
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " / ")
}

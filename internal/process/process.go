package process

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"praxis/internal/task"
)

// Info describes a process's identity and intent.
type Info struct {
	ID          string
	Name        string
	Description string
	Version     string
}

// Validate ensures the info block is well-formed.
func (i Info) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("process: id is required")
	}
	if i.Name == "" {
		return fmt.Errorf("process: name is required for %s", i.ID)
	}
	if i.Version == "" {
		return fmt.Errorf("process: version is required for %s", i.ID)
	}
	return nil
}

// Report captures the aggregate outcome a process returns to its caller.
type Report struct {
	Success bool
	Summary string
	Fields  map[string]any
}

// FieldNames returns the report's field keys, sorted.
func (r Report) FieldNames() []string {
	if len(r.Fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Failure builds an unsuccessful report with the given summary. It is the
// shallow short-circuit for post-condition checks that are not errors.
func Failure(format string, args ...any) Report {
	return Report{Success: false, Summary: fmt.Sprintf(format, args...)}
}

// Process is implemented by every catalog pipeline.
type Process interface {
	Info() Info
	// Tasks enumerates every task definition the process may invoke, for
	// contract linting ahead of any run.
	Tasks() []*task.Def
	// Outputs documents the field names the final report carries.
	Outputs() []string
	Run(ctx context.Context, host Context, inputs map[string]any) (Report, error)
}

// TaskCall pairs a definition with its arguments for parallel fan-out.
type TaskCall struct {
	Def  *task.Def
	Args map[string]any
}

// Context is the contract a host runtime provides to a running process.
type Context interface {
	// Task dispatches one task invocation and returns the decoded result,
	// already validated against the task's output schema.
	Task(ctx context.Context, def *task.Def, args map[string]any) (map[string]any, error)
	// ParallelTasks dispatches the calls concurrently and returns results in
	// call order. The first error cancels the remaining calls.
	ParallelTasks(ctx context.Context, calls []TaskCall) ([]map[string]any, error)
	// Breakpoint pauses for human review. A nil error means approved.
	Breakpoint(ctx context.Context, bp Breakpoint) error
	// Log records a leveled progress line in the run's logbook.
	Log(level LogLevel, format string, args ...any)
	// Now returns the host clock reading.
	Now() time.Time
	// RunID identifies the current run.
	RunID() string
}

// LogLevel mirrors the logbook severities without importing it here.
type LogLevel string

const (
	LogInfo  LogLevel = "INFO"
	LogWarn  LogLevel = "WARN"
	LogError LogLevel = "ERROR"
)

// Breakpoint is a human-in-the-loop pause point.
type Breakpoint struct {
	Title    string
	Question string
	// Context carries review material (JSON-serializable).
	Context map[string]any
}

// Validate enforces the minimum fields a reviewer needs.
func (bp Breakpoint) Validate() error {
	if strings.TrimSpace(bp.Title) == "" {
		return fmt.Errorf("breakpoint: title is required")
	}
	if strings.TrimSpace(bp.Question) == "" {
		return fmt.Errorf("breakpoint: question is required")
	}
	if err := task.CheckArgs(bp.Context); err != nil {
		return fmt.Errorf("breakpoint %q: context: %w", bp.Title, err)
	}
	return nil
}

// ErrRejected is returned by Breakpoint when the reviewer declines.
var ErrRejected = fmt.Errorf("process: breakpoint rejected")

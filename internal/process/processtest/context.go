// Package processtest provides a scripted host context for exercising
// catalog processes without a real agent runtime.
package processtest

import (
	"context"
	"fmt"
	"time"

	"praxis/internal/process"
	"praxis/internal/task"
)

// Call records one task dispatch.
type Call struct {
	Task string
	Args map[string]any
}

// Context is a scripted process.Context. Results are queued per task name
// and popped in dispatch order.
type Context struct {
	Results map[string][]map[string]any
	Errs    map[string]error
	// ReviewErr is returned by every Breakpoint call (nil approves).
	ReviewErr error
	Clock     time.Time
	Run       string

	Calls       []Call
	Breakpoints []process.Breakpoint
	Logs        []string
}

// New returns a context scripted with the given per-task result queues.
func New(results map[string][]map[string]any) *Context {
	return &Context{
		Results: results,
		Clock:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Run:     "run-test",
	}
}

// Task implements process.Context.
func (c *Context) Task(ctx context.Context, def *task.Def, args map[string]any) (map[string]any, error) {
	if err := task.CheckArgs(args); err != nil {
		return nil, err
	}
	c.Calls = append(c.Calls, Call{Task: def.Name, Args: args})
	if err := c.Errs[def.Name]; err != nil {
		return nil, err
	}
	queue := c.Results[def.Name]
	if len(queue) == 0 {
		return nil, fmt.Errorf("processtest: no scripted result for task %s", def.Name)
	}
	result := queue[0]
	c.Results[def.Name] = queue[1:]
	return result, nil
}

// ParallelTasks implements process.Context by dispatching sequentially.
func (c *Context) ParallelTasks(ctx context.Context, calls []process.TaskCall) ([]map[string]any, error) {
	results := make([]map[string]any, 0, len(calls))
	for _, call := range calls {
		result, err := c.Task(ctx, call.Def, call.Args)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Breakpoint implements process.Context.
func (c *Context) Breakpoint(ctx context.Context, bp process.Breakpoint) error {
	if err := bp.Validate(); err != nil {
		return err
	}
	c.Breakpoints = append(c.Breakpoints, bp)
	return c.ReviewErr
}

// Log implements process.Context.
func (c *Context) Log(level process.LogLevel, format string, args ...any) {
	c.Logs = append(c.Logs, fmt.Sprintf("%s %s", level, fmt.Sprintf(format, args...)))
}

// Now implements process.Context.
func (c *Context) Now() time.Time { return c.Clock }

// RunID implements process.Context.
func (c *Context) RunID() string { return c.Run }

// TaskNames lists the dispatched task names in order.
func (c *Context) TaskNames() []string {
	names := make([]string, 0, len(c.Calls))
	for _, call := range c.Calls {
		names = append(names, call.Task)
	}
	return names
}

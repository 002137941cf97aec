package process

import "praxis/internal/task"

// Base provides common plumbing for processes (identity + contracts).
type Base struct {
	info    Info
	tasks   []*task.Def
	outputs []string
}

// NewBase seeds the helper with process info.
func NewBase(info Info) Base {
	return Base{info: info}
}

// SetTasks declares the task definitions the process may invoke.
func (b *Base) SetTasks(defs ...*task.Def) {
	b.tasks = append([]*task.Def{}, defs...)
}

// SetOutputs documents the report fields the process produces.
func (b *Base) SetOutputs(names ...string) {
	b.outputs = append([]string{}, names...)
}

// Info implements Process.Info.
func (b *Base) Info() Info {
	return b.info
}

// Tasks implements Process.Tasks.
func (b *Base) Tasks() []*task.Def {
	return append([]*task.Def{}, b.tasks...)
}

// Outputs implements Process.Outputs.
func (b *Base) Outputs() []string {
	return append([]string{}, b.outputs...)
}

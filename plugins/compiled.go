package plugins

import (
	"context"
	"errors"
	"fmt"

	"praxis/internal/process"
	"praxis/internal/task"
)

// compiledPhase pairs a task definition with its report field and optional
// review pause.
type compiledPhase struct {
	def        *task.Def
	field      string
	breakpoint *BreakpointDefinition
}

// pluginProcess runs a compiled definition as a sequential pipeline. Each
// phase sees the run inputs plus every earlier phase's result keyed by its
// report field.
type pluginProcess struct {
	process.Base
	phases []compiledPhase
}

// Compile turns a definition into a runnable catalog process. The definition
// is validated first, so a compiled process always carries well-formed task
// contracts.
func Compile(def ProcessDefinition) (process.Process, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	normalized := def.Normalized()
	p := &pluginProcess{
		Base: process.NewBase(process.Info{
			ID:          normalized.ID,
			Name:        normalized.Name,
			Description: normalized.Description,
			Version:     normalized.Version,
		}),
	}
	defs := make([]*task.Def, 0, len(normalized.Phases))
	fields := make([]string, 0, len(normalized.Phases))
	for _, phase := range normalized.Phases {
		output, err := phase.outputSchema()
		if err != nil {
			return nil, fmt.Errorf("plugin %s: task %s: output: %w", normalized.ID, phase.Task, err)
		}
		def := &task.Def{
			Name:         phase.Task,
			Agent:        phase.Agent,
			Instructions: phase.Prompt,
			Output:       output,
		}
		p.phases = append(p.phases, compiledPhase{def: def, field: phase.Field, breakpoint: phase.Breakpoint})
		defs = append(defs, def)
		fields = append(fields, phase.Field)
	}
	p.SetTasks(defs...)
	p.SetOutputs(fields...)
	return p, nil
}

func (p *pluginProcess) Run(ctx context.Context, host process.Context, inputs map[string]any) (process.Report, error) {
	args := make(map[string]any, len(inputs)+len(p.phases))
	for key, value := range inputs {
		args[key] = value
	}
	fields := make(map[string]any, len(p.phases))
	for _, phase := range p.phases {
		host.Log(process.LogInfo, "phase %s: dispatching to %s", phase.def.Name, phase.def.Agent)
		result, err := host.Task(ctx, phase.def, args)
		if err != nil {
			return process.Report{}, fmt.Errorf("phase %s: %w", phase.def.Name, err)
		}
		fields[phase.field] = result
		args[phase.field] = result
		if phase.breakpoint == nil {
			continue
		}
		err = host.Breakpoint(ctx, process.Breakpoint{
			Title:    phase.breakpoint.Title,
			Question: phase.breakpoint.Question,
			Context:  map[string]any{phase.field: result},
		})
		if errors.Is(err, process.ErrRejected) {
			return process.Failure("review rejected after phase %s", phase.def.Name), nil
		}
		if err != nil {
			return process.Report{}, err
		}
	}
	return process.Report{
		Success: true,
		Summary: fmt.Sprintf("%s completed %d phases", p.Info().ID, len(p.phases)),
		Fields:  fields,
	}, nil
}

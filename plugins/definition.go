package plugins

import (
	"fmt"
	"strings"

	"praxis/internal/schema"
)

// ProcessDefinition describes a declarative plugin process loaded from
// .praxis/processes. A definition sequences phases: each phase dispatches one
// task to a named agent, optionally pausing for human review afterwards.
//
// The struct mirrors the on-disk schema (YAML, Go script, or HCL) and is
// intentionally narrow so the catalog can validate plugin metadata before
// wiring it into the registry.
type ProcessDefinition struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string            `json:"version" yaml:"version"`
	Phases      []PhaseDefinition `json:"phases" yaml:"phases"`
}

// PhaseDefinition declares one task dispatch within a plugin process. The
// phase result lands in the final report under Field (or Task when Field is
// empty, with dashes folded to underscores).
type PhaseDefinition struct {
	Task       string                `json:"task" yaml:"task"`
	Agent      string                `json:"agent" yaml:"agent"`
	Prompt     string                `json:"prompt" yaml:"prompt"`
	Output     map[string]any        `json:"output" yaml:"output"`
	Field      string                `json:"field,omitempty" yaml:"field,omitempty"`
	Breakpoint *BreakpointDefinition `json:"breakpoint,omitempty" yaml:"breakpoint,omitempty"`
}

// BreakpointDefinition pauses the pipeline for review after its phase.
type BreakpointDefinition struct {
	Title    string `json:"title" yaml:"title"`
	Question string `json:"question" yaml:"question"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def ProcessDefinition) Normalized() ProcessDefinition {
	clone := ProcessDefinition{
		ID:          strings.TrimSpace(def.ID),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Version:     strings.TrimSpace(def.Version),
	}
	if clone.Name == "" {
		clone.Name = clone.ID
	}
	if len(def.Phases) > 0 {
		clone.Phases = make([]PhaseDefinition, len(def.Phases))
		for i, phase := range def.Phases {
			clone.Phases[i] = phase.normalized()
		}
	}
	return clone
}

func (phase PhaseDefinition) normalized() PhaseDefinition {
	clone := PhaseDefinition{
		Task:   strings.TrimSpace(phase.Task),
		Agent:  strings.TrimSpace(phase.Agent),
		Prompt: strings.TrimSpace(phase.Prompt),
		Field:  strings.TrimSpace(phase.Field),
		Output: phase.Output,
	}
	if clone.Field == "" {
		clone.Field = strings.ReplaceAll(clone.Task, "-", "_")
	}
	if phase.Breakpoint != nil {
		clone.Breakpoint = &BreakpointDefinition{
			Title:    strings.TrimSpace(phase.Breakpoint.Title),
			Question: strings.TrimSpace(phase.Breakpoint.Question),
		}
	}
	return clone
}

// Validate ensures the plugin definition is well-formed: identity fields
// present, at least one phase, every phase complete with a decodable output
// schema, and no duplicate task or field names.
func (def ProcessDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("plugin: id is required")
	}
	if normalized.Version == "" {
		return fmt.Errorf("plugin %s: version is required", normalized.ID)
	}
	if len(normalized.Phases) == 0 {
		return fmt.Errorf("plugin %s: at least one phase is required", normalized.ID)
	}
	seenTasks := make(map[string]struct{}, len(normalized.Phases))
	seenFields := make(map[string]struct{}, len(normalized.Phases))
	for idx, phase := range normalized.Phases {
		if err := phase.validate(); err != nil {
			return fmt.Errorf("plugin %s: phases[%d]: %w", normalized.ID, idx, err)
		}
		if _, exists := seenTasks[phase.Task]; exists {
			return fmt.Errorf("plugin %s: phases[%d]: duplicate task %s", normalized.ID, idx, phase.Task)
		}
		seenTasks[phase.Task] = struct{}{}
		if _, exists := seenFields[phase.Field]; exists {
			return fmt.Errorf("plugin %s: phases[%d]: duplicate field %s", normalized.ID, idx, phase.Field)
		}
		seenFields[phase.Field] = struct{}{}
	}
	return nil
}

func (phase PhaseDefinition) validate() error {
	if phase.Task == "" {
		return fmt.Errorf("task name is required")
	}
	if phase.Agent == "" {
		return fmt.Errorf("task %s: agent is required", phase.Task)
	}
	if phase.Prompt == "" {
		return fmt.Errorf("task %s: prompt is required", phase.Task)
	}
	if len(phase.Output) == 0 {
		return fmt.Errorf("task %s: output schema is required", phase.Task)
	}
	if _, err := phase.outputSchema(); err != nil {
		return fmt.Errorf("task %s: output: %w", phase.Task, err)
	}
	if phase.Breakpoint != nil {
		if phase.Breakpoint.Title == "" {
			return fmt.Errorf("task %s: breakpoint title is required", phase.Task)
		}
		if phase.Breakpoint.Question == "" {
			return fmt.Errorf("task %s: breakpoint question is required", phase.Task)
		}
	}
	return nil
}

func (phase PhaseDefinition) outputSchema() (*schema.Schema, error) {
	return schema.FromValue(normalizeValue(phase.Output))
}

// normalizeValue rewrites map[any]any trees into map[string]any so schema
// decoding sees one shape regardless of which parser produced the value.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, entry := range typed {
			out[key] = normalizeValue(entry)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, entry := range typed {
			out[fmt.Sprintf("%v", key)] = normalizeValue(entry)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = normalizeValue(entry)
		}
		return out
	default:
		return value
	}
}

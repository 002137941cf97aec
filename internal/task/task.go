// Package task models the declarative units of work a process hands to the
// host runtime. A Def carries the agent role, the instruction prompt, and the
// output contract; an Invocation is one materialized call with its effect ID
// and the tasks/<effectID>/input.json / result.json convention the host
// persists against.
package task

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"praxis/internal/schema"
)

// Def declares a reusable unit of agent work.
type Def struct {
	// Name identifies the task within its process (kebab-case).
	Name string
	// Agent names the role the host should dispatch to.
	Agent string
	// Instructions is the natural-language prompt. Argument values are
	// appended by the host as a JSON payload; the prompt should reference
	// them by key.
	Instructions string
	// Output declares the JSON shape the agent must return.
	Output *schema.Schema
	// Timeout hints how long the host should wait. Zero means host default.
	Timeout time.Duration
}

// Validate ensures the definition is complete enough to dispatch.
func (d *Def) Validate() error {
	if d == nil {
		return fmt.Errorf("task: nil definition")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("task: name is required")
	}
	if strings.TrimSpace(d.Agent) == "" {
		return fmt.Errorf("task %s: agent is required", d.Name)
	}
	if strings.TrimSpace(d.Instructions) == "" {
		return fmt.Errorf("task %s: instructions are required", d.Name)
	}
	if d.Output == nil {
		return fmt.Errorf("task %s: output schema is required", d.Name)
	}
	if err := d.Output.Validate(); err != nil {
		return fmt.Errorf("task %s: %w", d.Name, err)
	}
	return nil
}

// CheckArgs verifies the args are plain JSON-serializable values. Functions,
// channels, and cyclic structures are rejected by the encoder.
func CheckArgs(args map[string]any) error {
	if len(args) == 0 {
		return nil
	}
	if _, err := json.Marshal(args); err != nil {
		return fmt.Errorf("task: args are not JSON-serializable: %w", err)
	}
	return nil
}

// Invocation is a single materialized task call.
type Invocation struct {
	EffectID string         `json:"effect_id"`
	Task     string         `json:"task"`
	Agent    string         `json:"agent"`
	RunID    string         `json:"run_id"`
	Args     map[string]any `json:"args,omitempty"`

	// Def is carried for the executor; it is not part of the wire payload.
	Def *Def `json:"-"`
}

// InputPath returns the host-persisted input file, relative to the run dir.
func (inv Invocation) InputPath() string {
	return filepath.Join("tasks", inv.EffectID, "input.json")
}

// ResultPath returns the host-persisted result file, relative to the run dir.
func (inv Invocation) ResultPath() string {
	return filepath.Join("tasks", inv.EffectID, "result.json")
}

// Payload renders the JSON body written to input.json.
func (inv Invocation) Payload() ([]byte, error) {
	body := map[string]any{
		"effect_id":    inv.EffectID,
		"task":         inv.Task,
		"agent":        inv.Agent,
		"run_id":       inv.RunID,
		"instructions": "",
		"args":         map[string]any{},
	}
	if inv.Def != nil {
		body["instructions"] = inv.Def.Instructions
		if inv.Def.Output != nil {
			body["output_schema"] = inv.Def.Output
		}
	}
	if len(inv.Args) > 0 {
		body["args"] = inv.Args
	}
	return json.MarshalIndent(body, "", "  ")
}

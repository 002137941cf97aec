package decision

import (
	"context"
	"fmt"

	"praxis/internal/process"
	"praxis/internal/processes/runtime"
	"praxis/internal/schema"
	"praxis/internal/task"
)

const (
	processID      = "decision"
	processVersion = "1.0.0"
)

var frameTask = &task.Def{
	Name:  "frame-decision",
	Agent: "decision-analyst",
	Instructions: "Frame the decision problem. Enumerate the options " +
		"exhaustively before assessing any of them, list the uncertainties " +
		"whose resolution changes which option is best, and state the " +
		"objective being optimized. Keep uncertainties separate from " +
		"preferences. Respect any stated constraints.",
	Output: schema.Object("decision frame",
		schema.Field("objective", schema.String("what a good choice optimizes")),
		schema.Field("options", schema.ArrayOf(schema.Object("one option",
			schema.Field("id", schema.String("short stable identifier, e.g. o1")),
			schema.Field("label", schema.String("option name")),
			schema.Field("description", schema.String("what choosing it means")),
		))),
		schema.Field("uncertainties", schema.ArrayOf(schema.Object("one uncertainty",
			schema.Field("id", schema.String("short stable identifier, e.g. u1")),
			schema.Field("label", schema.String("uncertainty name")),
			schema.Field("outcomes", schema.ArrayOf(schema.String("possible outcome"))),
		))),
	),
}

var assessTask = &task.Def{
	Name:  "assess-utilities",
	Agent: "utility-assessor",
	Instructions: "Given the decision frame, assign a utility to each " +
		"option-outcome combination you have a stated basis for, and a " +
		"probability to each uncertainty outcome. Probabilities within one " +
		"uncertainty must sum to one. Decline combinations you cannot " +
		"ground rather than inventing numbers.",
	Output: schema.Object("utility table",
		schema.Field("utilities", schema.ArrayOf(schema.Object("one assessment",
			schema.Field("option", schema.String("option id")),
			schema.Field("outcome", schema.String("uncertainty outcome")),
			schema.Field("utility", schema.NumberBetween("utility on a 0-100 scale", 0, 100)),
			schema.Field("basis", schema.String("grounds for the number")),
		))),
		schema.Field("probabilities", schema.ArrayOf(schema.Object("one probability",
			schema.Field("uncertainty", schema.String("uncertainty id")),
			schema.Field("outcome", schema.String("outcome name")),
			schema.Field("p", schema.NumberBetween("probability", 0, 1)),
		))),
	),
}

var recommendTask = &task.Def{
	Name:  "recommend",
	Agent: "decision-recommender",
	Instructions: "Given the frame and the utility table, compute the " +
		"expected utility of each option, show the computation, and rank " +
		"the options. Recommend the top option and note how sensitive the " +
		"ranking is to the dominant uncertainty.",
	Output: schema.Object("recommendation",
		schema.Field("ranking", schema.ArrayOf(schema.Object("one ranked option",
			schema.Field("option", schema.String("option id")),
			schema.Field("expected_utility", schema.Number("expected utility")),
			schema.Field("rationale", schema.String("computation and reasoning")),
		))),
		schema.Field("recommendation", schema.String("recommended option id and why")),
		schema.Field("sensitivity", schema.String("sensitivity to the dominant uncertainty")),
	),
}

// DecisionProcess frames a decision and ranks its options by expected
// utility.
type DecisionProcess struct {
	process.Base
}

// Register adds the process factory to the registry.
func Register(reg *process.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(processID, func(process.Config) (process.Process, error) {
		return New(), nil
	})
}

// New creates the decision-theoretic reasoning process.
func New() *DecisionProcess {
	p := &DecisionProcess{Base: process.NewBase(process.Info{
		ID:          processID,
		Name:        "Decision-Theoretic Reasoning",
		Description: "Frames options and uncertainties, elicits utilities, and ranks options by expected utility.",
		Version:     processVersion,
	})}
	p.SetTasks(frameTask, assessTask, recommendTask)
	p.SetOutputs("options", "utilities", "ranking", "recommendation", "sensitivity")
	return p
}

// Run executes the pipeline against the host runtime.
func (p *DecisionProcess) Run(ctx context.Context, host process.Context, inputs map[string]any) (process.Report, error) {
	problem, err := runtime.StringInput(processID, inputs, "decision")
	if err != nil {
		return process.Report{}, err
	}
	constraints := runtime.OptionalString(inputs, "constraints")

	host.Log(process.LogInfo, "framing decision %q", problem)
	framed, err := host.Task(ctx, frameTask, map[string]any{
		"decision":    problem,
		"constraints": constraints,
	})
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, frameTask.Name, err)
	}
	options := runtime.List(framed, "options")
	if len(options) < 2 {
		host.Log(process.LogWarn, "frame produced %d options", len(options))
		return process.Failure("fewer than two options framed for %q", problem), nil
	}

	host.Log(process.LogInfo, "assessing utilities for %d options", len(options))
	assessed, err := host.Task(ctx, assessTask, map[string]any{
		"decision":      problem,
		"objective":     framed["objective"],
		"options":       options,
		"uncertainties": runtime.List(framed, "uncertainties"),
	})
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, assessTask.Name, err)
	}
	utilities := runtime.List(assessed, "utilities")
	if len(utilities) == 0 {
		host.Log(process.LogWarn, "assessor declined every utility")
		return process.Failure("no utilities elicited for %q", problem), nil
	}

	host.Log(process.LogInfo, "ranking options")
	ranked, err := host.Task(ctx, recommendTask, map[string]any{
		"decision":      problem,
		"objective":     framed["objective"],
		"options":       options,
		"utilities":     utilities,
		"probabilities": runtime.List(assessed, "probabilities"),
	})
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, recommendTask.Name, err)
	}

	recommendation, _ := ranked["recommendation"].(string)
	return process.Report{
		Success: true,
		Summary: fmt.Sprintf("recommendation for %q: %s", problem, recommendation),
		Fields: map[string]any{
			"options":        options,
			"utilities":      utilities,
			"ranking":        runtime.List(ranked, "ranking"),
			"recommendation": recommendation,
			"sensitivity":    ranked["sensitivity"],
		},
	}, nil
}

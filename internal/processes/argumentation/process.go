package argumentation

import (
	"context"
	"errors"
	"fmt"

	"praxis/internal/process"
	"praxis/internal/processes/runtime"
	"praxis/internal/schema"
	"praxis/internal/task"
)

const (
	processID      = "argumentation"
	processVersion = "1.0.0"
)

var extractTask = &task.Def{
	Name:  "extract-arguments",
	Agent: "argument-analyst",
	Instructions: "Read the topic and any supplied material. Extract every " +
		"distinct argument bearing on the topic: its central claim, the " +
		"premises supporting it, and its stance toward the topic. Quote the " +
		"material where possible. Include weak arguments; do not merge " +
		"distinct claims. If no material is supplied, argue from general " +
		"knowledge and note that in each argument's premises.",
	Output: schema.Object("argument inventory",
		schema.Field("arguments", schema.ArrayOf(schema.Object("one argument",
			schema.Field("id", schema.String("short stable identifier, e.g. a1")),
			schema.Field("claim", schema.String("the central claim")),
			schema.Field("premises", schema.ArrayOf(schema.String("supporting premise"))),
			schema.Field("stance", schema.Enum("relation to the topic", "pro", "con", "neutral")),
			schema.Optional("confidence", schema.NumberBetween("analyst confidence", 0, 1)),
		))),
	),
}

var attackTask = &task.Def{
	Name:  "map-attacks",
	Agent: "argument-critic",
	Instructions: "Given the argument inventory, identify every attack " +
		"relation between arguments: rebuttals (deny the claim), undercuts " +
		"(break the premise-claim link), and undermines (deny a premise). " +
		"Only relate arguments present in the inventory, reference them by " +
		"id, and state the grounds for each attack.",
	Output: schema.Object("attack relations",
		schema.Field("attacks", schema.ArrayOf(schema.Object("one attack",
			schema.Field("from", schema.String("attacking argument id")),
			schema.Field("to", schema.String("attacked argument id")),
			schema.Field("kind", schema.Enum("attack kind", "rebut", "undercut", "undermine")),
			schema.Field("grounds", schema.String("why the attack holds")),
		))),
	),
}

var adjudicateTask = &task.Def{
	Name:  "adjudicate",
	Agent: "argument-judge",
	Instructions: "Given the argument inventory and the attack graph, " +
		"determine which arguments are collectively acceptable: accepted " +
		"arguments defend against every attack on them, rejected arguments " +
		"are defeated by an accepted attacker, and everything else is " +
		"undecided. Base the partition solely on the graph, then state a " +
		"verdict on the topic and the rationale behind it.",
	Output: schema.Object("adjudication",
		schema.Field("accepted", schema.ArrayOf(schema.String("accepted argument id"))),
		schema.Field("rejected", schema.ArrayOf(schema.String("rejected argument id"))),
		schema.Field("undecided", schema.ArrayOf(schema.String("undecided argument id"))),
		schema.Field("verdict", schema.String("verdict on the topic")),
		schema.Field("rationale", schema.String("basis for the verdict")),
	),
}

// ArgumentationProcess analyses a debate topic through mining, attack
// mapping, and adjudication phases.
type ArgumentationProcess struct {
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

// New creates the argumentation process.
func New() *ArgumentationProcess {
	p := &ArgumentationProcess{Base: process.NewBase(process.Info{
		ID:          processID,
		Name:        "Argumentation Theory",
		Description: "Mines arguments on a topic, maps attack relations, and adjudicates a reviewed verdict.",
		Version:     processVersion,
	})}
	p.SetTasks(extractTask, attackTask, adjudicateTask)
	p.SetOutputs("arguments", "attacks", "accepted", "verdict", "rationale")
	return p
}

// Run executes the pipeline against the host runtime.
func (p *ArgumentationProcess) Run(ctx context.Context, host process.Context, inputs map[string]any) (process.Report, error) {
	topic, err := runtime.StringInput(processID, inputs, "topic")
	if err != nil {
		return process.Report{}, err
	}
	material := runtime.OptionalString(inputs, "material")

	host.Log(process.LogInfo, "mining arguments on %q", topic)
	mined, err := host.Task(ctx, extractTask, map[string]any{
		"topic":    topic,
		"material": material,
	})
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, extractTask.Name, err)
	}
	arguments := runtime.List(mined, "arguments")
	if len(arguments) == 0 {
		host.Log(process.LogWarn, "analyst returned no arguments")
		return process.Failure("no arguments could be extracted for %q", topic), nil
	}

	host.Log(process.LogInfo, "mapping attacks across %d arguments", len(arguments))
	mapped, err := host.Task(ctx, attackTask, map[string]any{
		"topic":     topic,
		"arguments": arguments,
	})
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, attackTask.Name, err)
	}
	attacks := runtime.List(mapped, "attacks")

	err = host.Breakpoint(ctx, process.Breakpoint{
		Title:    "Review attack graph",
		Question: fmt.Sprintf("The critic mapped %d attacks across %d arguments on %q. Proceed to adjudication?", len(attacks), len(arguments), topic),
		Context: map[string]any{
			"topic":     topic,
			"arguments": arguments,
			"attacks":   attacks,
		},
	})
	if errors.Is(err, process.ErrRejected) {
		host.Log(process.LogWarn, "attack graph rejected by reviewer")
		return process.Failure("attack graph rejected in review"), nil
	}
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: review: %w", processID, err)
	}

	host.Log(process.LogInfo, "adjudicating")
	judged, err := host.Task(ctx, adjudicateTask, map[string]any{
		"topic":     topic,
		"arguments": arguments,
		"attacks":   attacks,
	})
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, adjudicateTask.Name, err)
	}

	verdict, _ := judged["verdict"].(string)
	return process.Report{
		Success: true,
		Summary: fmt.Sprintf("verdict on %q: %s", topic, verdict),
		Fields: map[string]any{
			"arguments": arguments,
			"attacks":   attacks,
			"accepted":  runtime.List(judged, "accepted"),
			"verdict":   verdict,
			"rationale": judged["rationale"],
		},
	}, nil
}

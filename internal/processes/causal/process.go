package causal

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
	processID      = "causal"
	processVersion = "1.0.0"

	defaultShardSize = 8
)

var inventoryTask = &task.Def{
	Name:  "inventory-variables",
	Agent: "causal-modeler",
	Instructions: "Study the system description and any evidence. Name the " +
		"variables worth modelling causally, preferring observed quantities " +
		"over hypothesized latents. Give each variable an unambiguous name, " +
		"a measurement kind, and a one-line description.",
	Output: schema.Object("variable inventory",
		schema.Field("variables", schema.ArrayOf(schema.Object("one variable",
			schema.Field("name", schema.String("unambiguous variable name")),
			schema.Field("kind", schema.Enum("measurement kind", "continuous", "discrete", "binary")),
			schema.Field("description", schema.String("what the variable measures")),
		))),
	),
}

var screenTask = &task.Def{
	Name:  "screen-pairs",
	Agent: "causal-analyst",
	Instructions: "You are given a shard of variable pairs from a larger " +
		"screen. For each assigned pair, judge from the evidence whether the " +
		"two variables are dependent, how strong the association is, and " +
		"which other variables you conditioned on to reach that judgement. " +
		"Screen only the pairs assigned to this shard.",
	Output: schema.Object("skeleton shard",
		schema.Field("edges", schema.ArrayOf(schema.Object("one screened pair",
			schema.Field("a", schema.String("first variable name")),
			schema.Field("b", schema.String("second variable name")),
			schema.Field("dependent", schema.Boolean("whether the pair is associated")),
			schema.Field("strength", schema.NumberBetween("association strength", 0, 1)),
			schema.Field("conditioning", schema.ArrayOf(schema.String("conditioned variable"))),
		))),
	),
}

var orientTask = &task.Def{
	Name:  "orient-edges",
	Agent: "causal-orienter",
	Instructions: "You are given variables and an undirected dependence " +
		"skeleton. Orient each edge into cause and effect where background " +
		"knowledge, temporal order, or collider structure forces a " +
		"direction; leave it undirected otherwise. Never introduce an edge " +
		"absent from the skeleton. Note remaining ambiguities.",
	Output: schema.Object("causal graph",
		schema.Field("edges", schema.ArrayOf(schema.Object("one oriented edge",
			schema.Field("from", schema.String("cause, or first endpoint when undirected")),
			schema.Field("to", schema.String("effect, or second endpoint when undirected")),
			schema.Field("directed", schema.Boolean("whether the orientation is forced")),
			schema.Field("rationale", schema.String("why this orientation")),
		))),
		schema.Field("notes", schema.String("ambiguities and caveats")),
	),
}

// CausalProcess reconstructs a causal graph through inventory, sharded
// screening, and orientation phases.
type CausalProcess struct {
	process.Base
	shardSize int
}

// Register adds the process factory to the registry.
func Register(reg *process.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(processID, func(cfg process.Config) (process.Process, error) {
		return New(runtime.IntOption(cfg, "shard_size", defaultShardSize)), nil
	})
}

// New creates the causal discovery process with the given pairs-per-shard.
func New(shardSize int) *CausalProcess {
	if shardSize <= 0 {
		shardSize = defaultShardSize
	}
	p := &CausalProcess{
		Base: process.NewBase(process.Info{
			ID:          processID,
			Name:        "Causal Discovery",
			Description: "Screens variable pairs for dependence in parallel shards and orients the skeleton into a causal graph.",
			Version:     processVersion,
		}),
		shardSize: shardSize,
	}
	p.SetTasks(inventoryTask, screenTask, orientTask)
	p.SetOutputs("variables", "skeleton", "graph", "notes")
	return p
}

// Run executes the pipeline against the host runtime.
func (p *CausalProcess) Run(ctx context.Context, host process.Context, inputs map[string]any) (process.Report, error) {
	system, err := runtime.StringInput(processID, inputs, "system")
	if err != nil {
		return process.Report{}, err
	}
	evidence := runtime.OptionalString(inputs, "evidence")

	host.Log(process.LogInfo, "inventorying variables for %q", system)
	inventoried, err := host.Task(ctx, inventoryTask, map[string]any{
		"system":   system,
		"evidence": evidence,
	})
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, inventoryTask.Name, err)
	}
	variables := runtime.List(inventoried, "variables")
	names := variableNames(variables)
	if len(names) < 2 {
		host.Log(process.LogWarn, "modeler produced %d usable variables", len(names))
		return process.Failure("fewer than two variables identified for %q", system), nil
	}

	shards := shardPairs(pairNames(names), p.shardSize)
	host.Log(process.LogInfo, "screening %d variables across %d shards", len(names), len(shards))
	calls := make([]process.TaskCall, 0, len(shards))
	for _, shard := range shards {
		calls = append(calls, process.TaskCall{Def: screenTask, Args: map[string]any{
			"system":    system,
			"evidence":  evidence,
			"variables": variables,
			"pairs":     shard,
		}})
	}
	screened, err := host.ParallelTasks(ctx, calls)
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, screenTask.Name, err)
	}
	skeleton := dependentEdges(screened)

	host.Log(process.LogInfo, "orienting %d skeleton edges", len(skeleton))
	oriented, err := host.Task(ctx, orientTask, map[string]any{
		"system":    system,
		"variables": variables,
		"skeleton":  skeleton,
	})
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, orientTask.Name, err)
	}
	graph := runtime.List(oriented, "edges")
	notes, _ := oriented["notes"].(string)

	err = host.Breakpoint(ctx, process.Breakpoint{
		Title:    "Review causal graph",
		Question: fmt.Sprintf("The orienter produced %d edges over %d variables for %q. Accept the graph?", len(graph), len(names), system),
		Context: map[string]any{
			"system":   system,
			"skeleton": skeleton,
			"graph":    graph,
			"notes":    notes,
		},
	})
	if errors.Is(err, process.ErrRejected) {
		host.Log(process.LogWarn, "causal graph rejected by reviewer")
		return process.Failure("causal graph rejected in review"), nil
	}
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: review: %w", processID, err)
	}

	return process.Report{
		Success: true,
		Summary: fmt.Sprintf("causal graph for %q: %d variables, %d edges", system, len(names), len(graph)),
		Fields: map[string]any{
			"variables": variables,
			"skeleton":  skeleton,
			"graph":     graph,
			"notes":     notes,
		},
	}, nil
}

func variableNames(variables []any) []string {
	names := make([]string, 0, len(variables))
	for _, raw := range variables {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := entry["name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

// pairNames enumerates unordered variable pairs in inventory order.
func pairNames(names []string) []map[string]any {
	var pairs []map[string]any
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			pairs = append(pairs, map[string]any{"a": names[i], "b": names[j]})
		}
	}
	return pairs
}

func shardPairs(pairs []map[string]any, size int) [][]map[string]any {
	var shards [][]map[string]any
	for start := 0; start < len(pairs); start += size {
		end := start + size
		if end > len(pairs) {
			end = len(pairs)
		}
		shards = append(shards, pairs[start:end])
	}
	return shards
}

func dependentEdges(shardResults []map[string]any) []any {
	var edges []any
	for _, result := range shardResults {
		for _, raw := range runtime.List(result, "edges") {
			edge, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if dependent, _ := edge["dependent"].(bool); dependent {
				edges = append(edges, edge)
			}
		}
	}
	return edges
}

package biasvariance

import (
	"context"
	"fmt"

	"praxis/internal/process"
	"praxis/internal/processes/runtime"
	"praxis/internal/schema"
	"praxis/internal/task"
)

const (
	processID      = "biasvariance"
	processVersion = "1.0.0"

	defaultResamples = 5
)

var diagnoseTask = &task.Def{
	Name:  "diagnose-regime",
	Agent: "ml-diagnostician",
	Instructions: "Read the model description and training signals. " +
		"Classify the error regime: underfit (high bias), overfit (high " +
		"variance), or balanced. Cite the specific curves or metrics behind " +
		"each judgement and distinguish the regimes explicitly.",
	Output: schema.Object("diagnosis",
		schema.Field("regime", schema.Enum("error regime", "underfit", "overfit", "balanced")),
		schema.Field("evidence", schema.ArrayOf(schema.String("cited signal"))),
		schema.Field("confidence", schema.NumberBetween("diagnostician confidence", 0, 1)),
	),
}

var resampleTask = &task.Def{
	Name:  "evaluate-resample",
	Agent: "resample-evaluator",
	Instructions: "You are assigned one resampled train/validation split of " +
		"a larger evaluation. Estimate the model's training and validation " +
		"error on your split only, from the supplied signals. Report raw " +
		"scores; do not aggregate across splits.",
	Output: schema.Object("resample scores",
		schema.Field("split", schema.String("assigned split label")),
		schema.Field("train_error", schema.NumberBetween("training error", 0, 1)),
		schema.Field("validation_error", schema.NumberBetween("validation error", 0, 1)),
	),
}

var adviseTask = &task.Def{
	Name:  "synthesize-advice",
	Agent: "ml-advisor",
	Instructions: "Given the diagnosis and the per-resample scores, " +
		"decompose the validation error into bias and variance " +
		"contributions, judging variance from the spread across resamples. " +
		"Recommend concrete remedies, each tied to the diagnosed regime and " +
		"ordered by expected payoff.",
	Output: schema.Object("remediation plan",
		schema.Field("decomposition", schema.Object("error decomposition",
			schema.Field("bias", schema.NumberBetween("bias contribution", 0, 1)),
			schema.Field("variance", schema.NumberBetween("variance contribution", 0, 1)),
			schema.Field("reading", schema.String("how to interpret the split")),
		)),
		schema.Field("remedies", schema.ArrayOf(schema.Object("one remedy",
			schema.Field("action", schema.String("what to change")),
			schema.Field("rationale", schema.String("link to the diagnosed regime")),
			schema.Field("priority", schema.Integer("1 is highest payoff")),
		))),
	),
}

// BiasVarianceProcess characterizes a model's error regime from concurrent
// resample evaluations.
type BiasVarianceProcess struct {
	process.Base
	resamples int
}

// Register adds the process factory to the registry.
func Register(reg *process.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(processID, func(cfg process.Config) (process.Process, error) {
		return New(runtime.IntOption(cfg, "resamples", defaultResamples)), nil
	})
}

// New creates the bias-variance analysis process with the given resample
// count.
func New(resamples int) *BiasVarianceProcess {
	if resamples <= 0 {
		resamples = defaultResamples
	}
	p := &BiasVarianceProcess{
		Base: process.NewBase(process.Info{
			ID:          processID,
			Name:        "Bias-Variance Analysis",
			Description: "Diagnoses a model's error regime, spreads evaluation over concurrent resamples, and orders remedies.",
			Version:     processVersion,
		}),
		resamples: resamples,
	}
	p.SetTasks(diagnoseTask, resampleTask, adviseTask)
	p.SetOutputs("diagnosis", "resamples", "decomposition", "remedies")
	return p
}

// Run executes the pipeline against the host runtime.
func (p *BiasVarianceProcess) Run(ctx context.Context, host process.Context, inputs map[string]any) (process.Report, error) {
	model, err := runtime.StringInput(processID, inputs, "model")
	if err != nil {
		return process.Report{}, err
	}
	signals := runtime.OptionalString(inputs, "signals")

	host.Log(process.LogInfo, "diagnosing error regime for %q", model)
	diagnosed, err := host.Task(ctx, diagnoseTask, map[string]any{
		"model":   model,
		"signals": signals,
	})
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, diagnoseTask.Name, err)
	}
	regime, _ := diagnosed["regime"].(string)

	host.Log(process.LogInfo, "evaluating %d resamples", p.resamples)
	calls := make([]process.TaskCall, 0, p.resamples)
	for i := 0; i < p.resamples; i++ {
		calls = append(calls, process.TaskCall{Def: resampleTask, Args: map[string]any{
			"model":   model,
			"signals": signals,
			"split":   fmt.Sprintf("resample-%02d", i+1),
		}})
	}
	scores, err := host.ParallelTasks(ctx, calls)
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, resampleTask.Name, err)
	}
	resamples := make([]any, 0, len(scores))
	for _, score := range scores {
		resamples = append(resamples, score)
	}

	host.Log(process.LogInfo, "synthesizing advice for %s regime", regime)
	advised, err := host.Task(ctx, adviseTask, map[string]any{
		"model":     model,
		"diagnosis": diagnosed,
		"resamples": resamples,
	})
	if err != nil {
		return process.Report{}, fmt.Errorf("%s: %s: %w", processID, adviseTask.Name, err)
	}
	remedies := runtime.List(advised, "remedies")
	if len(remedies) == 0 {
		host.Log(process.LogWarn, "advisor produced no remedies")
		return process.Failure("no remedies synthesized for %q", model), nil
	}

	return process.Report{
		Success: true,
		Summary: fmt.Sprintf("%s: %s regime, %d remedies over %d resamples", model, regime, len(remedies), len(resamples)),
		Fields: map[string]any{
			"diagnosis":     diagnosed,
			"resamples":     resamples,
			"decomposition": advised["decomposition"],
			"remedies":      remedies,
		},
	}, nil
}

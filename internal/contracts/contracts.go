package contracts

// Contract describes the minimum expectations for an agent role used by
// catalog processes.
type Contract struct {
	Agent     string
	Purpose   string
	Produces  []string
	Behaviors []string
}

var coreContracts = map[string]Contract{
	"argument-analyst": {
		Agent:   "argument-analyst",
		Purpose: "extract claims and premises from source material",
		Produces: []string{
			"argument-inventory",
		},
		Behaviors: []string{
			"quote sources rather than paraphrase when extracting claims",
			"record an argument even when it appears weak",
			"never merge distinct claims into one",
		},
	},
	"argument-critic": {
		Agent:   "argument-critic",
		Purpose: "map attack and support relations between arguments",
		Produces: []string{
			"attack-relations",
		},
		Behaviors: []string{
			"only relate arguments present in the inventory",
			"state the grounds for every attack",
		},
	},
	"argument-judge": {
		Agent:   "argument-judge",
		Purpose: "compute acceptable argument sets and a verdict",
		Produces: []string{
			"verdict",
		},
		Behaviors: []string{
			"base the verdict solely on the relation graph",
			"flag undecided arguments instead of forcing a side",
		},
	},
	"causal-modeler": {
		Agent:   "causal-modeler",
		Purpose: "identify candidate variables and their measurement types",
		Produces: []string{
			"variable-inventory",
		},
		Behaviors: []string{
			"prefer observed variables over hypothesized latents",
			"name each variable unambiguously",
		},
	},
	"causal-analyst": {
		Agent:   "causal-analyst",
		Purpose: "screen variable pairs for dependence",
		Produces: []string{
			"skeleton-shard",
		},
		Behaviors: []string{
			"test only the pairs assigned to the shard",
			"report strength and conditioning set for every edge",
		},
	},
	"causal-orienter": {
		Agent:   "causal-orienter",
		Purpose: "orient skeleton edges into a directed graph",
		Produces: []string{
			"causal-graph",
		},
		Behaviors: []string{
			"leave an edge undirected when orientation is not forced",
			"never introduce edges absent from the skeleton",
		},
	},
	"decision-analyst": {
		Agent:   "decision-analyst",
		Purpose: "frame options, outcomes, and uncertainties",
		Produces: []string{
			"decision-frame",
		},
		Behaviors: []string{
			"enumerate options exhaustively before assessing any",
			"separate uncertainties from preferences",
		},
	},
	"utility-assessor": {
		Agent:   "utility-assessor",
		Purpose: "assign probabilities and utilities to framed outcomes",
		Produces: []string{
			"utility-table",
		},
		Behaviors: []string{
			"decline to assess outcomes with no stated basis",
			"keep probabilities within each uncertainty summing to one",
		},
	},
	"decision-recommender": {
		Agent:   "decision-recommender",
		Purpose: "rank options by expected utility and recommend",
		Produces: []string{
			"recommendation",
		},
		Behaviors: []string{
			"show the expected-utility computation per option",
			"note sensitivity to the dominant uncertainty",
		},
	},
	"ml-diagnostician": {
		Agent:   "ml-diagnostician",
		Purpose: "characterize a model's error regime from training signals",
		Produces: []string{
			"diagnosis",
		},
		Behaviors: []string{
			"distinguish underfitting from overfitting explicitly",
			"cite the training curves behind each judgement",
		},
	},
	"resample-evaluator": {
		Agent:   "resample-evaluator",
		Purpose: "evaluate a model variant on one resampled split",
		Produces: []string{
			"resample-scores",
		},
		Behaviors: []string{
			"evaluate only the assigned split",
			"report raw scores without aggregation",
		},
	},
	"ml-advisor": {
		Agent:   "ml-advisor",
		Purpose: "turn diagnosis and resample spread into concrete advice",
		Produces: []string{
			"remediation-plan",
		},
		Behaviors: []string{
			"tie each remedy to the diagnosed regime",
			"order remedies by expected payoff",
		},
	},
}

// ContractForAgent returns the contract for the given agent, if it exists.
func ContractForAgent(agent string) (Contract, bool) {
	contract, ok := coreContracts[agent]
	return contract, ok
}

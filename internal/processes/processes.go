package processes

import (
	"praxis/internal/process"
	"praxis/internal/processes/argumentation"
	"praxis/internal/processes/biasvariance"
	"praxis/internal/processes/causal"
	"praxis/internal/processes/decision"
)

// RegisterBuiltins installs all of the built-in process factories into the
// provided registry.
func RegisterBuiltins(reg *process.Registry) {
	if reg == nil {
		return
	}
	argumentation.Register(reg)
	biasvariance.Register(reg)
	causal.Register(reg)
	decision.Register(reg)
}

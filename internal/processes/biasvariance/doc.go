package biasvariance

// Package biasvariance diagnoses a machine-learning model's error regime
// and recommends remediation.
//
// Required inputs:
//   - `model` (string): description of the model, its task, and how it was
//     trained.
//   - `signals` (string, optional): training curves, metric tables, or
//     other evaluation evidence.
//
// Pipeline:
//  1. diagnose-regime: the ml-diagnostician reads the training signals and
//     classifies the regime (underfit, overfit, balanced) with cited
//     evidence.
//  2. evaluate-resample: the model is evaluated on several resampled
//     train/validation splits concurrently, one resample-evaluator call per
//     split, to expose score spread.
//  3. synthesize-advice: the ml-advisor decomposes the error into bias and
//     variance contributions and orders concrete remedies by payoff.
//
// The resample count is configurable via the `resamples` process option.
// Report fields: diagnosis, resamples, decomposition, remedies.

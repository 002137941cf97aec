package decision

// Package decision ranks options for a stated decision problem by expected
// utility.
//
// Required inputs:
//   - `decision` (string): the decision problem, e.g. "choose a database
//     for the billing service".
//   - `constraints` (string, optional): hard constraints the framing must
//     respect.
//
// Pipeline:
//  1. frame-decision: the decision-analyst enumerates options, the
//     uncertainties that bear on them, and the objective.
//  2. assess-utilities: the utility-assessor assigns outcome utilities and
//     probabilities. When no utilities come back the run ends unsuccessfully
//     rather than recommending on an empty table.
//  3. recommend: the decision-recommender ranks options by expected utility
//     and notes sensitivity to the dominant uncertainty.
//
// Report fields: options, utilities, ranking, recommendation, sensitivity.

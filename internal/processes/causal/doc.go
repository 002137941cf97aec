package causal

// Package causal reconstructs a causal graph for a system description.
//
// Required inputs:
//   - `system` (string): description of the system or dataset under study.
//   - `evidence` (string, optional): observations, study notes, or data
//     summaries the analysts should ground their judgements in.
//
// Pipeline:
//  1. inventory-variables: the causal-modeler names the variables worth
//     modelling, with measurement kinds.
//  2. screen-pairs: every unordered variable pair is screened for
//     dependence. Pairs are chunked into shards and the shards run
//     concurrently, one causal-analyst call each. Dependent pairs form the
//     undirected skeleton.
//  3. orient-edges: the causal-orienter turns the skeleton into a directed
//     graph, leaving edges undirected where orientation is not forced.
//  4. Human sensitivity review of the oriented graph closes the run.
//
// The shard size is configurable via the `shard_size` process option.
// Report fields: variables, skeleton, graph, notes.

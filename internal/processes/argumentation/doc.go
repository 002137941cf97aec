package argumentation

// Package argumentation runs a structured debate analysis over a topic.
//
// Required inputs:
//   - `topic` (string): the question or proposition under examination.
//   - `material` (string, optional): source text the analyst should mine;
//     when absent the analyst argues from general knowledge and says so.
//
// Pipeline:
//  1. extract-arguments: the argument-analyst mines claims, premises, and
//     stances into an argument inventory.
//  2. map-attacks: the argument-critic relates inventory entries with attack
//     edges (rebut, undercut, undermine), each with stated grounds.
//  3. Human review of the attack graph before any verdict is computed.
//  4. adjudicate: the argument-judge partitions arguments into accepted,
//     rejected, and undecided sets and issues a verdict with rationale.
//
// Report fields: arguments, attacks, accepted, verdict, rationale.
// The run short-circuits with an unsuccessful report when the analyst finds
// no arguments at all; a rejected review also ends the run unsuccessfully.

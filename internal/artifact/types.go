// Package artifact defines the filesystem-level contracts for files a run
// produces. Each artifact has a stable identifier, kind, and a resolver that
// maps to the actual path within the run directory.
package artifact

import (
	"fmt"
	"path/filepath"
	"time"

	"praxis/internal/runspace"
)

// Kind captures the storage shape and serialization format for an artifact.
type Kind string

const (
	// KindDocument represents a markdown-like text document with YAML frontmatter.
	KindDocument Kind = "document"
	// KindJSON represents a JSON document enriched with a _praxis metadata block.
	KindJSON Kind = "json"
	// KindMarker represents an empty file used as a marker/flag.
	KindMarker Kind = "marker"
)

// PathResolver returns the fully-qualified path to an artifact for a run.
type PathResolver func(*runspace.Run) string

// Ref declares a stable identifier and metadata for an artifact.
type Ref struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	path        PathResolver
}

// Path resolves the artifact path for the provided run.
func (r Ref) Path(run *runspace.Run) string {
	if run == nil || r.path == nil {
		return ""
	}
	return filepath.Clean(r.path(run))
}

// Validate ensures the reference is well-formed.
func (r Ref) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("artifact: id is required")
	}
	if r.Kind == "" {
		return fmt.Errorf("artifact: kind is required for %s", r.ID)
	}
	if r.path == nil {
		return fmt.Errorf("artifact: path resolver missing for %s", r.ID)
	}
	return nil
}

// Metadata captures provenance stored inside frontmatter or metadata blocks.
type Metadata struct {
	ArtifactID string
	ProcessID  string
	Version    string
	RunID      string
	Inputs     []string
	CreatedAt  time.Time
	Notes      map[string]string
}

// WithDefaults ensures metadata carries the artifact ID and timestamps.
func (m Metadata) WithDefaults(ref Ref, now time.Time) Metadata {
	clone := m
	if clone.ArtifactID == "" {
		clone.ArtifactID = ref.ID
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now.UTC()
	} else {
		clone.CreatedAt = clone.CreatedAt.UTC()
	}
	return clone
}

// ValidateFor ensures metadata matches the artifact contract.
func (m Metadata) ValidateFor(ref Ref) error {
	if m.ArtifactID != ref.ID {
		return fmt.Errorf("artifact: metadata id %s does not match ref %s", m.ArtifactID, ref.ID)
	}
	if m.ProcessID == "" {
		return fmt.Errorf("artifact: process id is required for %s", ref.ID)
	}
	if m.Version == "" {
		return fmt.Errorf("artifact: version is required for %s", ref.ID)
	}
	return nil
}

// State captures the readiness of an artifact on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// CheckResult captures Store.Check results.
type CheckResult struct {
	Ref      Ref
	Path     string
	State    State
	Metadata *Metadata
	Err      error
}

func newDocRef(id, name, desc string, resolver PathResolver) Ref {
	return Ref{ID: id, Name: name, Description: desc, Kind: KindDocument, path: resolver}
}

func newJSONRef(id, name, desc string, resolver PathResolver) Ref {
	return Ref{ID: id, Name: name, Description: desc, Kind: KindJSON, path: resolver}
}

func newMarkerRef(id, name, desc string, resolver PathResolver) Ref {
	return Ref{ID: id, Name: name, Description: desc, Kind: KindMarker, path: resolver}
}

// Canonical artifact references for a process run.
var (
	ReportDoc = newDocRef("run-report", "Run Report", "REPORT.md summarizing the aggregate process outcome",
		func(run *runspace.Run) string { return run.ReportPath() })
	ManifestJSON = newJSONRef("run-manifest", "Run Manifest", "run.json recording the run's identity and status",
		func(run *runspace.Run) string { return run.ManifestPath() })
	CompleteMarker = newMarkerRef("run-complete", "Run Complete Marker", "Marker written when a run finishes successfully",
		func(run *runspace.Run) string { return filepath.Join(run.Dir(), runspace.MarkerComplete) })
	FailedMarker = newMarkerRef("run-failed", "Run Failed Marker", "Marker written when a run ends in failure",
		func(run *runspace.Run) string { return filepath.Join(run.Dir(), runspace.MarkerFailed) })
	ReviewMarker = newMarkerRef("run-awaiting-review", "Awaiting Review Marker", "Marker present while a breakpoint waits for a human",
		func(run *runspace.Run) string { return filepath.Join(run.Dir(), runspace.MarkerAwaitingReview) })
)

// TaskInputRef builds the per-effect input artifact reference.
func TaskInputRef(effectID string) Ref {
	return newJSONRef(
		"task-input-"+effectID,
		"Task Input",
		"input.json persisted before dispatching the task",
		func(run *runspace.Run) string { return run.TaskInputPath(effectID) },
	)
}

// TaskResultRef builds the per-effect result artifact reference.
func TaskResultRef(effectID string) Ref {
	return newJSONRef(
		"task-result-"+effectID,
		"Task Result",
		"result.json produced by the agent for this effect",
		func(run *runspace.Run) string { return run.TaskResultPath(effectID) },
	)
}

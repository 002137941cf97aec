// Package runspace defines the on-disk layout of a single process run. All
// run state lives under .praxis/runs/<runID>/ so it can be inspected and
// git-tracked after the fact.
package runspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// File names for run artifacts.
const (
	FileReport   = "REPORT.md"
	FileManifest = "run.json"
	FileLogbook  = "logbook.log"

	TasksDirName = "tasks"
)

// Marker files (empty files that signal run state transitions).
const (
	MarkerComplete       = ".complete"
	MarkerFailed         = ".failed"
	MarkerAwaitingReview = ".awaiting-review"
)

// NewRunID derives a readable, unique run identifier for a process.
func NewRunID(processID string, now time.Time) string {
	base := strings.ToLower(strings.TrimSpace(processID))
	base = strings.ReplaceAll(base, " ", "-")
	if base == "" {
		base = "run"
	}
	stamp := now.UTC().Format("20060102-150405")
	return fmt.Sprintf("%s-%s-%s", base, stamp, uuid.NewString()[:8])
}

// Run manages one run directory.
type Run struct {
	runsDir string
	id      string
}

// New binds a run to the runs directory.
func New(runsDir, runID string) *Run {
	return &Run{runsDir: runsDir, id: runID}
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Dir returns the run's base directory.
func (r *Run) Dir() string {
	return filepath.Join(r.runsDir, r.id)
}

// TasksDir returns the directory holding per-effect task IO.
func (r *Run) TasksDir() string {
	return filepath.Join(r.Dir(), TasksDirName)
}

// EffectDir returns the directory for one task invocation.
func (r *Run) EffectDir(effectID string) string {
	return filepath.Join(r.TasksDir(), effectID)
}

// TaskInputPath returns tasks/<effectID>/input.json.
func (r *Run) TaskInputPath(effectID string) string {
	return filepath.Join(r.EffectDir(effectID), "input.json")
}

// TaskResultPath returns tasks/<effectID>/result.json.
func (r *Run) TaskResultPath(effectID string) string {
	return filepath.Join(r.EffectDir(effectID), "result.json")
}

// ReportPath returns the human-readable run report.
func (r *Run) ReportPath() string {
	return filepath.Join(r.Dir(), FileReport)
}

// ManifestPath returns the machine-readable run manifest.
func (r *Run) ManifestPath() string {
	return filepath.Join(r.Dir(), FileManifest)
}

// LogbookPath returns the run's logbook file.
func (r *Run) LogbookPath() string {
	return filepath.Join(r.Dir(), FileLogbook)
}

// Initialize creates the run directory structure.
func (r *Run) Initialize() error {
	for _, dir := range []string{r.Dir(), r.TasksDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("runspace: create %s: %w", dir, err)
		}
	}
	return nil
}

// WriteMarker creates an empty marker file in the run directory.
func (r *Run) WriteMarker(marker string) error {
	return os.WriteFile(filepath.Join(r.Dir(), marker), []byte{}, 0o644)
}

// ClearMarker removes a marker if present.
func (r *Run) ClearMarker(marker string) error {
	err := os.Remove(filepath.Join(r.Dir(), marker))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HasMarker checks whether a marker file exists.
func (r *Run) HasMarker(marker string) bool {
	info, err := os.Stat(filepath.Join(r.Dir(), marker))
	return err == nil && !info.IsDir()
}

// Completed reports whether the run finished successfully.
func (r *Run) Completed() bool {
	return r.HasMarker(MarkerComplete)
}

// Failed reports whether the run ended in failure.
func (r *Run) Failed() bool {
	return r.HasMarker(MarkerFailed)
}

// AwaitingReview reports whether the run is paused on a breakpoint.
func (r *Run) AwaitingReview() bool {
	return r.HasMarker(MarkerAwaitingReview)
}

// List returns the run IDs present under runsDir, newest name last.
func List(runsDir string) ([]string, error) {
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("runspace: read %s: %w", runsDir, err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

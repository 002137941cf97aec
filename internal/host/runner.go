package host

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"praxis/internal/artifact"
	"praxis/internal/process"
	"praxis/internal/runspace"
)

// Manifest is the run.json record describing one finished run.
type Manifest struct {
	RunID          string    `json:"run_id"`
	ProcessID      string    `json:"process_id"`
	ProcessVersion string    `json:"process_version"`
	Status         string    `json:"status"`
	Success        bool      `json:"success"`
	Summary        string    `json:"summary,omitempty"`
	Tasks          int       `json:"tasks"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Error          string    `json:"error,omitempty"`
}

// Run statuses recorded in the manifest.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunProcess drives one process run end to end: execute, then persist
// REPORT.md, run.json, and the completion marker.
func RunProcess(ctx context.Context, h *Host, proc process.Process, inputs map[string]any) (process.Report, error) {
	info := proc.Info()
	h.book.Info("run %s started (%s v%s)", h.run.ID(), info.ID, info.Version)

	report, runErr := proc.Run(ctx, h, inputs)
	if err := h.finalize(report, runErr); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			h.book.Error("finalize: %v", err)
		}
	}
	return report, runErr
}

func (h *Host) finalize(report process.Report, runErr error) error {
	finished := h.now()
	manifest := Manifest{
		RunID:          h.run.ID(),
		ProcessID:      h.info.ID,
		ProcessVersion: h.info.Version,
		Status:         StatusCompleted,
		Success:        runErr == nil && report.Success,
		Summary:        report.Summary,
		Tasks:          h.tasksDispatched(),
		StartedAt:      h.started.UTC(),
		FinishedAt:     finished.UTC(),
	}
	if runErr != nil {
		manifest.Status = StatusFailed
		manifest.Error = runErr.Error()
	}

	body, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("host: encode manifest: %w", err)
	}
	if err := h.artifacts.Write(artifact.ManifestJSON, body, h.metadata("")); err != nil {
		return fmt.Errorf("host: write manifest: %w", err)
	}
	if err := h.artifacts.Write(artifact.ReportDoc, renderReport(h.info, manifest, report), h.metadata("")); err != nil {
		return fmt.Errorf("host: write report: %w", err)
	}

	marker := runspace.MarkerComplete
	if runErr != nil {
		marker = runspace.MarkerFailed
	}
	if err := h.run.WriteMarker(marker); err != nil {
		return fmt.Errorf("host: write %s: %w", marker, err)
	}
	h.book.Info("run %s %s", h.run.ID(), manifest.Status)
	return nil
}

func renderReport(info process.Info, manifest Manifest, report process.Report) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", info.Name)
	fmt.Fprintf(&b, "- Run: %s\n", manifest.RunID)
	fmt.Fprintf(&b, "- Status: %s\n", manifest.Status)
	fmt.Fprintf(&b, "- Success: %t\n", manifest.Success)
	fmt.Fprintf(&b, "- Tasks dispatched: %d\n\n", manifest.Tasks)
	if report.Summary != "" {
		fmt.Fprintf(&b, "## Summary\n\n%s\n\n", report.Summary)
	}
	if manifest.Error != "" {
		fmt.Fprintf(&b, "## Error\n\n%s\n\n", manifest.Error)
	}
	for _, name := range report.FieldNames() {
		fmt.Fprintf(&b, "## %s\n\n", name)
		encoded, err := json.MarshalIndent(report.Fields[name], "", "  ")
		if err != nil {
			fmt.Fprintf(&b, "(unencodable: %v)\n\n", err)
			continue
		}
		fmt.Fprintf(&b, "```json\n%s\n```\n\n", encoded)
	}
	return []byte(b.String())
}

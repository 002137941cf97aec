package biasvariance

import (
	"context"
	"fmt"
	"testing"

	"praxis/internal/contracts"
	"praxis/internal/process/processtest"
)

func scriptedHost(resamples int) *processtest.Context {
	splits := make([]map[string]any, 0, resamples)
	for i := 0; i < resamples; i++ {
		splits = append(splits, map[string]any{
			"split":            fmt.Sprintf("resample-%02d", i+1),
			"train_error":      0.05,
			"validation_error": 0.18 + float64(i)*0.01,
		})
	}
	return processtest.New(map[string][]map[string]any{
		"diagnose-regime": {{
			"regime":     "overfit",
			"evidence":   []any{"validation loss diverges after epoch 12"},
			"confidence": 0.8,
		}},
		"evaluate-resample": splits,
		"synthesize-advice": {{
			"decomposition": map[string]any{
				"bias":     0.05,
				"variance": 0.14,
				"reading":  "spread across resamples dominates the gap",
			},
			"remedies": []any{
				map[string]any{"action": "add dropout", "rationale": "shrinks variance in the overfit regime", "priority": 1},
				map[string]any{"action": "collect more data", "rationale": "variance falls with sample size", "priority": 2},
			},
		}},
	})
}

func TestRunFansOutResamples(t *testing.T) {
	host := scriptedHost(3)
	report, err := New(3).Run(context.Background(), host, map[string]any{"model": "gbdt churn model"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success, got %+v", report)
	}

	evaluations := 0
	for _, call := range host.Calls {
		if call.Task == "evaluate-resample" {
			evaluations++
			if call.Args["split"] == "" {
				t.Fatalf("resample call missing split label: %+v", call)
			}
		}
	}
	if evaluations != 3 {
		t.Fatalf("expected 3 resample dispatches, got %d", evaluations)
	}

	resamples, ok := report.Fields["resamples"].([]any)
	if !ok || len(resamples) != 3 {
		t.Fatalf("unexpected resamples field: %v", report.Fields["resamples"])
	}
	if errs := contracts.ValidateReport(New(3), report); len(errs) != 0 {
		t.Fatalf("report fields drift from declaration: %v", errs)
	}
}

func TestRunShortCircuitsWithoutRemedies(t *testing.T) {
	host := scriptedHost(2)
	host.Results["synthesize-advice"] = []map[string]any{{
		"decomposition": map[string]any{"bias": 0.1, "variance": 0.1, "reading": "inconclusive"},
		"remedies":      []any{},
	}}
	report, err := New(2).Run(context.Background(), host, map[string]any{"model": "gbdt churn model"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Success {
		t.Fatalf("expected unsuccessful report, got %+v", report)
	}
}

func TestNewClampsResampleCount(t *testing.T) {
	if got := New(0).resamples; got != defaultResamples {
		t.Fatalf("expected default resample count, got %d", got)
	}
	if got := New(-2).resamples; got != defaultResamples {
		t.Fatalf("expected default resample count, got %d", got)
	}
}

func TestProcessPassesContractLint(t *testing.T) {
	if errs := contracts.ValidateProcess(New(0)); len(errs) != 0 {
		t.Fatalf("contract lint failed: %v", errs)
	}
}

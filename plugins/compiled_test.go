package plugins

import (
	"context"
	"testing"

	"praxis/internal/process"
	"praxis/internal/process/processtest"
)

func TestCompileBuildsProcessMetadata(t *testing.T) {
	p, err := Compile(sampleProcessDefinition())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	info := p.Info()
	if info.ID != "literature-survey" || info.Version != "1.0.0" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if len(p.Tasks()) != 2 {
		t.Fatalf("expected 2 task defs, got %d", len(p.Tasks()))
	}
	outputs := p.Outputs()
	if len(outputs) != 2 || outputs[0] != "collect_sources" || outputs[1] != "grades" {
		t.Fatalf("unexpected outputs: %v", outputs)
	}
}

func TestCompileRejectsInvalidDefinition(t *testing.T) {
	def := sampleProcessDefinition()
	def.Phases = nil
	if _, err := Compile(def); err == nil {
		t.Fatalf("expected error for empty pipeline")
	}
}

func TestCompiledProcessRunsPhasesInOrder(t *testing.T) {
	p, err := Compile(sampleProcessDefinition())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	host := processtest.New(map[string][]map[string]any{
		"collect-sources": {{"sources": []any{"paper-a", "paper-b"}}},
		"grade-sources":   {{"grades": []any{"strong", "weak"}}},
	})

	report, err := p.Run(context.Background(), host, map[string]any{"topic": "bias"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success, got %+v", report)
	}
	names := host.TaskNames()
	if len(names) != 2 || names[0] != "collect-sources" || names[1] != "grade-sources" {
		t.Fatalf("unexpected dispatch order: %v", names)
	}
	// The second phase must see the first phase's result among its args.
	secondArgs := host.Calls[1].Args
	if _, ok := secondArgs["collect_sources"]; !ok {
		t.Fatalf("grade phase missing upstream result: %v", secondArgs)
	}
	if _, ok := report.Fields["grades"]; !ok {
		t.Fatalf("report missing grades field: %v", report.Fields)
	}
	if len(host.Breakpoints) != 1 || host.Breakpoints[0].Title != "Review source grades" {
		t.Fatalf("unexpected breakpoints: %+v", host.Breakpoints)
	}
}

func TestCompiledProcessShortCircuitsOnRejection(t *testing.T) {
	p, err := Compile(sampleProcessDefinition())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	host := processtest.New(map[string][]map[string]any{
		"collect-sources": {{"sources": []any{"paper-a"}}},
		"grade-sources":   {{"grades": []any{"strong"}}},
	})
	host.ReviewErr = process.ErrRejected

	report, err := p.Run(context.Background(), host, map[string]any{"topic": "bias"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Success {
		t.Fatalf("rejected review should fail the report")
	}
	if len(report.Fields) != 0 {
		t.Fatalf("failure report should not carry fields: %v", report.Fields)
	}
}

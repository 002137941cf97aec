package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleDefinitionYAML = `id: literature-survey
version: 1.0.0
description: Collect and grade sources.
phases:
  - task: collect-sources
    agent: argument-analyst
    prompt: List sources relevant to the topic.
    output:
      type: object
      properties:
        sources:
          type: array
          items:
            type: string
      required: [sources]
  - task: grade-sources
    agent: argument-judge
    prompt: Grade each collected source.
    field: grades
    output:
      type: object
      properties:
        grades:
          type: array
          items:
            type: string
      required: [grades]
    breakpoint:
      title: Review source grades
      question: Do the grades look defensible?
`

func TestParseDefinitionYAML(t *testing.T) {
	def, err := ParseDefinitionYAML([]byte(sampleDefinitionYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.ID != "literature-survey" || len(def.Phases) != 2 {
		t.Fatalf("unexpected definition: %+v", def)
	}
	wantBreakpoint := &BreakpointDefinition{
		Title:    "Review source grades",
		Question: "Do the grades look defensible?",
	}
	if diff := cmp.Diff(wantBreakpoint, def.Phases[1].Breakpoint); diff != "" {
		t.Fatalf("breakpoint mismatch (-want +got):\n%s", diff)
	}
	if _, err := Compile(def); err != nil {
		t.Fatalf("parsed definition should compile: %v", err)
	}
}

func TestParseDefinitionYAMLErrors(t *testing.T) {
	if _, err := ParseDefinitionYAML([]byte("")); err == nil {
		t.Fatalf("expected empty payload to fail validation")
	}
	if _, err := ParseDefinitionYAML([]byte("id: orphan\nversion: 1.0.0\n")); err == nil {
		t.Fatalf("expected definition without phases to fail validation")
	}
}

func TestLoadDefinitionDir(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "survey.yaml")
	if err := os.WriteFile(path, []byte(sampleDefinitionYAML), 0644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	defs, err := LoadDefinitionDir(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	if defs[0].Path != path {
		t.Fatalf("expected path %s, got %s", path, defs[0].Path)
	}
	if defs[0].Definition.ID != "literature-survey" {
		t.Fatalf("unexpected id: %+v", defs[0].Definition)
	}
}

func TestLoadDefinitionDirMissing(t *testing.T) {
	defs, err := LoadDefinitionDir(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if defs != nil {
		t.Fatalf("expected nil slice for missing dir, got %v", defs)
	}
}

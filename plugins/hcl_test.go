package plugins

import (
	"os"
	"path/filepath"
	"testing"
)

const hclPluginSource = `process "hcl-survey" {
  version     = "1.0.0"
  description = "Collect and grade sources."

  phase "collect-sources" {
    agent  = "argument-analyst"
    prompt = "List sources relevant to the topic."
    output = {
      type = "object"
      properties = {
        sources = {
          type  = "array"
          items = { type = "string" }
        }
      }
      required = ["sources"]
    }
  }

  phase "grade-sources" {
    agent  = "argument-judge"
    prompt = "Grade each collected source."
    field  = "grades"
    output = {
      type = "object"
      properties = {
        grades = {
          type  = "array"
          items = { type = "string" }
        }
      }
      required = ["grades"]
    }

    breakpoint {
      title    = "Review source grades"
      question = "Do the grades look defensible?"
    }
  }
}
`

func TestLoadHCLDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "survey.hcl"), []byte(hclPluginSource), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	defs, err := LoadHCLDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load hcl defs: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	def := defs[0].Definition
	if def.ID != "hcl-survey" || len(def.Phases) != 2 {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if def.Phases[1].Breakpoint == nil || def.Phases[1].Breakpoint.Question != "Do the grades look defensible?" {
		t.Fatalf("breakpoint not decoded: %+v", def.Phases[1])
	}
	if _, err := Compile(def); err != nil {
		t.Fatalf("loaded definition should compile: %v", err)
	}
}

func TestLoadHCLDefinitionDirRejectsBadSchema(t *testing.T) {
	dir := t.TempDir()
	broken := `process "broken" {
  version = "1.0.0"
  phase "step" {
    agent  = "argument-analyst"
    prompt = "Run."
    output = { type = "tuple" }
  }
}
`
	if err := os.WriteFile(filepath.Join(dir, "broken.hcl"), []byte(broken), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	if _, err := LoadHCLDefinitionDir(dir); err == nil {
		t.Fatalf("expected error for unknown schema type")
	}
}

func TestLoadHCLDefinitionDirMissing(t *testing.T) {
	defs, err := LoadHCLDefinitionDir(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if defs != nil {
		t.Fatalf("expected nil slice for missing dir, got %v", defs)
	}
}

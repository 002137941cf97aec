package plugins

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"praxis/internal/config"
	"praxis/internal/process"
)

func TestRegisterPluginProcesses(t *testing.T) {
	cfg := initTestConfig(t)
	path := filepath.Join(cfg.ProcessesDir(), "survey.yaml")
	if err := os.WriteFile(path, []byte(sampleDefinitionYAML), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	reg := process.NewRegistry()
	if err := RegisterPluginProcesses(reg, cfg); err != nil {
		t.Fatalf("register plugins: %v", err)
	}
	p, err := reg.Resolve("literature-survey", nil)
	if err != nil {
		t.Fatalf("resolve plugin: %v", err)
	}
	if len(p.Tasks()) != 2 {
		t.Fatalf("expected 2 task defs, got %d", len(p.Tasks()))
	}
}

func TestRegisterPluginProcessesDuplicateID(t *testing.T) {
	cfg := initTestConfig(t)
	hclTwin := strings.Replace(hclPluginSource, `process "hcl-survey"`, `process "literature-survey"`, 1)
	if err := os.WriteFile(filepath.Join(cfg.ProcessesDir(), "a.yaml"), []byte(sampleDefinitionYAML), 0644); err != nil {
		t.Fatalf("write yaml plugin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.ProcessesDir(), "b.hcl"), []byte(hclTwin), 0644); err != nil {
		t.Fatalf("write hcl plugin: %v", err)
	}
	reg := process.NewRegistry()
	err := RegisterPluginProcesses(reg, cfg)
	if err == nil || !strings.Contains(err.Error(), "duplicate process id") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestRegisterPluginProcessesEmptyDir(t *testing.T) {
	cfg := initTestConfig(t)
	reg := process.NewRegistry()
	if err := RegisterPluginProcesses(reg, cfg); err != nil {
		t.Fatalf("empty processes dir should register nothing: %v", err)
	}
	if ids := reg.IDs(); len(ids) != 0 {
		t.Fatalf("expected empty registry, got %v", ids)
	}
}

func initTestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	if err := config.InitPraxisDir(root); err != nil {
		t.Fatalf("init praxis dir: %v", err)
	}
	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

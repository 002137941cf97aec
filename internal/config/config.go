// Package config handles configuration and the .praxis directory structure.
// Every project that uses praxis gets a .praxis/ folder created in its root.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// PraxisDir is the name of the directory we create in each project.
	PraxisDir = ".praxis"

	configFileName = "config.yaml"
)

const defaultProjectConfigYAML = `# praxis project configuration
version: 1

# Executor used by the local host when dispatching tasks.
# mode: scripted runs canned fixtures; mode: command launches an external
# agent binary against the task input/result JSON convention.
executor:
  mode: scripted
  # command: ["my-agent", "--task"]

runtime:
  # Maximum concurrent task calls inside a parallel fan-out phase.
  max_parallel: 4

review:
  # How ctx.breakpoint pauses resolve outside the TUI:
  # auto (approve), deny, bridge (wait for the HTTP review bridge).
  policy: auto

bridge:
  # HTTP review bridge bind address (used when review.policy is bridge).
  # host: 127.0.0.1
  # port: 8765
`

// ExecutorConfig selects how the local host dispatches task invocations.
type ExecutorConfig struct {
	Mode    string   `yaml:"mode"`
	Command []string `yaml:"command,omitempty"`
}

// RuntimeConfig captures local host execution limits.
type RuntimeConfig struct {
	MaxParallel int `yaml:"max_parallel"`
}

// ReviewConfig decides how breakpoints resolve when no human is attached.
type ReviewConfig struct {
	Policy string `yaml:"policy"`
}

// BridgeConfig carries the HTTP review bridge bind address.
type BridgeConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// ProjectConfig models .praxis/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Executor ExecutorConfig `yaml:"executor"`
	Runtime  RuntimeConfig  `yaml:"runtime"`
	Review   ReviewConfig   `yaml:"review"`
	Bridge   BridgeConfig   `yaml:"bridge"`
}

// Config holds the runtime configuration for praxis.
type Config struct {
	// ProjectDir is the directory where the user ran `praxis` from.
	ProjectDir string

	// PraxisProjectDir is ProjectDir/.praxis.
	PraxisProjectDir string

	Project ProjectConfig
}

// InitPraxisDir creates the .praxis directory structure in the given project
// directory.
//
// Structure created:
// .praxis/
// ├── logs/       <- long-lived praxis.log
// ├── state/      <- run history database
// ├── runs/       <- one directory per process run (task IO, report, logbook)
// └── processes/  <- plugin process definitions (yaml, hcl, go scripts)
func InitPraxisDir(projectDir string) error {
	praxisDir := filepath.Join(projectDir, PraxisDir)
	dirs := []string{
		filepath.Join(praxisDir, "logs"),
		filepath.Join(praxisDir, "state"),
		filepath.Join(praxisDir, "runs"),
		filepath.Join(praxisDir, "processes"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	configPath := filepath.Join(praxisDir, configFileName)
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(configPath, []byte(defaultProjectConfigYAML), 0o644); err != nil {
			return fmt.Errorf("config: write default config: %w", err)
		}
	}
	return nil
}

// NewConfig loads the project configuration rooted at projectDir.
func NewConfig(projectDir string) (*Config, error) {
	absolute, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir:       absolute,
		PraxisProjectDir: filepath.Join(absolute, PraxisDir),
	}
	project, err := loadProjectConfig(filepath.Join(cfg.PraxisProjectDir, configFileName))
	if err != nil {
		return nil, err
	}
	cfg.Project = project
	return cfg, nil
}

func loadProjectConfig(path string) (ProjectConfig, error) {
	defaults := ProjectConfig{
		Version:  1,
		Executor: ExecutorConfig{Mode: "scripted"},
		Runtime:  RuntimeConfig{MaxParallel: 4},
		Review:   ReviewConfig{Policy: "auto"},
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults, nil
		}
		return ProjectConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	parsed := defaults
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := parsed.validate(); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return parsed, nil
}

func (p ProjectConfig) validate() error {
	switch strings.TrimSpace(p.Executor.Mode) {
	case "scripted", "command":
	default:
		return fmt.Errorf("executor.mode must be scripted or command, got %q", p.Executor.Mode)
	}
	if p.Executor.Mode == "command" && len(p.Executor.Command) == 0 {
		return fmt.Errorf("executor.command is required when mode is command")
	}
	if p.Runtime.MaxParallel < 0 {
		return fmt.Errorf("runtime.max_parallel must be >= 0")
	}
	switch strings.TrimSpace(p.Review.Policy) {
	case "auto", "deny", "bridge":
	default:
		return fmt.Errorf("review.policy must be auto, deny, or bridge, got %q", p.Review.Policy)
	}
	return nil
}

// RunsDir returns the directory holding per-run state.
func (c *Config) RunsDir() string {
	return filepath.Join(c.PraxisProjectDir, "runs")
}

// StateDir returns the directory holding the run history database.
func (c *Config) StateDir() string {
	return filepath.Join(c.PraxisProjectDir, "state")
}

// ProcessesDir returns the plugin process definition directory.
func (c *Config) ProcessesDir() string {
	return filepath.Join(c.PraxisProjectDir, "processes")
}

// HistoryDBPath returns the run history database location.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.StateDir(), "history.db")
}

// cmd/process-runner/main.go
//
// Headless runner for a single catalog or plugin process. Useful for CI and
// scripting where the TUI is unwanted: it resolves the process, executes the
// run under .praxis/runs/, records history, and prints the outcome.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"praxis/internal/config"
	"praxis/internal/host"
	"praxis/internal/process"
	"praxis/internal/processes"
	"praxis/internal/store"
	"praxis/plugins"
)

func main() {
	processID := flag.String("process", "", "process identifier to execute (e.g. causal-discovery)")
	projectDir := flag.String("project", "", "path to the project directory (defaults to cwd)")
	inputFile := flag.String("input-file", "", "path to YAML/JSON file with process inputs")
	configFile := flag.String("config-file", "", "path to YAML/JSON file with process config overrides")
	review := flag.String("review", "", "override review policy (auto, deny)")
	inputs := keyValueFlag{}
	flag.Var(&inputs, "input", "process input (key=value, repeatable)")
	sets := keyValueFlag{}
	flag.Var(&sets, "set", "process config override (key=value, repeatable)")
	flag.Parse()

	if strings.TrimSpace(*processID) == "" {
		die("--process is required")
	}

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitPraxisDir(absoluteProject); err != nil {
		die("init .praxis: %v", err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}
	if *review != "" {
		cfg.Project.Review.Policy = *review
	}

	registry := process.NewRegistry()
	processes.RegisterBuiltins(registry)
	if err := plugins.RegisterPluginProcesses(registry, cfg); err != nil {
		die("load plugins: %v", err)
	}

	runInputs, err := buildValueMap(*inputFile, inputs)
	if err != nil {
		die("load inputs: %v", err)
	}
	overrides, err := buildValueMap(*configFile, sets)
	if err != nil {
		die("load config overrides: %v", err)
	}

	spec := host.LaunchSpec{
		Config:        cfg,
		Registry:      registry,
		ProcessID:     *processID,
		Inputs:        runInputs,
		ProcessConfig: process.Config(overrides),
	}
	history, err := store.Open(cfg.HistoryDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: run history unavailable: %v\n", err)
	} else {
		spec.Recorder = history
		defer history.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := host.Launch(ctx, spec)
	if err != nil {
		die("run %s: %v", *processID, err)
	}
	fmt.Printf("Run: %s\n", outcome.RunID)
	if outcome.Err != nil {
		die("run failed: %v", outcome.Err)
	}
	fmt.Printf("Success: %t\n", outcome.Report.Success)
	if outcome.Report.Summary != "" {
		fmt.Println(outcome.Report.Summary)
	}
	if !outcome.Report.Success {
		os.Exit(1)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type keyValueFlag map[string]string

func (kv *keyValueFlag) String() string {
	if kv == nil || len(*kv) == 0 {
		return ""
	}
	var pairs []string
	for key, value := range *kv {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
	}
	return strings.Join(pairs, ", ")
}

func (kv *keyValueFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	key := strings.TrimSpace(parts[0])
	if key == "" {
		return fmt.Errorf("key is empty in %q", value)
	}
	if *kv == nil {
		*kv = keyValueFlag{}
	}
	(*kv)[key] = parts[1]
	return nil
}

// buildValueMap merges a YAML/JSON file with key=value overrides, overrides
// winning.
func buildValueMap(path string, overrides keyValueFlag) (map[string]any, error) {
	var out map[string]any
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fromFile, err := readValueFile(trimmed)
		if err != nil {
			return nil, err
		}
		out = fromFile
	}
	if len(overrides) > 0 {
		if out == nil {
			out = make(map[string]any, len(overrides))
		}
		for key, value := range overrides {
			out[key] = value
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func readValueFile(path string) (map[string]any, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, expected a file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

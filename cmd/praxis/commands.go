package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"praxis/internal/bridge"
	"praxis/internal/config"
	"praxis/internal/contracts"
	"praxis/internal/host"
	"praxis/internal/logging"
	"praxis/internal/process"
	"praxis/internal/store"
)

// handleSubcommand dispatches headless commands. It returns true when a
// subcommand consumed the invocation.
func handleSubcommand(cwd string) bool {
	if len(os.Args) < 2 {
		return false
	}
	switch os.Args[1] {
	case "list":
		runList(cwd)
	case "validate":
		runValidate(cwd)
	case "run":
		runRun(cwd, os.Args[2:])
	default:
		return false
	}
	return true
}

func setup(cwd string) (*config.Config, *process.Registry) {
	if err := config.InitPraxisDir(cwd); err != nil {
		die("init .praxis: %v", err)
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		die("load config: %v", err)
	}
	registry, err := buildRegistry(cfg)
	if err != nil {
		die("load processes: %v", err)
	}
	return cfg, registry
}

func runList(cwd string) {
	_, reg := setup(cwd)
	for _, id := range reg.IDs() {
		line := id
		if p, err := reg.Resolve(id, nil); err == nil {
			info := p.Info()
			line = fmt.Sprintf("%-24s v%-8s %s", info.ID, info.Version, info.Description)
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
}

func runValidate(cwd string) {
	_, reg := setup(cwd)
	reports, err := contracts.ValidateRegistry(reg)
	if err != nil {
		die("validate: %v", err)
	}
	failed := false
	for _, report := range reports {
		if report.IsValid() {
			fmt.Printf("OK: %s\n", report.ProcessID)
			continue
		}
		failed = true
		fmt.Printf("Invalid: %s\n", report.ProcessID)
		for _, validationErr := range report.Errors {
			fmt.Printf("- %v\n", validationErr)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func runRun(cwd string, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	review := fs.String("review", "", "override review policy (auto, deny, bridge)")
	inputs := keyValueFlag{}
	fs.Var(&inputs, "input", "process input (key=value, repeatable)")
	sets := keyValueFlag{}
	fs.Var(&sets, "set", "process config override (key=value, repeatable)")
	if err := fs.Parse(args); err != nil {
		die("parse flags: %v", err)
	}
	processID := strings.TrimSpace(fs.Arg(0))
	if processID == "" {
		die("usage: praxis run [flags] <process-id>")
	}

	cfg, reg := setup(cwd)
	if *review != "" {
		cfg.Project.Review.Policy = *review
	}

	spec := host.LaunchSpec{
		Config:        cfg,
		Registry:      reg,
		ProcessID:     processID,
		Inputs:        inputs.toMap(),
		ProcessConfig: sets.toConfig(),
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

	if cfg.Project.Review.Policy == "bridge" {
		queue := bridge.NewQueue()
		opts := []bridge.Option{}
		if logger, err := logging.New(cwd); err == nil {
			defer logger.Close()
			opts = append(opts, bridge.WithLogger(logger))
		}
		server := bridge.NewServer(bridge.SettingsFromConfig(cfg), queue, opts...)
		if err := server.Start(ctx); err != nil {
			die("start review bridge: %v", err)
		}
		defer server.Shutdown(context.Background())
		fmt.Printf("Review bridge listening on %s\n", server.BaseURL())
		spec.Approver = queue
	}

	outcome, err := host.Launch(ctx, spec)
	if err != nil {
		die("run %s: %v", processID, err)
	}
	fmt.Printf("Run: %s\n", outcome.RunID)
	if outcome.Err != nil {
		die("run failed: %v", outcome.Err)
	}
	fmt.Printf("Success: %t\n", outcome.Report.Success)
	if outcome.Report.Summary != "" {
		fmt.Println(outcome.Report.Summary)
	}
	if fields := outcome.Report.FieldNames(); len(fields) > 0 {
		fmt.Printf("Report fields: %s\n", strings.Join(fields, ", "))
	}
	if !outcome.Report.Success {
		os.Exit(1)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// cmd/praxis/main.go
//
// This is the entry point for the praxis CLI.
// When you run `praxis` from any directory, this is what executes.
//
// Flow:
// 1. If the first argument is a subcommand (list, validate, run), handle it
//    headlessly and exit
// 2. Otherwise initialize the .praxis folder and launch the TUI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"praxis/internal/config"
	"praxis/internal/process"
	"praxis/internal/processes"
	"praxis/internal/tui"
	"praxis/plugins"
)

func main() {
	// Get the current working directory - this is the "project" we're working in
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if handleSubcommand(cwd) {
		return
	}

	// Initialize the .praxis folder and start the TUI
	if err := config.InitPraxisDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .praxis directory: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	registry, err := buildRegistry(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading processes: %v\n", err)
		os.Exit(1)
	}

	app, err := tui.NewApp(cwd, registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting praxis: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// tea.NewProgram creates a new bubbletea application
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
	)

	// Run blocks until the user quits
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// buildRegistry assembles the builtin catalog plus any plugin processes
// discovered under .praxis/processes.
func buildRegistry(cfg *config.Config) (*process.Registry, error) {
	registry := process.NewRegistry()
	processes.RegisterBuiltins(registry)
	if err := plugins.RegisterPluginProcesses(registry, cfg); err != nil {
		return nil, err
	}
	return registry, nil
}

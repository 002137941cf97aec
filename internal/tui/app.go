// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for praxis.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"praxis/internal/config"
	"praxis/internal/host"
	"praxis/internal/logbook"
	"praxis/internal/process"
	"praxis/internal/store"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu      appState = iota // Main menu with "Run Process", etc.
	stateProcessSelect                 // Process picker before launching a run
	stateRun                           // A run in flight (or just finished)
)

const boardRefreshInterval = 3 * time.Second

// Launcher executes one process run to completion. The approver routes
// breakpoint pauses back into the TUI.
type Launcher func(ctx context.Context, processID string, approver host.Approver) host.Outcome

// RunLister supplies the recent-runs board, newest first.
type RunLister func() ([]store.RunRecord, error)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLauncher overrides how the TUI executes a selected process.
func WithLauncher(launcher Launcher) AppOption {
	return func(a *App) {
		if launcher != nil {
			a.launcher = launcher
		}
	}
}

// WithRunLister overrides the recent-runs source.
func WithRunLister(lister RunLister) AppOption {
	return func(a *App) {
		if lister != nil {
			a.runLister = lister
		}
	}
}

type runsRefreshMsg struct {
	rows []store.RunRecord
	err  error
}

// reviewRequest carries one breakpoint from the host goroutine to the UI.
// The reply channel resolves the pause: nil approves, ErrRejected declines.
type reviewRequest struct {
	bp    process.Breakpoint
	reply chan error
}

type reviewRequestMsg struct {
	req *reviewRequest
}

type runFinishedMsg struct {
	outcome host.Outcome
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state    appState
	config   *config.Config
	registry *process.Registry
	logbook  *logbook.Logbook

	launcher  Launcher
	runLister RunLister
	history   *store.Store

	// UI components
	mainMenu    list.Model
	processMenu list.Model
	statusMsg   string

	// Window size (we get this from bubbletea)
	width  int
	height int

	// Run screen state
	runProcessID  string
	runOutcome    *host.Outcome
	pendingReview *reviewRequest
	reviews       chan *reviewRequest

	// Recent-runs board
	runRows  []store.RunRecord
	boardErr string
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

type processOption struct {
	id    string
	title string
	desc  string
}

func (o processOption) Title() string       { return o.title }
func (o processOption) Description() string { return o.desc }
func (o processOption) FilterValue() string { return o.id }

// NewApp creates a new App instance. The registry should already carry the
// builtin catalog plus any discovered plugins.
func NewApp(projectDir string, registry *process.Registry, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	logPath := filepath.Join(cfg.PraxisProjectDir, "logs", "praxis.log")
	lb, err := logbook.New(logPath)
	if err == nil {
		lb.Info("Session opened with %d registered processes", len(registry.IDs()))
	}

	mainMenu := list.New(buildMainMenu(), list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "⬡ PRAXIS"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	processMenu := list.New(buildProcessItems(registry), list.NewDefaultDelegate(), 0, 0)
	processMenu.Title = "Select Process"
	processMenu.SetShowStatusBar(false)
	processMenu.SetFilteringEnabled(false)

	app := &App{
		state:       stateMainMenu,
		config:      cfg,
		registry:    registry,
		logbook:     lb,
		mainMenu:    mainMenu,
		processMenu: processMenu,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.launcher == nil || app.runLister == nil {
		if history, err := store.Open(cfg.HistoryDBPath()); err == nil {
			app.history = history
		}
	}
	if app.launcher == nil {
		app.launcher = app.defaultLauncher
	}
	if app.runLister == nil {
		app.runLister = app.defaultRunLister
	}
	return app, nil
}

// Close releases the run history handle, if any.
func (a *App) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}

func (a *App) defaultLauncher(ctx context.Context, processID string, approver host.Approver) host.Outcome {
	spec := host.LaunchSpec{
		Config:    a.config,
		Registry:  a.registry,
		ProcessID: processID,
		Approver:  approver,
	}
	if a.history != nil {
		spec.Recorder = a.history
	}
	outcome, err := host.Launch(ctx, spec)
	if err != nil && outcome.Err == nil {
		outcome.Err = err
	}
	return outcome
}

func (a *App) defaultRunLister() ([]store.RunRecord, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.ListRuns(8)
}

// buildMainMenu creates the main menu items
func buildMainMenu() []list.Item {
	return []list.Item{
		menuItem{title: "Run Process", desc: "Launch a catalog or plugin process"},
		menuItem{title: "Exit", desc: "Quit praxis"},
	}
}

func buildProcessItems(registry *process.Registry) []list.Item {
	ids := registry.IDs()
	items := make([]list.Item, 0, len(ids))
	for _, id := range ids {
		option := processOption{id: id, title: id, desc: fmt.Sprintf("Process ID: %s", id)}
		if p, err := registry.Resolve(id, nil); err == nil {
			info := p.Info()
			if name := strings.TrimSpace(info.Name); name != "" {
				option.title = name
			}
			var parts []string
			if desc := strings.TrimSpace(info.Description); desc != "" {
				parts = append(parts, desc)
			}
			parts = append(parts, fmt.Sprintf("ID: %s · v%s", id, info.Version))
			option.desc = strings.Join(parts, " · ")
		}
		items = append(items, option)
	}
	return items
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.fetchRunRows()
}

func (a *App) fetchRunRows() tea.Cmd {
	lister := a.runLister
	return func() tea.Msg {
		rows, err := lister()
		return runsRefreshMsg{rows: rows, err: err}
	}
}

func (a *App) scheduleRunsRefresh() tea.Cmd {
	return tea.Tick(boardRefreshInterval, func(time.Time) tea.Msg {
		rows, err := a.runLister()
		return runsRefreshMsg{rows: rows, err: err}
	})
}

// waitForReview blocks on the run's review channel and surfaces the next
// breakpoint as a message. The channel closes when the run finishes.
func (a *App) waitForReview() tea.Cmd {
	reviews := a.reviews
	if reviews == nil {
		return nil
	}
	return func() tea.Msg {
		req, ok := <-reviews
		if !ok {
			return nil
		}
		return reviewRequestMsg{req: req}
	}
}

// startRun launches the selected process in a background goroutine. The
// approver hands breakpoints to the UI and blocks until a key resolves them.
func (a *App) startRun(processID string) (tea.Model, tea.Cmd) {
	a.state = stateRun
	a.runProcessID = processID
	a.runOutcome = nil
	a.pendingReview = nil
	a.statusMsg = ""

	reviews := make(chan *reviewRequest)
	a.reviews = reviews
	approver := host.ApproverFunc(func(ctx context.Context, runID string, bp process.Breakpoint) error {
		req := &reviewRequest{bp: bp, reply: make(chan error, 1)}
		select {
		case reviews <- req:
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case err := <-req.reply:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	launcher := a.launcher
	launch := func() tea.Msg {
		outcome := launcher(context.Background(), processID, approver)
		return runFinishedMsg{outcome: outcome}
	}
	a.logInfo("Run · launching %s", processID)
	return a, tea.Batch(launch, a.waitForReview())
}

func (a *App) resolveReview(approve bool) (tea.Model, tea.Cmd) {
	req := a.pendingReview
	if req == nil {
		return a, nil
	}
	a.pendingReview = nil
	if approve {
		a.logInfo("Review · approved %q", req.bp.Title)
		req.reply <- nil
	} else {
		a.logInfo("Review · rejected %q", req.bp.Title)
		req.reply <- process.ErrRejected
	}
	return a, a.waitForReview()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		a.processMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		return a, nil

	case runsRefreshMsg:
		if msg.err != nil {
			a.boardErr = msg.err.Error()
		} else {
			a.boardErr = ""
			a.runRows = msg.rows
		}
		return a, a.scheduleRunsRefresh()

	case reviewRequestMsg:
		a.pendingReview = msg.req
		return a, nil

	case runFinishedMsg:
		outcome := msg.outcome
		a.runOutcome = &outcome
		if a.reviews != nil {
			close(a.reviews)
			a.reviews = nil
		}
		if outcome.Err != nil {
			a.logError("Run · %s failed: %v", outcome.RunID, outcome.Err)
		} else {
			a.logInfo("Run · %s finished (success=%t)", outcome.RunID, outcome.Report.Success)
		}
		return a, a.fetchRunRows()

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMainMenu {
				return a, tea.Quit
			}
		case "esc":
			if a.state == stateProcessSelect {
				return a.returnToMainMenu()
			}
			if a.state == stateRun && a.runOutcome != nil {
				return a.returnToMainMenu()
			}
		case "y":
			if a.state == stateRun && a.pendingReview != nil {
				return a.resolveReview(true)
			}
		case "n":
			if a.state == stateRun && a.pendingReview != nil {
				return a.resolveReview(false)
			}
		case "enter":
			switch a.state {
			case stateMainMenu:
				return a.handleMainMenuSelection()
			case stateProcessSelect:
				if item, ok := a.processMenu.SelectedItem().(processOption); ok {
					return a.startRun(item.id)
				}
				return a, nil
			}
		}
	}

	var cmds []tea.Cmd
	switch a.state {
	case stateMainMenu:
		var menuCmd tea.Cmd
		a.mainMenu, menuCmd = a.mainMenu.Update(msg)
		if menuCmd != nil {
			cmds = append(cmds, menuCmd)
		}
	case stateProcessSelect:
		var menuCmd tea.Cmd
		a.processMenu, menuCmd = a.processMenu.Update(msg)
		if menuCmd != nil {
			cmds = append(cmds, menuCmd)
		}
	}
	return a, tea.Batch(cmds...)
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}
	switch item.title {
	case "Run Process":
		a.logInfo("Menu · Run Process selected")
		a.state = stateProcessSelect
		if a.width > 0 && a.height > 0 {
			a.processMenu.SetSize(max(0, a.width-6), max(0, a.height-10))
		}
		a.statusMsg = "Select a process to launch"
		return a, nil
	case "Exit":
		a.logInfo("Menu · Exit selected")
		return a, tea.Quit
	}
	return a, nil
}

// returnToMainMenu transitions back to the main menu
func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.state = stateMainMenu
	a.pendingReview = nil
	a.statusMsg = ""
	return a, nil
}

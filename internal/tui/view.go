package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3DDC97"))
	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	reviewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F4D35E")).
			Padding(0, 1)
)

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
		rightWidth = 0
	}

	var content string
	switch a.state {
	case stateMainMenu:
		content = a.mainMenu.View()
	case stateProcessSelect:
		content = a.processMenu.View()
	case stateRun:
		content = a.renderRunScreen(leftWidth - 4)
	}

	left := lipgloss.JoinVertical(lipgloss.Left, content, a.renderLogPanel())
	leftBox := panelStyle.Width(leftWidth).Render(left)
	body := leftBox
	if rightWidth > 0 {
		rightBox := panelStyle.Width(rightWidth).Render(a.renderRunsBoard())
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	}

	sections := []string{headerStyle.Render("⬡ PRAXIS"), body}
	if a.statusMsg != "" {
		sections = append(sections, dimStyle.Render(a.statusMsg))
	}
	sections = append(sections, dimStyle.Render(a.footerHints()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) footerHints() string {
	switch a.state {
	case stateMainMenu:
		return "enter: select · q: quit"
	case stateProcessSelect:
		return "enter: launch · esc: back"
	case stateRun:
		if a.pendingReview != nil {
			return "y: approve · n: reject"
		}
		if a.runOutcome != nil {
			return "esc: back to menu"
		}
		return "run in flight..."
	}
	return ""
}

func (a *App) renderRunScreen(width int) string {
	lines := []string{panelTitleStyle.Render(fmt.Sprintf("RUN · %s", a.runProcessID))}

	switch {
	case a.runOutcome == nil && a.pendingReview == nil:
		lines = append(lines, "", "Dispatching tasks...")
	case a.pendingReview != nil:
		bp := a.pendingReview.bp
		review := []string{
			panelTitleStyle.Render(fmt.Sprintf("REVIEW · %s", bp.Title)),
			bp.Question,
			"",
			"[y] approve   [n] reject",
		}
		lines = append(lines, "", reviewStyle.Width(max(20, width)).Render(strings.Join(review, "\n")))
	default:
		outcome := a.runOutcome
		lines = append(lines, "", fmt.Sprintf("Run ID: %s", outcome.RunID))
		switch {
		case outcome.Err != nil:
			lines = append(lines, failStyle.Render(fmt.Sprintf("Failed: %v", outcome.Err)))
		case outcome.Report.Success:
			lines = append(lines, okStyle.Render("Completed"), outcome.Report.Summary)
		default:
			lines = append(lines, failStyle.Render("Completed without success"), outcome.Report.Summary)
		}
		if fields := outcome.Report.FieldNames(); len(fields) > 0 {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("Report fields: %s", strings.Join(fields, ", "))))
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderRunsBoard() string {
	lines := []string{panelTitleStyle.Render("RECENT RUNS")}
	if a.boardErr != "" {
		lines = append(lines, failStyle.Render(a.boardErr))
		return strings.Join(lines, "\n")
	}
	if len(a.runRows) == 0 {
		lines = append(lines, dimStyle.Render("No runs recorded yet"))
		return strings.Join(lines, "\n")
	}
	for _, row := range a.runRows {
		marker := dimStyle.Render("·")
		switch row.Status {
		case "completed":
			marker = okStyle.Render("✓")
		case "failed":
			marker = failStyle.Render("✗")
		}
		lines = append(lines, fmt.Sprintf("%s %s", marker, row.RunID))
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  %s · %s", row.ProcessID, row.StartedAt.Format("15:04:05"))))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	head := panelTitleStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := dimStyle.Render(strings.Join(lines, "\n"))
	return fmt.Sprintf("\n%s\n%s", head, body)
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/tallyrun/internal/ui"
)

// Dashboard styles, derived from the active ui theme by initTUIStyles.
var (
	panelStyle      lipgloss.Style
	panelTitleStyle lipgloss.Style

	headerStyle  lipgloss.Style
	titleStyle   lipgloss.Style
	versionStyle lipgloss.Style
	elapsedStyle lipgloss.Style

	workerLabelStyle lipgloss.Style
	workerStateStyle lipgloss.Style
	metricLabelStyle lipgloss.Style
	metricValueStyle lipgloss.Style
	chartStyle       lipgloss.Style
	sparklineStyle   lipgloss.Style

	footerKeyStyle     lipgloss.Style
	footerDescStyle    lipgloss.Style
	statusRunningStyle lipgloss.Style
	statusPausedStyle  lipgloss.Style
	statusDoneStyle    lipgloss.Style
	statusErrorStyle   lipgloss.Style

	tuiTheme ui.TUITheme
)

func init() {
	initTUIStyles()
}

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.TerminalColor) lipgloss.Style {
	return fg(c).Bold(true)
}

// initTUIStyles rebuilds the styles from ui.GetCurrentTUITheme. Run calls it
// again once -no-color has been applied.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()
	tuiTheme = t

	panelStyle = fg(t.Text).Border(lipgloss.RoundedBorder()).BorderForeground(t.Border)
	panelTitleStyle = bold(t.Accent)

	headerStyle = bold(t.Accent).Padding(0, 1)
	titleStyle = bold(t.Accent)
	versionStyle = fg(t.Dim)
	elapsedStyle = fg(t.Accent)

	workerLabelStyle = bold(t.Info)
	workerStateStyle = fg(t.Dim)
	metricLabelStyle = fg(t.Dim)
	metricValueStyle = bold(t.Accent)
	chartStyle = fg(t.Accent)
	sparklineStyle = fg(t.Warning)

	footerKeyStyle = bold(t.Accent)
	footerDescStyle = fg(t.Dim)
	statusRunningStyle = bold(t.Success)
	statusPausedStyle = bold(t.Warning)
	statusDoneStyle = bold(t.Accent)
	statusErrorStyle = bold(t.Error)
}

package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the set of ANSI escape codes used by the line-oriented frontends.
type Theme struct {
	// Name identifies the theme ("dark" or "none").
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string
	// Workers colors worker labels; worker i uses Workers[i%len(Workers)].
	// The palette matches DarkTUITheme.Workers.
	Workers []string
}

var (
	// DarkTheme is tuned for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Workers: []string{
			"\033[38;5;208m", // orange
			"\033[38;5;69m",  // blue
			"\033[38;5;149m", // green
			"\033[38;5;183m", // lavender
			"\033[38;5;215m", // peach
			"\033[38;5;117m", // sky
		},
	}

	// NoColorTheme emits no escape codes. It is selected by -no-color or
	// the NO_COLOR environment variable.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// WorkerColor returns the label color of worker i, or "" when the theme has
// no palette.
func (t Theme) WorkerColor(i int) string {
	if len(t.Workers) == 0 {
		return ""
	}
	if i < 0 {
		i = -i
	}
	return t.Workers[i%len(t.Workers)]
}

// TUITheme defines lipgloss-compatible colors for the dashboard.
type TUITheme struct {
	Bg      lipgloss.TerminalColor
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
	// Workers colors worker bars; worker i uses Workers[i%len(Workers)].
	Workers []lipgloss.TerminalColor
}

var (
	// DarkTUITheme is the orange-dominant dashboard palette.
	DarkTUITheme = TUITheme{
		Bg:      lipgloss.Color("#000000"),
		Text:    lipgloss.Color("#E0E0E0"),
		Border:  lipgloss.Color("#FF6600"),
		Accent:  lipgloss.Color("#FF8C00"),
		Success: lipgloss.Color("#9ece6a"),
		Warning: lipgloss.Color("#FFB347"),
		Error:   lipgloss.Color("#FF4444"),
		Dim:     lipgloss.Color("#666666"),
		Info:    lipgloss.Color("#4488FF"),
		Workers: []lipgloss.TerminalColor{
			lipgloss.Color("#FF8C00"),
			lipgloss.Color("#4488FF"),
			lipgloss.Color("#9ece6a"),
			lipgloss.Color("#BB9AF7"),
			lipgloss.Color("#FFB347"),
			lipgloss.Color("#7DCFFF"),
		},
	}

	// NoColorTUITheme renders everything in the terminal's default colors.
	NoColorTUITheme = TUITheme{
		Bg:      lipgloss.NoColor{},
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
		Workers: []lipgloss.TerminalColor{lipgloss.NoColor{}},
	}
)

// WorkerColor returns the bar color of worker i.
func (t TUITheme) WorkerColor(i int) lipgloss.TerminalColor {
	if len(t.Workers) == 0 {
		return t.Accent
	}
	if i < 0 {
		i = -i
	}
	return t.Workers[i%len(t.Workers)]
}

// GetCurrentTUITheme returns the dashboard counterpart of the active theme.
func GetCurrentTUITheme() TUITheme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	if currentTheme.Name == NoColorTheme.Name {
		return NoColorTUITheme
	}
	return DarkTUITheme
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme sets the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// InitTheme selects NoColorTheme when noColor is set or NO_COLOR is present
// in the environment (https://no-color.org/), and DarkTheme otherwise.
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}

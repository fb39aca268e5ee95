package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/tallyrun/internal/format"
)

// HeaderModel renders the top bar: title, version, generation, elapsed time.
type HeaderModel struct {
	startTime  time.Time
	endTime    time.Time
	version    string
	generation uint64
	width      int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
	}
}

// Start restarts the elapsed timer for generation gen.
func (h *HeaderModel) Start(gen uint64) {
	h.generation = gen
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

// SetDone freezes the elapsed timer at the current time.
func (h *HeaderModel) SetDone() {
	if h.endTime.IsZero() {
		h.endTime = time.Now()
	}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the time since Start, frozen by SetDone.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "Tallyrun Monitor"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	title := titleStyle.Render(titleText)

	pipe := versionStyle.Render(" | ")

	genText := "Generation -"
	if h.generation > 0 {
		genText = fmt.Sprintf("Generation %d", h.generation)
	}
	elapsed := elapsedStyle.Render(fmt.Sprintf("Elapsed: %s", format.FormatExecutionDuration(h.Elapsed())))

	line := title + pipe + versionStyle.Render(genText) + pipe + elapsed
	pad := max(h.width-2-lipgloss.Width(line), 0)
	return headerStyle.Width(h.width).Render(line + strings.Repeat(" ", pad))
}

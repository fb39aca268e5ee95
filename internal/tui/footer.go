package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// FooterModel renders the run status and the key hints.
type FooterModel struct {
	bindings []key.Binding
	paused   bool
	done     bool
	err      string
	width    int
}

// NewFooterModel creates a footer listing bindings.
func NewFooterModel(bindings []key.Binding) FooterModel {
	return FooterModel{bindings: bindings}
}

// SetPaused updates the paused indicator.
func (f *FooterModel) SetPaused(p bool) { f.paused = p }

// SetDone updates the done indicator.
func (f *FooterModel) SetDone(d bool) { f.done = d }

// SetError shows msg as the status. An empty msg clears it.
func (f *FooterModel) SetError(msg string) { f.err = msg }

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) { f.width = w }

// Status returns the plain status word.
func (f FooterModel) Status() string {
	switch {
	case f.err != "":
		return "ERROR"
	case f.done:
		return "DONE"
	case f.paused:
		return "PAUSED"
	default:
		return "RUNNING"
	}
}

// View renders the footer.
func (f FooterModel) View() string {
	var status string
	switch f.Status() {
	case "ERROR":
		status = statusErrorStyle.Render("ERROR: " + f.err)
	case "DONE":
		status = statusDoneStyle.Render("DONE")
	case "PAUSED":
		status = statusPausedStyle.Render("PAUSED")
	default:
		status = statusRunningStyle.Render("RUNNING")
	}

	hints := make([]string, 0, len(f.bindings))
	for _, b := range f.bindings {
		h := b.Help()
		hints = append(hints, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	return " " + status + "  " + strings.Join(hints, footerDescStyle.Render(" · "))
}

package cli

import (
	"testing"

	"github.com/agbru/tallyrun/internal/ui"
)

// plainOutput switches to the colorless theme for one test so output can be
// matched as plain text, and restores the previous theme afterwards.
func plainOutput(t *testing.T) {
	t.Helper()
	prev := ui.GetCurrentTheme()
	ui.InitTheme(true)
	t.Cleanup(func() { ui.SetCurrentTheme(prev) })
}

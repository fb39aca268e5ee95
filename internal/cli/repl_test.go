package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/progress"
)

func runREPL(t *testing.T, input string) string {
	t.Helper()
	plainOutput(t)
	c := orchestration.NewCoordinator(progress.NullSink{})
	t.Cleanup(c.Close)

	var out bytes.Buffer
	r := NewREPL(c, REPLConfig{Intervals: []float64{1, 1}})
	r.SetInput(strings.NewReader(input))
	r.SetOutput(&out)
	r.Start(context.Background())
	return out.String()
}

func TestREPL_StartWaitStatus(t *testing.T) {
	out := runREPL(t, "start\nwait 10s\nstatus\nquit\n")

	for _, want := range []string{
		"Generation 1 started with 2 workers (1,1 ms)",
		"Run Summary (generation 1)",
		"200 / 200 (100%)",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestREPL_StartWithIntervals(t *testing.T) {
	out := runREPL(t, "start 1,2,1\nstop\nexit\n")
	if !strings.Contains(out, "started with 3 workers (1,2,1 ms)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Stopped.") {
		t.Errorf("stop should be acknowledged:\n%s", out)
	}
}

func TestREPL_ResetStartsNewGeneration(t *testing.T) {
	out := runREPL(t, "start\nreset\nq\n")
	if !strings.Contains(out, "Generation 2 started") {
		t.Errorf("reset should start generation 2:\n%s", out)
	}
}

func TestREPL_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown command", "frobnicate\n", "Unknown command: frobnicate"},
		{"invalid intervals", "start a,b\n", "Invalid intervals"},
		{"rejected intervals", "start 1,-1\n", "Error:"},
		{"status without generation", "status\n", "No generation"},
		{"wait without generation", "wait\n", "No generation"},
		{"invalid wait duration", "start\nwait soon\n", "Invalid duration: soon"},
		{"wait shorter than the run", "start 50\nwait 10ms\n", "Still running after 10ms."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runREPL(t, tt.input)
			if !strings.Contains(out, tt.want) {
				t.Errorf("output should contain %q, got:\n%s", tt.want, out)
			}
		})
	}
}

func TestREPL_PauseResumeHelp(t *testing.T) {
	out := runREPL(t, "start 50\npause\nresume\nhelp\n")
	for _, want := range []string{"Paused.", "Resumed.", "Available commands:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestREPL_EOFProcessesPendingLine(t *testing.T) {
	out := runREPL(t, "status")
	if !strings.Contains(out, "No generation") {
		t.Errorf("unterminated last line should run, got:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("EOF should end the session, got:\n%s", out)
	}
}

func TestREPL_ContextCanceled(t *testing.T) {
	c := orchestration.NewCoordinator(progress.NullSink{})
	t.Cleanup(c.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	r := NewREPL(c, REPLConfig{Intervals: []float64{1}})
	r.SetInput(strings.NewReader("start\n"))
	r.SetOutput(&out)
	r.Start(ctx)

	if strings.Contains(out.String(), "started") {
		t.Errorf("no command should run after cancellation:\n%s", out.String())
	}
}

package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestCLI_E2E builds the tallyrun binary and checks its exit codes and
// output for the non-interactive displays.
func TestCLI_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}

	tmpDir := t.TempDir()
	binName := "tallyrun"
	if runtime.GOOS == "windows" {
		binName = "tallyrun.exe"
	}
	binPath := filepath.Join(tmpDir, binName)

	// go test runs from test/e2e; the build runs from the module root.
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/tallyrun")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build tallyrun: %v", err)
	}

	summary := filepath.Join(tmpDir, "summary.json")

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring match (case-insensitive)
		wantCode int
	}{
		{
			name:     "Quiet Run",
			args:     []string{"-display", "quiet", "-intervals", "1,1,1"},
			wantOut:  "300/300",
			wantCode: 0,
		},
		{
			name:     "CLI Run",
			args:     []string{"-intervals", "1,2"},
			wantOut:  "Global Status: Success",
			wantCode: 0,
		},
		{
			name:     "Log Run",
			args:     []string{"-display", "log", "-intervals", "1"},
			wantOut:  "worker completed",
			wantCode: 0,
		},
		{
			name:     "Summary File",
			args:     []string{"-display", "bar", "-intervals", "1", "-o", summary},
			wantOut:  "Summary saved to",
			wantCode: 0,
		},
		{
			name:     "Help",
			args:     []string{"-help"},
			wantOut:  "usage",
			wantCode: 0,
		},
		{
			name:     "Version Flag",
			args:     []string{"-version"},
			wantOut:  "tallyrun",
			wantCode: 0,
		},
		{
			name:     "Completion",
			args:     []string{"-completion", "fish"},
			wantOut:  "complete -c",
			wantCode: 0,
		},
		{
			name:     "Invalid Intervals",
			args:     []string{"-intervals", "10,abc"},
			wantCode: 4,
		},
		{
			name:     "Scripted Pause In REPL",
			args:     []string{"-display", "repl", "-pause-after", "1s", "-pause-for", "1s"},
			wantCode: 4,
		},
		{
			name:     "Timeout",
			args:     []string{"-display", "quiet", "-intervals", "100", "-timeout", "50ms"},
			wantCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			code := 0
			if err != nil {
				var exitErr *exec.ExitError
				if !errors.As(err, &exitErr) {
					t.Fatalf("Command did not run: %v", err)
				}
				code = exitErr.ExitCode()
			}
			if code != tt.wantCode {
				t.Errorf("Exit code = %d, want %d\nOutput: %s", code, tt.wantCode, outStr)
			}

			if tt.wantOut != "" && !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}
		})
	}

	if _, err := os.Stat(summary); err != nil {
		t.Errorf("summary file not written: %v", err)
	}
}

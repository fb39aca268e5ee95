package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/tallyrun/internal/config"
)

// programName is the command completed by the generated scripts.
const programName = "tallyrun"

// FlagCompletion describes a CLI flag for shell completion generation.
// Every generator reads flagRegistry, so a new flag only needs an entry
// there.
type FlagCompletion struct {
	Long      string   // long flag name without "-" (e.g., "help")
	Short     string   // short flag without "-" (e.g., "h")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "duration")
	IsFile    bool     // true if the flag takes a file path
}

var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Long: "intervals", Help: "Comma-separated step delays in milliseconds", Values: []string{config.DefaultIntervals}, ValueName: "list"},
	{Long: "display", Help: "Display frontend", Values: config.DisplayModes, ValueName: "mode"},
	{Long: "timeout", Help: "Stop the run after this long", Values: []string{"10s", "30s", "1m", "5m"}, ValueName: "duration"},
	{Long: "pause-after", Help: "Pause the run after this long", Values: []string{"1s", "2s", "5s"}, ValueName: "duration"},
	{Long: "pause-for", Help: "Length of the scripted pause", Values: []string{"1s", "3s", "5s"}, ValueName: "duration"},
	{Long: "metrics-addr", Help: "Serve /metrics and /status on this address", Values: []string{":9090", "127.0.0.1:9090"}, ValueName: "addr"},
	{Long: "trace", Help: "Span exporter", Values: config.TraceExporters, ValueName: "exporter"},
	{Long: "trace-file", Help: "JSONL file of the file exporter", IsFile: true, ValueName: "file"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Long: "output", Short: "o", Help: "Write a JSON summary to this file", IsFile: true, ValueName: "file"},
	{Long: "no-color", Help: "Disable colors"},
	{Long: "completion", Help: "Generate completion script", Values: config.CompletionShells, ValueName: "shell"},
}

// GenerateCompletion writes a completion script for shell to out.
func GenerateCompletion(out io.Writer, shell string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out)
	case "zsh":
		return generateZshCompletion(out)
	case "fish":
		return generateFishCompletion(out)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: %s)", shell, strings.Join(config.CompletionShells, ", "))
	}
}

func generateBashCompletion(out io.Writer) error {
	var opts []string
	for _, f := range flagRegistry {
		if f.Long != "" {
			opts = append(opts, "-"+f.Long)
		}
		if f.Short != "" {
			opts = append(opts, "-"+f.Short)
		}
	}

	var cases strings.Builder
	var filePatterns []string
	for _, f := range flagRegistry {
		if f.IsFile {
			filePatterns = append(filePatterns, flagPatterns(f)...)
			continue
		}
		if len(f.Values) == 0 {
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;\n",
			strings.Join(flagPatterns(f), "|"), strings.Join(f.Values, " "))
	}
	if len(filePatterns) > 0 {
		fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n",
			strings.Join(filePatterns, "|"))
	}

	script := fmt.Sprintf(`# Bash completion script for %[1]s
# Add this to your ~/.bashrc or ~/.bash_completion

_%[1]s_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="%[2]s"

    case "${prev}" in
%[3]s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _%[1]s_completions %[1]s
`, programName, strings.Join(opts, " "), cases.String())

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

// flagPatterns returns the single-dash spellings of f, as accepted by the
// flag package.
func flagPatterns(f FlagCompletion) []string {
	var p []string
	if f.Long != "" {
		p = append(p, "-"+f.Long, "--"+f.Long)
	}
	if f.Short != "" {
		p = append(p, "-"+f.Short)
	}
	return p
}

func generateZshCompletion(out io.Writer) error {
	args := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}

	script := fmt.Sprintf(`#compdef %[1]s

# Zsh completion script for %[1]s
# Add this to your ~/.zshrc or place in $fpath

_%[1]s() {
    _arguments -s \
%[2]s
}

_%[1]s "$@"
`, programName, strings.Join(args, " \\\n"))

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats f as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Short != "" {
		return fmt.Sprintf("        '(-%s -%s)'{-%s,-%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '-%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

func generateFishCompletion(out io.Writer) error {
	lines := []string{
		"# Fish completion script for " + programName,
		"# Add this to ~/.config/fish/completions/" + programName + ".fish",
		"",
		"complete -c " + programName + " -f",
	}
	for _, f := range flagRegistry {
		lines = append(lines, fishCompleteLine(f))
	}
	lines = append(lines, "")

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats f as a fish complete command. Go flags are
// single-dash, so long names use -o (old style).
func fishCompleteLine(f FlagCompletion) string {
	parts := []string{"complete -c " + programName}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	if f.Long != "" {
		parts = append(parts, "-o "+f.Long)
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

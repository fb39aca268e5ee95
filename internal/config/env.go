package config

import (
	"flag"
	"os"
	"strings"
	"time"

	apperrors "github.com/agbru/tallyrun/internal/errors"
)

// envOverride binds one TALLYRUN_<envKey> variable to the flags it shadows.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) error
}

var envOverrides = []envOverride{
	{"INTERVALS", []string{"intervals"}, func(c *AppConfig, v string) error {
		parsed, err := ParseIntervals(v)
		if err != nil {
			return apperrors.WrapError(err, "%sINTERVALS", EnvPrefix)
		}
		c.Intervals = parsed
		return nil
	}},

	{"TIMEOUT", []string{"timeout"}, durationOverride(func(c *AppConfig) *time.Duration { return &c.Timeout })},
	{"PAUSE_AFTER", []string{"pause-after"}, durationOverride(func(c *AppConfig) *time.Duration { return &c.PauseAfter })},
	{"PAUSE_FOR", []string{"pause-for"}, durationOverride(func(c *AppConfig) *time.Duration { return &c.PauseFor })},

	{"DISPLAY", []string{"display"}, stringOverride(func(c *AppConfig) *string { return &c.Display })},
	{"METRICS_ADDR", []string{"metrics-addr"}, stringOverride(func(c *AppConfig) *string { return &c.MetricsAddr })},
	{"TRACE", []string{"trace"}, stringOverride(func(c *AppConfig) *string { return &c.Trace })},
	{"TRACE_FILE", []string{"trace-file"}, stringOverride(func(c *AppConfig) *string { return &c.TraceFile })},
	{"LOG_LEVEL", []string{"log-level"}, stringOverride(func(c *AppConfig) *string { return &c.LogLevel })},
	{"OUTPUT", []string{"output", "o"}, stringOverride(func(c *AppConfig) *string { return &c.OutputFile })},

	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) error {
		c.NoColor = parseBoolEnv(v, c.NoColor)
		return nil
	}},
}

func durationOverride(field func(*AppConfig) *time.Duration) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return apperrors.NewConfigError("invalid duration %q: %v", v, err)
		}
		*field(c) = parsed
		return nil
	}
}

func stringOverride(field func(*AppConfig) *string) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		*field(c) = v
		return nil
	}
}

// parseBoolEnv accepts true/1/yes and false/0/no in any case; anything else
// keeps defaultVal.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides fills every option whose flag (or alias) was not given
// on the command line from its TALLYRUN_ variable, so flags win over the
// environment and the environment wins over defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

overrides:
	for _, o := range envOverrides {
		for _, name := range o.flags {
			if explicit[name] {
				continue overrides
			}
		}
		val := os.Getenv(EnvPrefix + o.envKey)
		if val == "" {
			continue
		}
		if err := o.apply(config, val); err != nil {
			return err
		}
	}
	return nil
}

// Package app wires configuration, display sinks, the coordinator and the
// optional HTTP and tracing services into the tallyrun command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/tallyrun/internal/cli"
	"github.com/agbru/tallyrun/internal/config"
	apperrors "github.com/agbru/tallyrun/internal/errors"
	"github.com/agbru/tallyrun/internal/ui"
)

// Application represents the tallyrun application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	In        io.Reader
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithInput sets the reader used by the interactive REPL.
func WithInput(r io.Reader) AppOption {
	return func(a *Application) { a.In = r }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, In: os.Stdin}
	for _, opt := range opts {
		opt(app)
	}

	programName := "tallyrun"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.ShowVersion {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	zerolog.SetGlobalLevel(a.Config.Level())
	ui.InitTheme(a.Config.NoColor)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	svc, err := a.newServices(ctx, out)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		if apperrors.IsConfigError(err) {
			return apperrors.ExitErrorConfig
		}
		return apperrors.ExitErrorGeneric
	}
	defer svc.Close()

	switch a.Config.Display {
	case config.DisplayTUI:
		return a.runTUI(ctx, svc, out)
	case config.DisplayREPL:
		return a.runREPL(ctx, svc, out)
	default:
		return a.runBatch(ctx, svc, out)
	}
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (-help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

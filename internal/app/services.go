package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/tallyrun/internal/cli"
	"github.com/agbru/tallyrun/internal/config"
	apperrors "github.com/agbru/tallyrun/internal/errors"
	"github.com/agbru/tallyrun/internal/logging"
	"github.com/agbru/tallyrun/internal/metrics"
	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/progress"
	"github.com/agbru/tallyrun/internal/server"
	"github.com/agbru/tallyrun/internal/tracing"
	"github.com/agbru/tallyrun/internal/tui"
)

const (
	// logEvery is the step interval logged at info level by the log display.
	logEvery        = 25
	shutdownTimeout = 5 * time.Second
)

// services holds everything a run needs besides the configuration.
type services struct {
	logger    logging.Logger
	tracing   *tracing.Provider
	memory    *metrics.MemoryCollector
	board     *progress.Board
	sinks     *progress.MultiSink
	coord     *orchestration.Coordinator
	spinner   *cli.SpinnerSink
	bar       *cli.BarSink
	dashboard *tui.DashboardSink

	serverAddr   string
	stopServer   context.CancelFunc
	serverErrors chan error
}

// newServices builds the tracer, the sink fan-out for the configured display,
// the coordinator and, when requested, the HTTP status server.
func (a *Application) newServices(ctx context.Context, out io.Writer) (*services, error) {
	cfg := a.Config
	s := &services{
		memory: metrics.NewMemoryCollector(),
		board:  progress.NewBoard(),
	}

	switch cfg.Display {
	case config.DisplayTUI:
		// Anything written to the terminal would corrupt the dashboard.
		s.logger = logging.Nop()
	case config.DisplayREPL:
		s.logger = logging.NewStdLoggerAdapter(log.New(a.ErrWriter, "", log.Ltime))
	case config.DisplayQuiet:
		s.logger = logging.NewLogger(a.ErrWriter, "tallyrun")
	default:
		s.logger = logging.NewConsoleLogger(a.ErrWriter, "tallyrun")
	}

	traceCfg := tracing.DefaultConfig()
	traceCfg.Exporter = cfg.Trace
	traceCfg.FilePath = cfg.TraceFile
	traceCfg.Writer = a.ErrWriter
	tp, err := tracing.NewProvider(traceCfg)
	if err != nil {
		return nil, apperrors.WrapError(err, "initialize tracing")
	}
	s.tracing = tp

	s.sinks = progress.NewMultiSink(s.board)
	s.sinks.SetLogger(s.logger)
	var httpMetrics *server.Metrics
	if cfg.MetricsAddr != "" {
		httpMetrics = server.NewMetrics()
		promSink, err := metrics.NewSink(httpMetrics.Registry(), s.memory)
		if err != nil {
			s.shutdownTracing()
			return nil, err
		}
		s.sinks.Register(promSink)
	}

	switch cfg.Display {
	case config.DisplayCLI:
		s.spinner = cli.NewSpinnerSink(out)
		s.sinks.Register(s.spinner)
	case config.DisplayBar:
		s.bar = cli.NewBarSink(out)
		s.sinks.Register(s.bar)
	case config.DisplayLog:
		logger := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000", NoColor: cfg.NoColor}).
			With().Timestamp().Logger()
		s.sinks.Register(cli.NewLogSink(logger, logEvery))
	case config.DisplayTUI:
		s.dashboard = tui.NewDashboardSink()
		s.sinks.Register(s.dashboard)
	}

	s.coord = orchestration.NewCoordinator(s.sinks,
		orchestration.WithLogger(s.logger),
		orchestration.WithTracer(tp.Tracer()),
		orchestration.WithBaseContext(ctx),
		orchestration.WithBufferSize(len(cfg.Intervals)*progress.DefaultBufferMultiplier),
	)

	if cfg.MetricsAddr != "" {
		if err := s.startServer(ctx, cfg.MetricsAddr, httpMetrics); err != nil {
			s.Close()
			return nil, err
		}
	}
	s.logger.Debug("services ready", logging.String("services", s.String()))
	return s, nil
}

// startServer binds addr synchronously so that a bad address fails the run
// before it starts, then serves in the background.
func (s *services) startServer(ctx context.Context, addr string, m *server.Metrics) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return apperrors.NewConfigError("metrics-addr: %v", err)
	}
	s.serverAddr = ln.Addr().String()

	srv := server.New(m, s.coord, s.board, server.WithLogger(s.logger))
	srvCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.stopServer = cancel
	s.serverErrors = make(chan error, 1)
	go func() {
		s.serverErrors <- srv.Serve(srvCtx, ln)
	}()
	return nil
}

// Close stops the server, the coordinator and the tracer, in that order.
func (s *services) Close() {
	if s.stopServer != nil {
		s.stopServer()
		if err := <-s.serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server failed", err)
		}
		s.stopServer = nil
	}
	if s.coord != nil {
		s.coord.Close()
	}
	s.shutdownTracing()
}

func (s *services) shutdownTracing() {
	if s.tracing == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.tracing.Shutdown(ctx); err != nil {
		s.logger.Error("tracing shutdown failed", err)
	}
	s.tracing = nil
}

// String describes the active services for debug logs.
func (s *services) String() string {
	return fmt.Sprintf("sinks=%d server=%q tracing=%t", s.sinks.Len(), s.serverAddr, s.tracing != nil && s.tracing.Enabled())
}

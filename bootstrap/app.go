package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
)

// App owns the lifecycle of one seqkit program run.
type App struct {
	Name    string
	Version string
	Cfg     *config.Config
	Logger  *logger.Logger
	Summary *Summary

	gracefulTimeout time.Duration
	onStart         []Hook
	onStop          []Hook
}

// NewApp applies defaults, validates cfg and initializes the logger.
func NewApp(cfg *config.Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	app := &App{
		Name:            cfg.Base.Name,
		Version:         cfg.Base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(cfg.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	app.Summary = NewSummary(app.Name, app.Version, o.summaryOut)
	return app, nil
}

// RunTask executes task with the full lifecycle. The task context is
// cancelled on SIGINT or SIGTERM. A task error takes precedence over a
// shutdown error.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	start := time.Now()
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, cancelling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)
	a.Summary.SetDuration(time.Since(start))
	a.Summary.Display()

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App) startup(ctx context.Context) error {
	a.Logger.Debug("Starting task", logger.Fields("name", a.Name, "version", a.Version))

	if a.Cfg.Telemetry.Enabled {
		if err := a.startTelemetry(ctx); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	return nil
}

// startTelemetry installs the OTLP tracer and meter providers and registers
// their shutdown.
func (a *App) startTelemetry(ctx context.Context) error {
	tp, err := observability.InitTracer(ctx, a.Cfg.Telemetry.TracerConfig(a.Cfg.Base))
	if err != nil {
		return err
	}
	mp, err := observability.InitMeter(ctx, a.Cfg.Telemetry.MeterConfig(a.Cfg.Base))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	a.OnStop(tp.Shutdown, mp.Shutdown)
	a.Logger.Info("Telemetry enabled", logger.Fields("endpoint", a.Cfg.Telemetry.Endpoint))
	return nil
}

// stop runs the stop hooks in reverse order within the graceful timeout.
// Every hook runs; the first error is returned.
func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	for i := len(a.onStop) - 1; i >= 0; i-- {
		if err := a.onStop[i](ctx); err != nil {
			a.Logger.Error("OnStop hook error", logger.ErrorFields("shutdown", err))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}
	a.Logger.Debug("Task shutdown complete")
	return shutdownErr
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/svcctl/internal/cliconfig"
	"github.com/bft-labs/svcctl/pkg/lifecycle"
	"github.com/bft-labs/svcctl/pkg/log"
	"github.com/bft-labs/svcctl/pkg/supervisor"
	"github.com/bft-labs/svcctl/plugins/controlfile"
)

const helpDescription = `
Run a pool of workers under a pause/resume/stop control plane.

Workers repeatedly run a simulated unit of work. Control the pool by writing
"pause", "resume" or "stop" to the control file, or stop it with SIGINT/SIGTERM.
`

var exampleUsage = strings.TrimSpace(`
  svcctl --workers 4 --unit 500ms --control-file /tmp/svcctl.control
  echo pause > /tmp/svcctl.control
  svcctl --config $HOME/.svcctl/config.toml --max-units 100
`)

var errSimulated = errors.New("simulated unit failure")

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	bootLog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	root := &cobra.Command{
		Use:          "svcctl",
		Short:        "Run workers under a pause/resume/stop control plane",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s (lifecycle %s) %s/%s", getVersion(), lifecycle.Version, runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Flags win over env, env wins over the file.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := log.NewZerologAdapter(os.Stderr, cfg.LogLevel)
			if err != nil {
				return err
			}
			logger.Info("configuration", log.Any("config", cfg))

			return run(cmd.Context(), cfg, logger)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.svcctl/config.toml)")
	root.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "number of concurrent workers")
	root.Flags().DurationVar(&cfg.Unit, "unit", cfg.Unit, "duration of one simulated unit of work")
	root.Flags().Float64Var(&cfg.FailureRate, "failure-rate", cfg.FailureRate, "fraction of units that fail and are retried")
	root.Flags().IntVar(&cfg.MaxUnits, "max-units", cfg.MaxUnits, "units per worker before it exits (0 = until stopped)")
	root.Flags().StringVar(&cfg.ControlFile, "control-file", cfg.ControlFile, "file accepting pause/resume/stop commands (disabled when empty)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "maximum time to wait for workers after stop")
	root.Flags().DurationVar(&cfg.BackoffInitial, "backoff-initial", cfg.BackoffInitial, "first retry delay after a failed unit")
	root.Flags().DurationVar(&cfg.BackoffMax, "backoff-max", cfg.BackoffMax, "maximum retry delay")

	if err := root.Execute(); err != nil {
		bootLog.Error().Err(err).Msg("svcctl")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliconfig.Config, logger *log.ZerologAdapter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	handle, inst := lifecycle.New(lifecycle.WithLogger(logger.With("lifecycle")))
	defer handle.Close()

	pool := supervisor.NewPool(supervisor.Config{
		Workers:        cfg.Workers,
		MaxUnits:       cfg.MaxUnits,
		BackoffInitial: cfg.BackoffInitial,
		BackoffMax:     cfg.BackoffMax,
	}, inst, simulatedUnit(cfg.Unit, cfg.FailureRate), supervisor.WithLogger(logger.With("supervisor")))

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("start pool: %w", err)
	}
	// Every worker holds its own clone.
	inst.Release()

	if cfg.ControlFile != "" {
		watcher := controlfile.New(controlfile.DefaultConfig(cfg.ControlFile), handle, logger.With("controlfile"))
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start plugin %s: %w", watcher.Name(), err)
		}
		logger.Info("plugin started", log.String("plugin", watcher.Name()))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := watcher.Shutdown(shutdownCtx); err != nil {
				logger.Warn("plugin shutdown", log.String("plugin", watcher.Name()), log.Err(err))
				return
			}
			logger.Info("plugin stopped", log.String("plugin", watcher.Name()))
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, stopping", log.String("signal", sig.String()))
	case <-pool.Done():
		logger.Info("all workers finished")
	}

	if _, err := handle.Stop(); err != nil && !errors.Is(err, lifecycle.ErrNoObservers) {
		logger.Warn("stop", log.Err(err))
	}

	if err := pool.WaitWithTimeout(cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("wait for workers: %w", err)
	}

	logger.Info("shutdown complete", log.Int("units", pool.Units()))
	return nil
}

// simulatedUnit sleeps for d and fails with the given probability.
func simulatedUnit(d time.Duration, failureRate float64) supervisor.Task {
	return func(ctx context.Context) error {
		t := time.NewTimer(d)
		defer t.Stop()

		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}

		if failureRate > 0 && rand.Float64() < failureRate {
			return errSimulated
		}
		return nil
	}
}

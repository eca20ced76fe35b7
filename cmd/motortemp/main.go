package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/motortemp/internal/colormap"
	"codeberg.org/mutker/motortemp/internal/config"
	"codeberg.org/mutker/motortemp/internal/errors"
	"codeberg.org/mutker/motortemp/internal/geometry"
	"codeberg.org/mutker/motortemp/internal/logger"
	"codeberg.org/mutker/motortemp/internal/marker"
	"codeberg.org/mutker/motortemp/internal/metrics"
	"codeberg.org/mutker/motortemp/internal/motor"
	"codeberg.org/mutker/motortemp/internal/pid"
	"codeberg.org/mutker/motortemp/internal/publisher"
	"codeberg.org/mutker/motortemp/internal/server"
	"codeberg.org/mutker/motortemp/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

type app struct {
	cfg      *config.Config
	pidFile  *pid.File
	recorder metrics.Recorder
	table    *motor.Table
	hub      *server.Hub
	loop     *publisher.Loop
	srv      *server.Server
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{
		Level:          cfg.LogLevel,
		Debug:          cfg.Debug,
		Verbose:        cfg.Verbose,
		IsService:      logger.IsService(),
		File:           cfg.LogFile.Path,
		FileMaxSizeMB:  cfg.LogFile.MaxSizeMB,
		FileMaxBackups: cfg.LogFile.MaxBackups,
		FileMaxAgeDays: cfg.LogFile.MaxAgeDays,
	})
	defer logger.Close()

	logger.Debug().Str("file", cfg.ConfigFile).Msg("Config loaded")

	a, err := newApp(cfg)
	if err != nil {
		logAndExit(err, "Failed to initialize")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	runErr := a.run(ctx)
	a.cleanup()

	if runErr != nil {
		logAndExit(runErr, "Exiting with error")
	}
	logger.Info().Msg("Exiting...")
}

func newApp(cfg *config.Config) (*app, error) {
	errFactory := errors.New()
	a := &app{cfg: cfg, pidFile: pid.New(cfg.PIDFile)}

	if err := a.pidFile.Write(); err != nil {
		return nil, err
	}

	recorder, err := metrics.NewService(metrics.Config{
		Enabled:     cfg.Metrics.Enabled,
		Interval:    cfg.Metrics.Interval,
		ServiceName: config.DefaultConfigName,
	})
	if err != nil {
		a.cleanup()
		return nil, errFactory.Wrap(errors.ErrInitMetrics, err)
	}
	a.recorder = recorder

	resolver, err := newResolver(cfg)
	if err != nil {
		a.cleanup()
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}

	motors := make([]motor.Config, 0, len(cfg.Motors))
	for _, m := range cfg.Motors {
		motors = append(motors, motor.Config{
			Name:           m.Name,
			Link:           m.Link,
			MinTemperature: m.MinTemperature,
			MaxTemperature: m.MaxTemperature,
		})
	}

	factory := marker.NewFactory(marker.NewIDAllocator(marker.DefaultFirstID), resolver)
	a.table, err = motor.NewTable(motors, factory, motor.WithScaling(colormap.ParseScaling(string(cfg.ColorScaling))))
	if err != nil {
		a.cleanup()
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}

	ingest, err := telemetry.NewIngest(telemetry.DefaultConfig(), a.table, recorder)
	if err != nil {
		a.cleanup()
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}

	a.hub = server.NewHub(recorder)
	a.srv, err = server.New(server.Config{Listen: cfg.Listen}, ingest, a.table, a.hub)
	if err != nil {
		a.cleanup()
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}

	a.loop, err = publisher.New(publisher.Config{
		Interval:  cfg.PublishInterval(),
		Threshold: cfg.Threshold,
	}, a.table, recorder, a.hub, publisher.LogSink())
	if err != nil {
		a.cleanup()
		return nil, errFactory.Wrap(errors.ErrInitApp, err)
	}

	logger.Info().
		Int("motors", a.table.Len()).
		Float64("publish_rate", cfg.PublishRate).
		Float64("threshold", cfg.Threshold).
		Str("color_scaling", string(cfg.ColorScaling)).
		Msg("Motor temperature markers initialized")

	return a, nil
}

// newResolver prefers the geometry file over the robot description so
// individual links can be overridden.
func newResolver(cfg *config.Config) (geometry.Resolver, error) {
	var chain geometry.Chain

	if cfg.GeometryFile != "" {
		overrides, err := geometry.LoadOverrides(cfg.GeometryFile)
		if err != nil {
			return nil, err
		}
		chain = append(chain, overrides)
	}

	if cfg.RobotDescription != "" {
		urdf, err := geometry.LoadURDF(cfg.RobotDescription)
		if err != nil {
			return nil, err
		}
		chain = append(chain, urdf)
	}

	if len(chain) == 0 {
		logger.Warn().Msg("No robot description or geometry file configured, every motor uses the fallback cube")
	}

	return chain, nil
}

func (a *app) run(ctx context.Context) error {
	errFactory := errors.New()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.srv.Run(ctx); err != nil {
			return errFactory.Wrap(errors.ErrServe, err)
		}
		return nil
	})
	g.Go(func() error {
		// The hub outlives the loop so the last tick never hits a closed hub
		defer a.hub.Close()

		if err := a.loop.Run(ctx); err != nil {
			return errFactory.Wrap(errors.ErrPublish, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return errFactory.Wrap(errors.ErrMainLoop, err)
	}
	return nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func (a *app) cleanup() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close metrics")
		}
	}
	if err := a.pidFile.Remove(); err != nil {
		logger.Error().Err(err).Msg("Failed to remove PID file")
	}
}

func logAndExit(err error, msg string) {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		logger.ErrorWithCode(appErr).Msg(msg)
	} else {
		logger.Error().Err(err).Msg(msg)
	}
	_ = logger.Close()
	os.Exit(1)
}

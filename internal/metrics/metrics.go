package metrics

import (
	"context"
	"os"

	"codeberg.org/mutker/motortemp/internal/errors"
	"codeberg.org/mutker/motortemp/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const instrumentationName = "codeberg.org/mutker/motortemp/internal/metrics"

type service struct {
	provider *sdkmetric.MeterProvider

	reports     metric.Int64Counter
	applied     metric.Int64Counter
	rejected    metric.Int64Counter
	batches     metric.Int64Counter
	markers     metric.Int64Counter
	subscribers metric.Int64UpDownCounter
}

// No-op implementation
type noopRecorder struct{}

// NewService returns an OpenTelemetry backed Recorder exporting to
// cfg.Writer every cfg.Interval, or a no-op Recorder when disabled.
func NewService(cfg Config) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If metrics is disabled, return a no-op recorder
	if !cfg.Enabled {
		logger.Debug().Msg("Metrics collection disabled, using no-op recorder")
		return Noop(), nil
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, errFactory.Wrap(ErrExporterInit, err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))

	svc, err := NewWithReader(cfg, reader)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Dur("interval", cfg.Interval).
		Bool("enabled", cfg.Enabled).
		Msg("Metrics service initialized successfully")

	return svc, nil
}

// NewWithReader builds a Recorder on top of the given reader.
func NewWithReader(cfg Config, reader sdkmetric.Reader) (Recorder, error) {
	errFactory := errors.New()

	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
	)

	s := &service{provider: provider}
	if err := s.initInstruments(provider.Meter(instrumentationName)); err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, errFactory.Wrap(ErrInstrumentInit, err)
	}

	return s, nil
}

func (s *service) initInstruments(m metric.Meter) error {
	var err error

	if s.reports, err = m.Int64Counter(
		"motortemp.reports",
		metric.WithDescription("Diagnostic reports received"),
	); err != nil {
		return err
	}
	if s.applied, err = m.Int64Counter(
		"motortemp.readings.applied",
		metric.WithDescription("Temperature readings applied to the motor table"),
	); err != nil {
		return err
	}
	if s.rejected, err = m.Int64Counter(
		"motortemp.readings.rejected",
		metric.WithDescription("Temperature readings that could not be parsed"),
	); err != nil {
		return err
	}
	if s.batches, err = m.Int64Counter(
		"motortemp.batches",
		metric.WithDescription("Marker batches published"),
	); err != nil {
		return err
	}
	if s.markers, err = m.Int64Counter(
		"motortemp.markers",
		metric.WithDescription("Markers published"),
	); err != nil {
		return err
	}
	s.subscribers, err = m.Int64UpDownCounter(
		"motortemp.subscribers",
		metric.WithDescription("Connected marker feed subscribers"),
	)

	return err
}

func (s *service) ReportReceived(ctx context.Context) {
	s.reports.Add(ctx, 1)
}

func (s *service) ReadingApplied(ctx context.Context, motor string) {
	s.applied.Add(ctx, 1, metric.WithAttributes(attribute.String("motor", motor)))
}

func (s *service) ReadingRejected(ctx context.Context, motor string) {
	s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("motor", motor)))
}

func (s *service) BatchPublished(ctx context.Context, markers int) {
	s.batches.Add(ctx, 1)
	s.markers.Add(ctx, int64(markers))
}

func (s *service) SubscribersChanged(ctx context.Context, delta int64) {
	s.subscribers.Add(ctx, delta)
}

func (s *service) Close() error {
	if err := s.provider.Shutdown(context.Background()); err != nil {
		return errors.New().Wrap(ErrServiceShutdown, err)
	}
	return nil
}

// Noop returns a Recorder that discards everything.
func Noop() Recorder {
	return &noopRecorder{}
}

// No-op implementation
func (*noopRecorder) ReportReceived(context.Context)            {}
func (*noopRecorder) ReadingApplied(context.Context, string)    {}
func (*noopRecorder) ReadingRejected(context.Context, string)   {}
func (*noopRecorder) BatchPublished(context.Context, int)       {}
func (*noopRecorder) SubscribersChanged(context.Context, int64) {}
func (*noopRecorder) Close() error                              { return nil }

// Package publisher runs the fixed rate loop that emits the visible markers.
package publisher

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/mutker/motortemp/internal/errors"
	"codeberg.org/mutker/motortemp/internal/logger"
	"codeberg.org/mutker/motortemp/internal/marker"
	"codeberg.org/mutker/motortemp/internal/metrics"
)

// Source provides the markers to publish.
type Source interface {
	Visible(threshold float64) []marker.Marker
}

// Sink receives every batch.
type Sink interface {
	Publish(ctx context.Context, batch marker.Array) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, batch marker.Array) error

func (f SinkFunc) Publish(ctx context.Context, batch marker.Array) error {
	return f(ctx, batch)
}

type Config struct {
	Interval  time.Duration
	Threshold float64
}

func (c Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New().WithData(ErrInvalidConfig, fmt.Sprintf("interval %s", c.Interval))
	}
	return nil
}

// Loop publishes a batch every Interval. Batches are sent even when empty
// or unchanged.
type Loop struct {
	cfg      Config
	source   Source
	sinks    []Sink
	recorder metrics.Recorder
	now      func() time.Time
	seq      uint64
}

func New(cfg Config, source Source, recorder metrics.Recorder, sinks ...Sink) (*Loop, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	if recorder == nil {
		recorder = metrics.Noop()
	}

	return &Loop{
		cfg:      cfg,
		source:   source,
		sinks:    sinks,
		recorder: recorder,
		now:      time.Now,
	}, nil
}

// Run publishes until ctx is cancelled. It returns within one interval of
// cancellation.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	logger.Info().
		Dur("interval", l.cfg.Interval).
		Float64("threshold", l.cfg.Threshold).
		Int("sinks", len(l.sinks)).
		Msg("Publication loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Uint64("batches", l.seq).Msg("Publication loop stopped")
			return nil
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Tick builds one batch and hands it to every sink. A failing sink does not
// prevent delivery to the others.
func (l *Loop) Tick(ctx context.Context) marker.Array {
	l.seq++
	batch := marker.Array{
		Stamp:   l.now(),
		Seq:     l.seq,
		Markers: l.source.Visible(l.cfg.Threshold),
	}

	for _, sink := range l.sinks {
		if err := deliver(ctx, sink, batch); err != nil {
			if appErr, ok := err.(errors.Error); ok {
				logger.ErrorWithCode(appErr).Uint64("seq", batch.Seq).Msg("Failed to publish markers")
			} else {
				logger.Error().Err(err).Uint64("seq", batch.Seq).Msg("Failed to publish markers")
			}
		}
	}

	l.recorder.BatchPublished(ctx, len(batch.Markers))

	return batch
}

func deliver(ctx context.Context, sink Sink, batch marker.Array) (err error) {
	errFactory := errors.New()

	defer func() {
		if r := recover(); r != nil {
			err = errFactory.WithData(ErrSinkPanic, r)
		}
	}()

	if err := sink.Publish(ctx, batch); err != nil {
		return errFactory.Wrap(ErrSinkFailed, err)
	}
	return nil
}

// LogSink logs a summary of each batch at debug level.
func LogSink() Sink {
	return SinkFunc(func(_ context.Context, batch marker.Array) error {
		logger.Debug().
			Uint64("seq", batch.Seq).
			Int("markers", len(batch.Markers)).
			Msg("Published markers")
		return nil
	})
}

package telemetry

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"codeberg.org/mutker/motortemp/internal/errors"
	"codeberg.org/mutker/motortemp/internal/logger"
	"codeberg.org/mutker/motortemp/internal/metrics"
	"github.com/patrickmn/go-cache"
)

// Ingest extracts motor drive temperatures from diagnostic reports and
// applies them to the motor table.
type Ingest struct {
	table    Updater
	motors   []string
	patterns []string
	recorder metrics.Recorder
	warned   *cache.Cache
}

func NewIngest(cfg Config, table Updater, recorder metrics.Recorder) (*Ingest, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}
	if recorder == nil {
		recorder = metrics.Noop()
	}

	motors := table.Names()
	patterns := make([]string, len(motors))
	for i, m := range motors {
		patterns[i] = MotorStatusPrefix + m
	}

	in := &Ingest{
		table:    table,
		motors:   motors,
		patterns: patterns,
		recorder: recorder,
	}
	if cfg.WarnInterval > 0 {
		in.warned = cache.New(cfg.WarnInterval, 2*cfg.WarnInterval)
	}

	return in, nil
}

// OnReport applies every drive temperature found in report. A status entry
// updates each configured motor whose "Hardware: Motor: <name>" pattern is a
// substring of the entry name, so one entry may update several motors.
//
// Malformed readings leave their motor untouched; they are collected into
// the returned error while the rest of the report is still applied.
func (in *Ingest) OnReport(ctx context.Context, report Report) (Result, error) {
	in.recorder.ReportReceived(ctx)

	var (
		res  Result
		errs []error
	)
	for _, st := range report.Status {
		for i, pattern := range in.patterns {
			if !strings.Contains(st.Name, pattern) {
				continue
			}
			motor := in.motors[i]
			res.Matched++

			for _, kv := range st.Values {
				if kv.Key != DriveTemperatureKey {
					continue
				}

				temperature, err := parseTemperature(kv.Value)
				if err != nil {
					res.Invalid++
					errs = append(errs, in.reject(ctx, motor, st.Name, kv.Value, err))
					continue
				}

				logger.Debug().
					Str("motor", motor).
					Float64("temperature", temperature).
					Msg("Adjusting markers")

				if in.table.ApplyReading(motor, temperature) {
					res.Applied++
					in.recorder.ReadingApplied(ctx, motor)
				}
			}
		}
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}

func (in *Ingest) reject(ctx context.Context, motor, status, value string, cause error) error {
	in.recorder.ReadingRejected(ctx, motor)

	err := errors.New().WithData(ErrInvalidTemperature, struct {
		Motor  string
		Status string
		Value  string
		Error  string
	}{
		Motor:  motor,
		Status: status,
		Value:  value,
		Error:  cause.Error(),
	})

	if in.firstWarning(motor) {
		logger.Warn().
			Str("motor", motor).
			Str("status", status).
			Str("value", value).
			Msg("Malformed drive temperature, keeping last known value")
	} else {
		logger.Debug().
			Str("motor", motor).
			Str("value", value).
			Msg("Malformed drive temperature")
	}

	return err
}

// firstWarning reports whether no warning was logged for motor within the
// warn interval.
func (in *Ingest) firstWarning(motor string) bool {
	if in.warned == nil {
		return true
	}
	return in.warned.Add(motor, struct{}{}, cache.DefaultExpiration) == nil
}

// parseTemperature accepts finite decimal numbers only. NaN and infinities
// cannot be carried by the JSON marker feed.
func parseTemperature(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite temperature %q", s)
	}
	return v, nil
}

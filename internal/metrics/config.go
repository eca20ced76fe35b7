package metrics

import (
	"io"
	"time"

	"codeberg.org/mutker/motortemp/internal/errors"
)

const (
	defaultInterval    = time.Minute
	defaultServiceName = "motortemp"
)

type Config struct {
	Enabled     bool
	Interval    time.Duration
	ServiceName string
	// Writer receives the periodic export. Defaults to stdout when nil.
	Writer io.Writer
}

func DefaultConfig() Config {
	return Config{
		Enabled:     false, // Disabled by default
		Interval:    defaultInterval,
		ServiceName: defaultServiceName,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate the interval if metrics is enabled
	if c.Enabled && c.Interval <= 0 {
		return errFactory.WithData(ErrInvalidInterval, c.Interval)
	}
	return nil
}

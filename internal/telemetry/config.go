package telemetry

import (
	"time"

	"codeberg.org/mutker/motortemp/internal/errors"
)

const (
	// MotorStatusPrefix precedes the motor name in a status entry name.
	MotorStatusPrefix = "Hardware: Motor: "
	// DriveTemperatureKey is the reading used to color a motor.
	DriveTemperatureKey = "Drive temperature"

	defaultWarnInterval = 30 * time.Second
)

type Config struct {
	// WarnInterval is how long a malformed reading for a motor is logged
	// only once. Zero logs every occurrence.
	WarnInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		WarnInterval: defaultWarnInterval,
	}
}

func (c Config) Validate() error {
	if c.WarnInterval < 0 {
		return errors.New().WithData(ErrInvalidConfig, c.WarnInterval)
	}
	return nil
}

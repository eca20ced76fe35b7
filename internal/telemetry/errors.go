package telemetry

import "codeberg.org/mutker/motortemp/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")

	// Report Errors
	ErrInvalidTemperature = errors.ErrorCode("telemetry_invalid_temperature")
	ErrInvalidReport      = errors.ErrorCode("telemetry_invalid_report")
)

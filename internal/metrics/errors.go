package metrics

import "codeberg.org/mutker/motortemp/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig   = errors.ErrInvalidConfig
	ErrInvalidInterval = errors.ErrorCode("metrics_invalid_interval")

	// Provider Errors
	ErrExporterInit    = errors.ErrorCode("metrics_exporter_init_failed")
	ErrInstrumentInit  = errors.ErrorCode("metrics_instrument_init_failed")
	ErrServiceShutdown = errors.ErrShutdownFailed
)

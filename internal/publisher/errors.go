package publisher

import "codeberg.org/mutker/motortemp/internal/errors"

const (
	ErrInvalidConfig = errors.ErrorCode("publisher_invalid_config")
	ErrSinkFailed    = errors.ErrorCode("publisher_sink_failed")
	ErrSinkPanic     = errors.ErrorCode("publisher_sink_panic")
)

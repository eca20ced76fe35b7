package marker

import "codeberg.org/mutker/motortemp/internal/errors"

const (
	ErrUnknownShape = errors.ErrorCode("marker_unknown_shape")
	ErrInvalidScale = errors.ErrorCode("marker_invalid_scale")
)

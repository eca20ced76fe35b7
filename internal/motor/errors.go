package motor

import "codeberg.org/mutker/motortemp/internal/errors"

const (
	ErrInvalidMotor   = errors.ErrorCode("motor_invalid_configuration")
	ErrDuplicateMotor = errors.ErrorCode("motor_duplicate_name")
)

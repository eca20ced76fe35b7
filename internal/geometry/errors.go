package geometry

import "codeberg.org/mutker/motortemp/internal/errors"

const (
	ErrLinkNotFound     = errors.ErrorCode("geometry_link_not_found")
	ErrUnknownShape     = errors.ErrorCode("geometry_unknown_shape")
	ErrReadDescription  = errors.ErrorCode("geometry_read_description_failed")
	ErrParseDescription = errors.ErrorCode("geometry_parse_description_failed")
)

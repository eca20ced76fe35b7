package server

import "codeberg.org/mutker/motortemp/internal/errors"

const (
	ErrInvalidConfig = errors.ErrorCode("server_invalid_config")
	ErrListen        = errors.ErrorCode("server_listen_failed")
	ErrShutdown      = errors.ErrorCode("server_shutdown_failed")
	ErrHubClosed     = errors.ErrorCode("server_hub_closed")
)

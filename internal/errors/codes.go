package errors

// Common error codes
const (
	// System errors
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig ErrorCode = "invalid_configuration"
	ErrMissingConfig ErrorCode = "missing_configuration"
	ErrBindFlags     ErrorCode = "bind_flags_failed"
	ErrReadConfig    ErrorCode = "read_config_failed"
	ErrInvalidRate   ErrorCode = "invalid_publish_rate"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Shutdown errors
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Application errors
	ErrInitApp   ErrorCode = "init_app_failed"
	ErrMainLoop  ErrorCode = "main_loop_failed"
	ErrServe     ErrorCode = "serve_failed"
	ErrPublish   ErrorCode = "publish_failed"
	ErrReadPID   ErrorCode = "read_pid_failed"
	ErrWritePID  ErrorCode = "write_pid_failed"
	ErrRemovePID ErrorCode = "remove_pid_failed"

	// Metrics errors
	ErrInitMetrics ErrorCode = "init_metrics_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInvalidArgument: "Invalid argument provided",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrInvalidConfig:   "Invalid configuration",
	ErrMissingConfig:   "Missing configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read configuration",
	ErrInvalidRate:     "Invalid publish rate",
	ErrInvalidLogLevel: "Invalid log level",
	ErrShutdownFailed:  "Shutdown failed",
	ErrInitApp:         "Failed to initialize application",
	ErrMainLoop:        "Error in main loop",
	ErrServe:           "Failed to serve",
	ErrPublish:         "Failed to publish markers",
	ErrReadPID:         "Failed to read PID file",
	ErrWritePID:        "Failed to write PID file",
	ErrRemovePID:       "Failed to remove PID file",
	ErrInitMetrics:     "Failed to initialize metrics",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}

package logger

import "codeberg.org/mutker/motortemp/internal/errors"

// Logger defines the interface for logging operations.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
}

// Options configures the global logger.
type Options struct {
	Level     string
	Debug     bool
	Verbose   bool
	IsService bool

	// File enables an additional rotating log file when non-empty.
	File           string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int
}

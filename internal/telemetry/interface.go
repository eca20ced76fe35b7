package telemetry

import (
	"encoding/json"
	"io"

	"codeberg.org/mutker/motortemp/internal/errors"
)

// Updater is the motor table as seen by the ingest.
type Updater interface {
	Names() []string
	ApplyReading(motor string, temperature float64) bool
}

// Level mirrors diagnostic_msgs/DiagnosticStatus levels.
type Level int8

const (
	LevelOK Level = iota
	LevelWarn
	LevelError
	LevelStale
)

// KeyValue is one named reading of a status entry.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Status is the report of one hardware unit.
type Status struct {
	Level      Level      `json:"level"`
	Name       string     `json:"name"`
	Message    string     `json:"message"`
	HardwareID string     `json:"hardware_id"`
	Values     []KeyValue `json:"values"`
}

// Report is a batch of status entries, the diagnostics array.
type Report struct {
	Status []Status `json:"status"`
}

// Result summarizes the handling of one report.
type Result struct {
	Matched int `json:"matched"`
	Applied int `json:"applied"`
	Invalid int `json:"invalid"`
}

// DecodeReport reads one JSON encoded report.
func DecodeReport(r io.Reader) (Report, error) {
	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return Report{}, errors.New().Wrap(ErrInvalidReport, err).WithMessage("invalid diagnostics report")
	}
	return report, nil
}

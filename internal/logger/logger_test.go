package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/motortemp/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, InfoLevel, ParseLevel("INFO"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
}

func TestInitWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, WarnLevel)
	t.Cleanup(func() { InitWriter(&bytes.Buffer{}, WarnLevel) })

	Info().Msg("hidden")
	Warn().Str("motor", "m1").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"motor":"m1"`)
}

func TestErrorWithCode(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, DebugLevel)
	t.Cleanup(func() { InitWriter(&bytes.Buffer{}, WarnLevel) })

	Default().ErrorWithCode(errors.New().New(errors.ErrAlreadyRunning)).Msg("failed")

	assert.Contains(t, buf.String(), `"error_code":"already_running"`)
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motortemp.log")
	Init(Options{Level: "info", File: path})
	t.Cleanup(func() {
		_ = Close()
		InitWriter(&bytes.Buffer{}, WarnLevel)
	})

	Info().Msg("written to file")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

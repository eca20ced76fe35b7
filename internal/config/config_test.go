package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/motortemp/internal/config"
	"codeberg.org/mutker/motortemp/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
temperature_joints:
  - motor_name: gripper_left_motor
    link_to_show: gripper_left_base_link
    min_temperature: 20.0
    max_temperature: 60.0
  - motor_name: arm_left_1_motor
    link_to_show: arm_left_1_link
    min_temperature: 25
    max_temperature: 80
temperature_joints_general_publication_threshold: 0.25
publish_rate: 10
color_scaling: range
robot_description: /opt/robot/robot.urdf
listen: "127.0.0.1:9000"
log_level: debug
metrics:
  enabled: true
  interval: 15s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "motortemp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.NoError(t, err)

	require.Len(t, cfg.Motors, 2)
	assert.Equal(t, config.Motor{
		Name:           "gripper_left_motor",
		Link:           "gripper_left_base_link",
		MinTemperature: 20,
		MaxTemperature: 60,
	}, cfg.Motors[0])
	assert.Equal(t, "arm_left_1_motor", cfg.Motors[1].Name, "Expected configured order to be kept")
	assert.InDelta(t, 0.25, cfg.Threshold, 1e-9)
	assert.InDelta(t, 10.0, cfg.PublishRate, 1e-9)
	assert.Equal(t, 100*time.Millisecond, cfg.PublishInterval())
	assert.Equal(t, config.ScaleByRange, cfg.ColorScaling)
	assert.Equal(t, "/opt/robot/robot.urdf", cfg.RobotDescription)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Metrics.Interval)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
temperature_joints:
  - motor_name: m
    link_to_show: l
    min_temperature: 0
    max_temperature: 50
`)

	cfg, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.NoError(t, err)

	assert.InDelta(t, config.DefaultThreshold, cfg.Threshold, 1e-9)
	assert.InDelta(t, config.DefaultPublishRate, cfg.PublishRate, 1e-9)
	assert.Equal(t, 200*time.Millisecond, cfg.PublishInterval())
	assert.Equal(t, config.ScaleByMax, cfg.ColorScaling)
	assert.Equal(t, config.DefaultListen, cfg.Listen)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, filepath.Join(os.TempDir(), config.DefaultPIDFile), cfg.PIDFile)
	assert.InDelta(t, 0.0, cfg.Motors[0].MinTemperature, 1e-9, "Expected explicit zero min_temperature to be accepted")
}

func TestLoadMissingMotors(t *testing.T) {
	path := writeConfig(t, `publish_rate: 5`)

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrMissingConfig))
}

func TestLoadEmptyMotors(t *testing.T) {
	path := writeConfig(t, `temperature_joints: []`)

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrMissingConfig))
}

func TestLoadMissingMotorField(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"motor_name", `
temperature_joints:
  - link_to_show: l
    min_temperature: 20
    max_temperature: 60
`},
		{"link_to_show", `
temperature_joints:
  - motor_name: m
    min_temperature: 20
    max_temperature: 60
`},
		{"min_temperature", `
temperature_joints:
  - motor_name: m
    link_to_show: l
    max_temperature: 60
`},
		{"max_temperature", `
temperature_joints:
  - motor_name: m
    link_to_show: l
    min_temperature: 20
`},
		{"max_temperature zero", `
temperature_joints:
  - motor_name: m
    link_to_show: l
    min_temperature: 0
    max_temperature: 0
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
		})
	}
}

func TestLoadDuplicateMotor(t *testing.T) {
	path := writeConfig(t, `
temperature_joints:
  - {motor_name: m, link_to_show: a, min_temperature: 20, max_temperature: 60}
  - {motor_name: m, link_to_show: b, min_temperature: 20, max_temperature: 60}
`)

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate motor_name")
}

func TestLoadRangeScalingEmptyRange(t *testing.T) {
	tests := []struct {
		name    string
		scaling string
		wantErr bool
	}{
		{"range equal bounds", "range", true},
		{"max equal bounds", "max", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, `
temperature_joints:
  - {motor_name: m, link_to_show: a, min_temperature: 40, max_temperature: 40}
color_scaling: `+tt.scaling+`
`)

			_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
			assert.Contains(t, err.Error(), "max_temperature must exceed min_temperature")
		})
	}

	path := writeConfig(t, `
temperature_joints:
  - {motor_name: m, link_to_show: a, min_temperature: 50, max_temperature: 40}
color_scaling: range
`)
	_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig), "Expected inverted range to be rejected")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	path := writeConfig(t, "temperature_joints: [\n  this is: not: yaml")

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read configuration")
}

func TestInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, validConfig)

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs([]string{"--log-level", "loud"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid log level")
}

func TestInvalidColorScaling(t *testing.T) {
	path := writeConfig(t, `
temperature_joints:
  - {motor_name: m, link_to_show: l, min_temperature: 20, max_temperature: 60}
color_scaling: log
`)

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := config.Load(
		config.WithConfigFile(path),
		config.WithArgs([]string{"--rate", "2", "--threshold", "0.5", "--listen", ":7000", "--debug"}),
	)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, cfg.PublishRate, 1e-9)
	assert.InDelta(t, 0.5, cfg.Threshold, 1e-9)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.True(t, cfg.Debug)
}

func TestInvalidRateFlag(t *testing.T) {
	path := writeConfig(t, validConfig)

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs([]string{"--rate", "0"}))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidRate))
}

func TestConfigFromEnvironment(t *testing.T) {
	path := writeConfig(t, validConfig)
	t.Setenv("MOTORTEMP_CONFIG", path)
	t.Setenv("MOTORTEMP_LISTEN", ":6000")

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, ":6000", cfg.Listen)
}

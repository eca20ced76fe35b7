package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/motortemp/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix       = "MOTORTEMP"
	DefaultConfigName      = "motortemp"
	DefaultPublishRate     = 5.0
	DefaultThreshold       = 0.0
	DefaultListen          = ":8090"
	DefaultLogLevel        = "warning"
	DefaultMetricsInterval = time.Minute
	DefaultPIDFile         = "motortemp.pid"

	keyMotors    = "temperature_joints"
	keyThreshold = "temperature_joints_general_publication_threshold"
)

// Motor is one entry of the temperature_joints list.
type Motor struct {
	Name           string
	Link           string
	MinTemperature float64
	MaxTemperature float64
}

// motorRecord mirrors the on-disk shape; pointers let validation tell a
// missing temperature apart from an explicit 0.
type motorRecord struct {
	MotorName      string   `mapstructure:"motor_name" validate:"required"`
	LinkToShow     string   `mapstructure:"link_to_show" validate:"required"`
	MinTemperature *float64 `mapstructure:"min_temperature" validate:"required"`
	MaxTemperature *float64 `mapstructure:"max_temperature" validate:"required,gt=0"`
}

type MetricsConfig struct {
	Enabled  bool
	Interval time.Duration `validate:"gt=0"`
}

type LogFileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Config struct {
	Motors           []Motor
	Threshold        float64
	PublishRate      float64      `validate:"gt=0"`
	ColorScaling     ColorScaling `validate:"oneof=max range"`
	RobotDescription string
	GeometryFile     string
	Listen           string `validate:"required"`
	LogLevel         string
	LogFile          LogFileConfig
	PIDFile          string
	Debug            bool
	Verbose          bool
	Metrics          MetricsConfig
	ConfigFile       string
}

// PublishInterval returns the period of one publication tick.
func (c *Config) PublishInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.PublishRate)
}

func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
	}
	if !o.argsSet {
		o.args = os.Args[1:]
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	flags := newFlagSet()
	if err := flags.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	if err := bindFlags(v, flags); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	configPath := o.configPath
	if configPath == "" {
		configPath = v.GetString("config")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/motortemp")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if len(c.Motors) == 0 {
		return errFactory.WithMessage(errors.ErrMissingConfig,
			fmt.Sprintf("no %s configured", keyMotors))
	}

	seen := make(map[string]struct{}, len(c.Motors))
	for _, m := range c.Motors {
		if _, dup := seen[m.Name]; dup {
			return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("duplicate motor_name %q", m.Name))
		}
		seen[m.Name] = struct{}{}

		if c.ColorScaling == ScaleByRange && m.MaxTemperature <= m.MinTemperature {
			return errFactory.WithData(errors.ErrInvalidConfig,
				fmt.Sprintf("motor %q: max_temperature must exceed min_temperature with color_scaling %s", m.Name, ScaleByRange))
		}
	}

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.PublishRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidRate, c.PublishRate)
	}

	if err := validate.Struct(c); err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	return nil
}

var validate = validator.New()

func decode(v *viper.Viper) (*Config, error) {
	errFactory := errors.New()

	if !v.IsSet(keyMotors) {
		return nil, errFactory.WithMessage(errors.ErrMissingConfig,
			fmt.Sprintf("no %s found in configuration", keyMotors))
	}

	var records []motorRecord
	if err := v.UnmarshalKey(keyMotors, &records); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	motors := make([]Motor, 0, len(records))
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return nil, errFactory.WithData(errors.ErrInvalidConfig,
				fmt.Sprintf("%s[%d]: %v", keyMotors, i, err))
		}
		motors = append(motors, Motor{
			Name:           r.MotorName,
			Link:           r.LinkToShow,
			MinTemperature: *r.MinTemperature,
			MaxTemperature: *r.MaxTemperature,
		})
	}

	pidFile := v.GetString("pid_file")
	if pidFile == "" {
		pidFile = filepath.Join(os.TempDir(), DefaultPIDFile)
	}

	return &Config{
		Motors:           motors,
		Threshold:        v.GetFloat64(keyThreshold),
		PublishRate:      v.GetFloat64("publish_rate"),
		ColorScaling:     ColorScaling(strings.ToLower(v.GetString("color_scaling"))),
		RobotDescription: v.GetString("robot_description"),
		GeometryFile:     v.GetString("geometry_file"),
		Listen:           v.GetString("listen"),
		LogLevel:         strings.ToLower(v.GetString("log_level")),
		LogFile: LogFileConfig{
			Path:       v.GetString("log_file.path"),
			MaxSizeMB:  v.GetInt("log_file.max_size_mb"),
			MaxBackups: v.GetInt("log_file.max_backups"),
			MaxAgeDays: v.GetInt("log_file.max_age_days"),
		},
		PIDFile: pidFile,
		Debug:   v.GetBool("debug"),
		Verbose: v.GetBool("verbose"),
		Metrics: MetricsConfig{
			Enabled:  v.GetBool("metrics.enabled"),
			Interval: v.GetDuration("metrics.interval"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyThreshold, DefaultThreshold)
	v.SetDefault("publish_rate", DefaultPublishRate)
	v.SetDefault("color_scaling", string(ScaleByMax))
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.interval", DefaultMetricsInterval)
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("motortemp", pflag.ContinueOnError)
	flags.String("config", "", "Path to the configuration file")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.String("listen", DefaultListen, "Address of the HTTP/WebSocket server")
	flags.Float64("rate", DefaultPublishRate, "Marker publication rate in Hz")
	flags.Float64("threshold", DefaultThreshold, "General publication threshold")
	flags.String("pid-file", "", "Path to the PID file")
	flags.Bool("metrics", false, "Enable metrics export")

	return flags
}

var flagKeys = map[string]string{
	"config":    "config",
	"debug":     "debug",
	"verbose":   "verbose",
	"log-level": "log_level",
	"listen":    "listen",
	"rate":      "publish_rate",
	"threshold": keyThreshold,
	"pid-file":  "pid_file",
	"metrics":   "metrics.enabled",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

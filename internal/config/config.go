package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"pulse-rate-monitor/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Capture   CaptureConfig   `mapstructure:"capture"`
	Estimator EstimatorConfig `mapstructure:"estimator"`
	Simulate  SimulateConfig  `mapstructure:"simulate"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the optional
// measurement history store.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CaptureConfig governs the timed capture window of one session.
type CaptureConfig struct {
	SamplingRateHz    float64       `mapstructure:"sampling_rate_hz"`
	RequiredDuration  time.Duration `mapstructure:"required_duration"`
	FingerDetectDelay time.Duration `mapstructure:"finger_detect_delay"`
}

// EstimatorConfig holds the BPM estimation tunables.
type EstimatorConfig struct {
	ThresholdFraction float64 `mapstructure:"threshold_fraction"`
	RefractorySamples int     `mapstructure:"refractory_samples"`
	MinPeaks          int     `mapstructure:"min_peaks"`
	BPMMin            int     `mapstructure:"bpm_min"`
	BPMMax            int     `mapstructure:"bpm_max"`
	DefaultBPM        int     `mapstructure:"default_bpm"`
}

// SimulateConfig 描述合成脉搏信号源的参数。
type SimulateConfig struct {
	RateBPM        float64 `mapstructure:"rate_bpm"`
	BaseLevel      float64 `mapstructure:"base_level"`
	Amplitude      float64 `mapstructure:"amplitude"`
	NoiseAmplitude float64 `mapstructure:"noise_amplitude"`
	Seed           int64   `mapstructure:"seed"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PULSEWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pulsewatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("capture.sampling_rate_hz", 10.0)
	v.SetDefault("capture.required_duration", "15s")
	v.SetDefault("capture.finger_detect_delay", "2s")

	v.SetDefault("estimator.threshold_fraction", 0.3)
	v.SetDefault("estimator.refractory_samples", 6)
	v.SetDefault("estimator.min_peaks", 3)
	v.SetDefault("estimator.bpm_min", 40)
	v.SetDefault("estimator.bpm_max", 200)
	v.SetDefault("estimator.default_bpm", 70)

	v.SetDefault("simulate.rate_bpm", 72.0)
	v.SetDefault("simulate.base_level", 175.0)
	v.SetDefault("simulate.amplitude", 20.0)
	v.SetDefault("simulate.noise_amplitude", 5.0)
	v.SetDefault("simulate.seed", int64(0))

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Capture.SamplingRateHz <= 0 {
		return fmt.Errorf("capture.sampling_rate_hz must be greater than zero")
	}
	if c.Capture.RequiredDuration <= 0 {
		return fmt.Errorf("capture.required_duration must be greater than zero")
	}
	if c.Capture.FingerDetectDelay < 0 {
		return fmt.Errorf("capture.finger_detect_delay cannot be negative")
	}
	if c.Estimator.ThresholdFraction <= 0 {
		return fmt.Errorf("estimator.threshold_fraction must be greater than zero")
	}
	if c.Estimator.RefractorySamples < 0 {
		return fmt.Errorf("estimator.refractory_samples cannot be negative")
	}
	if c.Estimator.BPMMin <= 0 || c.Estimator.BPMMax <= c.Estimator.BPMMin {
		return fmt.Errorf("estimator bpm bounds 必须满足 0 < bpm_min < bpm_max")
	}
	if c.Simulate.RateBPM <= 0 {
		return fmt.Errorf("simulate.rate_bpm must be greater than zero")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}

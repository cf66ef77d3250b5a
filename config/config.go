// Package config loads logging and teardown settings from TOML or YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/disposable"
	"github.com/wippyai/disposable/engine"
	"github.com/wippyai/disposable/errors"
)

const (
	EnvLogLevel     = "DISPOSABLE_LOG_LEVEL"
	EnvLogEncoding  = "DISPOSABLE_LOG_ENCODING"
	EnvReportLeaks  = "DISPOSABLE_REPORT_LEAKS"
	defaultLevel    = "info"
	defaultEncoding = "console"
)

type Config struct {
	Log      LogConfig      `toml:"log" yaml:"log"`
	Teardown TeardownConfig `toml:"teardown" yaml:"teardown"`
}

type LogConfig struct {
	Level       string `toml:"level" yaml:"level"`
	Encoding    string `toml:"encoding" yaml:"encoding"`
	Development bool   `toml:"development" yaml:"development"`
}

type TeardownConfig struct {
	// ReportLeaks logs a warning for every tracked value reclaimed
	// without an explicit Dispose.
	ReportLeaks bool `toml:"report_leaks" yaml:"report_leaks"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:    defaultLevel,
			Encoding: defaultEncoding,
		},
	}
}

// Load reads path, decoding TOML or YAML by extension, then applies
// defaults, environment overrides and validation. An empty path yields
// Default with environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Load(errors.PhaseConfig, fmt.Sprintf("config load failed (%s)", path), err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), out); err != nil {
			return errors.Load(errors.PhaseConfig, fmt.Sprintf("config parse failed (%s)", path), err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return errors.Load(errors.PhaseConfig, fmt.Sprintf("config parse failed (%s)", path), err)
		}
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unsupported config extension %q", ext))
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = defaultLevel
	}
	if strings.TrimSpace(cfg.Log.Encoding) == "" {
		cfg.Log.Encoding = defaultEncoding
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogEncoding)); v != "" {
		cfg.Log.Encoding = v
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvReportLeaks))); err == nil {
		cfg.Teardown.ReportLeaks = v
	}
}

// Validate checks that the level and encoding are understood by zap.
func Validate(cfg Config) error {
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("invalid log level %q", cfg.Log.Level))
	}
	switch cfg.Log.Encoding {
	case "console", "json":
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("invalid log encoding %q", cfg.Log.Encoding))
	}
	return nil
}

// Build constructs the zap logger described by cfg.
func (cfg Config) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("invalid log level %q", cfg.Log.Level))
	}

	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = cfg.Log.Encoding
	if cfg.Log.Encoding == "console" {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindLoad, err, "build logger")
	}
	return l, nil
}

// Apply builds the logger, installs it in the disposable and engine
// packages and sets leak reporting. The caller should Sync the returned
// logger before exiting.
func Apply(cfg Config) (*zap.Logger, error) {
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	disposable.SetLogger(l)
	engine.SetLogger(l.Named("engine"))
	disposable.SetLeakReporting(cfg.Teardown.ReportLeaks)
	return l, nil
}

// Package config loads stmtparse.yaml and overlays STMTPARSE_* environment
// variables, optionally read from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/stmtparse/internal/export"
	"github.com/cleared-dev/stmtparse/internal/reconcile"
)

// FileName is the config file looked up in the working directory.
const FileName = "stmtparse.yaml"

// Environment variables that override the file.
const (
	EnvLenient   = "STMTPARSE_LENIENT"
	EnvTolerance = "STMTPARSE_TOLERANCE"
	EnvFeeAware  = "STMTPARSE_FEE_AWARE"
	EnvSeparator = "STMTPARSE_SEPARATOR"
	EnvLogLevel  = "STMTPARSE_LOG_LEVEL"
	EnvLogFormat = "STMTPARSE_LOG_FORMAT"
	EnvAddr      = "STMTPARSE_ADDR"
)

// Config represents the top-level stmtparse.yaml configuration.
type Config struct {
	Validation ValidationConfig `yaml:"validation"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
}

// ValidationConfig controls reconciliation strictness.
type ValidationConfig struct {
	Lenient   bool   `yaml:"lenient"`
	Tolerance string `yaml:"tolerance"` // decimal, e.g. "30.00"
	FeeAware  bool   `yaml:"fee_aware"`
}

// OutputConfig controls CSV export.
type OutputConfig struct {
	Separator string `yaml:"separator"` // single character or "tab"
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a stmtparse.yaml file from disk. Keys absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Resolve loads path, or FileName from the working directory when path is
// empty. A missing FileName yields the defaults; a missing explicit path is
// an error.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := Load(FileName)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns strict, fee-aware validation with comma-separated output.
func Default() *Config {
	return &Config{
		Validation: ValidationConfig{
			Tolerance: reconcile.DefaultTolerance.StringFixed(2),
			FeeAware:  true,
		},
		Output: OutputConfig{
			Separator: ",",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// ApplyEnv overlays STMTPARSE_* variables onto cfg. Variables are first
// loaded from envFile when given, or from ./.env when present. Variables
// already set in the process win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var err error
	if c.Validation.Lenient, err = boolEnv(EnvLenient, c.Validation.Lenient); err != nil {
		return err
	}
	if c.Validation.FeeAware, err = boolEnv(EnvFeeAware, c.Validation.FeeAware); err != nil {
		return err
	}
	c.Validation.Tolerance = stringEnv(EnvTolerance, c.Validation.Tolerance)
	c.Output.Separator = stringEnv(EnvSeparator, c.Output.Separator)
	c.Log.Level = stringEnv(EnvLogLevel, c.Log.Level)
	c.Log.Format = stringEnv(EnvLogFormat, c.Log.Format)
	c.Server.Addr = stringEnv(EnvAddr, c.Server.Addr)
	return nil
}

// ValidationOptions converts the validation section for the reconciler.
func (c *Config) ValidationOptions() (reconcile.Options, error) {
	opts := reconcile.Options{
		FeeAware:  c.Validation.FeeAware,
		Lenient:   c.Validation.Lenient,
		Tolerance: reconcile.DefaultTolerance,
	}
	if c.Validation.Tolerance != "" {
		tol, err := decimal.NewFromString(c.Validation.Tolerance)
		if err != nil {
			return reconcile.Options{}, fmt.Errorf("parsing tolerance %q: %w", c.Validation.Tolerance, err)
		}
		if tol.IsNegative() {
			return reconcile.Options{}, fmt.Errorf("tolerance %q must not be negative", c.Validation.Tolerance)
		}
		opts.Tolerance = tol
	}
	return opts, nil
}

// Separator returns the output separator rune.
func (c *Config) Separator() (rune, error) {
	return export.ParseSeparator(c.Output.Separator)
}

func stringEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

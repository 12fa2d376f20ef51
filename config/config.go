// Package config provides configuration loading for the gpgcore tools.
//
// Configuration is read from a single YAML file named by the --config flag
// or the GPGCORE_CONFIG environment variable. Values missing from the file
// keep their defaults.
//
//	status:
//	  prefix: "[GNUPG:] "
//	  max_line_length: 65536
//	passphrase:
//	  source: file
//	  file: /run/secrets/gpg-passphrase
//	log:
//	  level: debug
//	  format: json
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smnsjas/go-gpgcore/status"
)

// EnvVar names the environment variable consulted by Load.
const EnvVar = "GPGCORE_CONFIG"

// Source selects where a tool obtains passphrases.
type Source string

const (
	// SourceTerminal prompts on the controlling terminal.
	SourceTerminal Source = "terminal"
	// SourceFile reads the first line of a file.
	SourceFile Source = "file"
	// SourceEnv reads an environment variable.
	SourceEnv Source = "env"
	// SourceNone answers every query with an empty line.
	SourceNone Source = "none"
)

// Config is the top-level configuration.
type Config struct {
	// Status configures status line parsing.
	Status StatusConfig `yaml:"status"`

	// Passphrase configures the passphrase source.
	Passphrase PassphraseConfig `yaml:"passphrase"`

	// Log configures diagnostic output.
	Log LogConfig `yaml:"log"`
}

// StatusConfig configures the status dispatcher.
type StatusConfig struct {
	// Prefix is stripped from every status line.
	// Default: "[GNUPG:] "
	Prefix string `yaml:"prefix"`

	// MaxLineLength bounds a single status line in bytes.
	// Default: 65536
	MaxLineLength int `yaml:"max_line_length"`
}

// PassphraseConfig configures the passphrase source.
type PassphraseConfig struct {
	// Source is one of terminal, file, env or none.
	// Default: terminal
	Source Source `yaml:"source"`

	// File is read when Source is file.
	File string `yaml:"file"`

	// Env is the variable read when Source is env.
	// Default: GPGCORE_PASSPHRASE
	Env string `yaml:"env"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	// Default: info
	Level string `yaml:"level"`

	// Format is text or json.
	// Default: text
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Status: StatusConfig{
			Prefix:        status.DefaultPrefix,
			MaxLineLength: status.DefaultMaxLineLength,
		},
		Passphrase: PassphraseConfig{
			Source: SourceTerminal,
			Env:    "GPGCORE_PASSPHRASE",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads the file named by GPGCORE_CONFIG. Without the variable it
// returns the defaults.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of the defaults and
// validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Status.MaxLineLength <= 0 {
		errs = append(errs, fmt.Errorf("status.max_line_length must be positive, got %d", c.Status.MaxLineLength))
	}

	switch c.Passphrase.Source {
	case SourceTerminal, SourceNone:
	case SourceFile:
		if c.Passphrase.File == "" {
			errs = append(errs, fmt.Errorf("passphrase.file is required when passphrase.source is file"))
		}
	case SourceEnv:
		if c.Passphrase.Env == "" {
			errs = append(errs, fmt.Errorf("passphrase.env is required when passphrase.source is env"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid passphrase.source: %q", c.Passphrase.Source))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log.format: %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log.level: %q", s)
	}
	return level, nil
}

// NewLogger builds the configured slog logger writing to w.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch c.Log.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log.format: %q", c.Log.Format)
	}
}

// Package config loads engine settings from a YAML file, a .env
// file and EQUATE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"digital.vasic.equate/pkg/capability"
	"digital.vasic.equate/pkg/logging"
	"digital.vasic.equate/pkg/render"
)

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Log formats.
const (
	LogNone    = "none"
	LogConsole = "console"
	LogJSON    = "json"
)

// Config holds engine settings.
type Config struct {
	// Color is auto, always or never.
	Color string `yaml:"color"`

	// Style renders printable values: go, spew or plain.
	Style string `yaml:"style"`

	// MaxValueWidth truncates rendered values. Zero disables it.
	MaxValueWidth int `yaml:"max_value_width"`

	// Diff appends unified diffs to failed == of multi-line values.
	Diff bool `yaml:"diff"`

	// Redact lists identifiers whose values are never rendered.
	Redact []string `yaml:"redact"`

	Log LogConfig `yaml:"log"`

	// History is a JSON Lines file receiving every failure.
	History string `yaml:"history"`

	// Archive is a directory keeping the latest failure of each
	// site. "cache" selects the user cache directory.
	Archive string `yaml:"archive"`

	// MonitorAddr serves live failures over WebSocket when set.
	MonitorAddr string `yaml:"monitor_addr"`
}

// LogConfig configures engine logging.
type LogConfig struct {
	// Format is none, console or json.
	Format string `yaml:"format"`

	// Path is the JSON log file; empty means stdout.
	Path string `yaml:"path"`

	// FailurePath receives one JSON line per failure.
	FailurePath string `yaml:"failure_path"`

	Level   string `yaml:"level"`
	Verbose bool   `yaml:"verbose"`

	// Secrets are masked wherever they appear in log output.
	Secrets []string `yaml:"secrets"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Color: ColorAuto,
		Style: capability.StyleGo.String(),
		Log: LogConfig{
			Format: LogNone,
			Level:  "info",
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are
// errors.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// FromEnvironment builds the configuration of a process: defaults,
// then the file named by EQUATE_CONFIG, then ./.env if present,
// then EQUATE_* variables.
func FromEnvironment() (Config, error) {
	l := NewEnvLoader()
	if _, err := os.Stat(".env"); err == nil {
		if err := l.Load(".env"); err != nil {
			return Default(), err
		}
	}

	cfg := Default()
	if path := l.Get(EnvPrefix + "CONFIG"); path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(l); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from EQUATE_* variables.
func (c *Config) ApplyEnv(l *EnvLoader) error {
	str := func(name string, dst *string) {
		if v, ok := l.Lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := l.GetList(EnvPrefix + name); ok {
			*dst = v
		}
	}

	str("COLOR", &c.Color)
	str("STYLE", &c.Style)
	str("HISTORY", &c.History)
	str("ARCHIVE", &c.Archive)
	str("MONITOR_ADDR", &c.MonitorAddr)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_PATH", &c.Log.Path)
	str("LOG_FAILURE_PATH", &c.Log.FailurePath)
	str("LOG_LEVEL", &c.Log.Level)
	list("REDACT", &c.Redact)
	list("SECRETS", &c.Log.Secrets)

	if n, ok, err := l.GetInt(EnvPrefix + "MAX_VALUE_WIDTH"); err != nil {
		return err
	} else if ok {
		c.MaxValueWidth = n
	}
	if b, ok, err := l.GetBool(EnvPrefix + "DIFF"); err != nil {
		return err
	} else if ok {
		c.Diff = b
	}
	if b, ok, err := l.GetBool(EnvPrefix + "LOG_VERBOSE"); err != nil {
		return err
	} else if ok {
		c.Log.Verbose = b
	}
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q: want auto, always or never", c.Color)
	}
	if _, err := capability.ParseStyle(c.Style); err != nil {
		return err
	}
	if c.MaxValueWidth < 0 {
		return fmt.Errorf("max_value_width must not be negative, got %d", c.MaxValueWidth)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", LogNone, LogConsole, LogJSON:
	default:
		return fmt.Errorf("invalid log format %q: want none, console or json", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// UseColor reports whether output to f should be coloured. In auto
// mode colour needs a terminal and no NO_COLOR variable.
func (c Config) UseColor(f *os.File) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// RenderOptions returns the renderer options of the configuration.
func (c Config) RenderOptions(color bool) (render.Options, error) {
	style, err := capability.ParseStyle(c.Style)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Color:    color,
		Style:    style,
		MaxWidth: c.MaxValueWidth,
		Redact:   c.Redact,
		Diff:     c.Diff,
	}, nil
}

// NewLogger builds the configured logger. A console logger with a
// failure path also writes failure records through a JSON logger.
// Secrets wrap the result in a RedactingLogger.
func (c Config) NewLogger() (logging.Logger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	verbose := c.Log.Verbose || level == logging.LevelDebug

	var l logging.Logger
	switch strings.ToLower(c.Log.Format) {
	case "", LogNone:
		return logging.NullLogger{}, nil
	case LogConsole:
		l = logging.NewConsoleLogger(verbose)
		if c.Log.FailurePath != "" {
			failures, err := logging.NewJSONLogger(logging.LoggerConfig{
				OutputPath: os.DevNull,
				FailureLog: c.Log.FailurePath,
				Level:      logging.LevelError,
			})
			if err != nil {
				return nil, err
			}
			l = logging.NewMultiLogger(l, failures)
		}
	case LogJSON:
		jl, err := logging.NewJSONLogger(logging.LoggerConfig{
			OutputPath: c.Log.Path,
			FailureLog: c.Log.FailurePath,
			Level:      level,
			Verbose:    verbose,
		})
		if err != nil {
			return nil, err
		}
		l = jl
	default:
		return nil, fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	if len(c.Log.Secrets) > 0 {
		l = logging.NewRedactingLogger(l, c.Log.Secrets...)
	}
	return l, nil
}

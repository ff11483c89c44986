// Package config loads gifkit settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deepteams/gifkit/palette"
	"github.com/deepteams/gifkit/resample"
)

// EnvPath names the environment variable consulted when no path is given.
const EnvPath = "GIFKIT_CONFIG"

var ErrInvalid = errors.New("config: invalid value")

// Config holds every setting. Zero values are replaced by defaults on load.
type Config struct {
	Log      Log      `yaml:"log"`
	Resample Resample `yaml:"resample"`
	Compose  Compose  `yaml:"compose"`
	Optimize Optimize `yaml:"optimize"`
	Split    Split    `yaml:"split"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

type Resample struct {
	Backend string `yaml:"backend"`
	Method  string `yaml:"method"`
}

type Compose struct {
	DelayMS int `yaml:"delay_ms"`
	Loop    int `yaml:"loop"`
}

type Optimize struct {
	Level     int    `yaml:"level"`
	MaxColors int    `yaml:"max_colors"`
	ReduceFPS int    `yaml:"reduce_fps"`
	Quantizer string `yaml:"quantizer"`
}

type Split struct {
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log:      Log{Level: "info", Format: "text"},
		Resample: Resample{Backend: resample.BackendImaging, Method: "lanczos"},
		Compose:  Compose{DelayMS: 100, Loop: 0},
		Optimize: Optimize{Level: 2, MaxColors: 256, ReduceFPS: 1, Quantizer: palette.QuantizerMedianCut},
		Split:    Split{Format: "png"},
	}
}

// Load reads path, or the file named by $GIFKIT_CONFIG when path is empty.
// A missing file yields the defaults; keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects unknown enum values and out-of-range numbers.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	if _, err := resample.ParseBackend(c.Resample.Backend); err != nil {
		return fmt.Errorf("%w: resample.backend %q", ErrInvalid, c.Resample.Backend)
	}
	if _, err := palette.ParseQuantizer(c.Optimize.Quantizer); err != nil {
		return fmt.Errorf("%w: optimize.quantizer %q", ErrInvalid, c.Optimize.Quantizer)
	}
	if c.Compose.DelayMS < 0 {
		return fmt.Errorf("%w: compose.delay_ms %d", ErrInvalid, c.Compose.DelayMS)
	}
	if c.Compose.Loop < -1 {
		return fmt.Errorf("%w: compose.loop %d", ErrInvalid, c.Compose.Loop)
	}
	if c.Optimize.Level < 0 {
		return fmt.Errorf("%w: optimize.level %d", ErrInvalid, c.Optimize.Level)
	}
	switch strings.ToLower(c.Split.Format) {
	case "png", "jpg", "jpeg", "gif", "bmp", "tiff":
	default:
		return fmt.Errorf("%w: split.format %q", ErrInvalid, c.Split.Format)
	}
	return nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return l, nil
}

// Logger builds the slog.Logger described by Log, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

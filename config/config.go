package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects where tones are sent
type Backend string

const (
	BackendOto  Backend = "oto"
	BackendMIDI Backend = "midi"
	BackendNone Backend = "none"
)

// PlaybackConfig controls the playhead cadence
type PlaybackConfig struct {
	Interval string `yaml:"interval"` // duration, e.g. "50ms"
	Step     int    `yaml:"step"`
}

// CanvasConfig is the drawing size and how it maps onto terminal cells
type CanvasConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	CellWidth  int `yaml:"cellWidth"`
	CellHeight int `yaml:"cellHeight"`
}

// SoundConfig defines the sound output
type SoundConfig struct {
	Backend    Backend `yaml:"backend"`
	PortName   string  `yaml:"portName,omitempty"`
	Instrument int     `yaml:"instrument"`
	SampleRate int     `yaml:"sampleRate"`
}

// ShapeConfig is a shape loaded into the drawing at startup
type ShapeConfig struct {
	X          int  `yaml:"x"`
	Y          int  `yaml:"y"`
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Instrument *int `yaml:"instrument,omitempty"` // falls back to sound.instrument
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `yaml:"palette,omitempty"`
	Debug   bool   `yaml:"debug,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Canvas   CanvasConfig   `yaml:"canvas"`
	Sound    SoundConfig    `yaml:"sound"`
	Shapes   []ShapeConfig  `yaml:"shapes,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
}

// DefaultConfig returns a 1000x600 canvas swept every 50ms
func DefaultConfig() *Config {
	return &Config{
		Playback: PlaybackConfig{
			Interval: "50ms",
			Step:     10,
		},
		Canvas: CanvasConfig{
			Width:      1000,
			Height:     600,
			CellWidth:  10,
			CellHeight: 12,
		},
		Sound: SoundConfig{
			Backend:    BackendOto,
			SampleRate: 44100,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "drawing-player"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Interval parses the playback interval
func (c *Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Playback.Interval)
	if err != nil {
		return 0, fmt.Errorf("playback interval: %w", err)
	}
	return d, nil
}

// Validate rejects settings the player cannot run with
func (c *Config) Validate() error {
	d, err := c.Interval()
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("playback interval must be positive, got %s", d)
	}
	if c.Playback.Step <= 0 {
		return fmt.Errorf("playback step must be positive, got %d", c.Playback.Step)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.CellWidth <= 0 || c.Canvas.CellHeight <= 0 {
		return fmt.Errorf("canvas cells must be positive, got %dx%d", c.Canvas.CellWidth, c.Canvas.CellHeight)
	}
	switch c.Sound.Backend {
	case BackendOto, BackendMIDI, BackendNone:
	default:
		return fmt.Errorf("unknown sound backend %q", c.Sound.Backend)
	}
	if c.Sound.Backend == BackendOto && c.Sound.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.Sound.SampleRate)
	}
	for i, s := range c.Shapes {
		if s.Width < 0 || s.Height < 0 {
			return fmt.Errorf("shape %d: negative size %dx%d", i, s.Width, s.Height)
		}
	}
	return nil
}

// InstrumentFor returns the shape's instrument, or the sound default
func (c *Config) InstrumentFor(s ShapeConfig) int {
	if s.Instrument != nil {
		return *s.Instrument
	}
	return c.Sound.Instrument
}

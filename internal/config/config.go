// Package config is the YAML configuration shared by the host binaries.
// The firmware has no configuration; its tables are compiled in.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sparques/wheelremote/alpine"
	"github.com/sparques/wheelremote/dispatch"
	"github.com/sparques/wheelremote/matrix"
)

// Config is the top-level YAML document.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`

	// ActiveLow flips the scanner's idea of a closed key.
	ActiveLow bool `yaml:"active_low"`

	// Bindings overrides the stock layout per key index.
	Bindings map[int]BindingConfig `yaml:"bindings,omitempty"`

	// Pi selects host GPIO lines (wheelpi only).
	Pi PiConfig `yaml:"pi"`

	// Scenario drives the simulator (wheelsim only).
	Scenario ScenarioConfig `yaml:"scenario"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type BindingConfig struct {
	Mode      string `yaml:"mode"`
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary,omitempty"`
}

type PiConfig struct {
	// Port names the lines for port bits 0..7; empty entries are unused.
	Port   [8]string `yaml:"port"`
	Output string    `yaml:"output"`
}

type ScenarioConfig struct {
	Duration time.Duration `yaml:"duration"`
	Presses  []PressConfig `yaml:"presses"`
}

type PressConfig struct {
	Key  int           `yaml:"key"`
	At   time.Duration `yaml:"at"`
	Hold time.Duration `yaml:"hold"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Pi: PiConfig{
			Port:   [8]string{"GPIO5", "GPIO6", "GPIO13", "GPIO19", "GPIO26", "GPIO16", "GPIO20", "GPIO21"},
			Output: "GPIO18",
		},
		Scenario: ScenarioConfig{Duration: 5 * time.Second},
	}
}

var ErrInvalid = errors.New("invalid config")

// Load reads path on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes b into cfg, rejecting unknown fields, and validates.
func Parse(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := c.Layout(); err != nil {
		return err
	}
	for i, p := range c.Scenario.Presses {
		if p.Key < 0 || p.Key >= matrix.KeyCount {
			return fmt.Errorf("%w: press %d: key %d out of range", ErrInvalid, i, p.Key)
		}
		if p.At < 0 || p.Hold <= 0 {
			return fmt.Errorf("%w: press %d: need at >= 0 and hold > 0", ErrInvalid, i)
		}
	}
	if c.Scenario.Duration <= 0 {
		return fmt.Errorf("%w: scenario duration must be positive", ErrInvalid)
	}
	return nil
}

// Layout applies Bindings to the stock layout.
func (c *Config) Layout() (*dispatch.Layout, error) {
	layout := dispatch.DefaultLayout
	for key, bc := range c.Bindings {
		if key < 0 || key >= matrix.KeyCount {
			return nil, fmt.Errorf("%w: binding for key %d out of range", ErrInvalid, key)
		}
		b, err := bc.binding()
		if err != nil {
			return nil, fmt.Errorf("%w: key %d: %w", ErrInvalid, key, err)
		}
		layout[key] = b
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &layout, nil
}

func (bc BindingConfig) binding() (dispatch.Binding, error) {
	mode, err := dispatch.ParseMode(bc.Mode)
	if err != nil {
		return dispatch.Binding{}, err
	}
	primary, err := alpine.ParseCommand(bc.Primary)
	if err != nil {
		return dispatch.Binding{}, err
	}
	if mode == dispatch.Direct {
		return dispatch.DirectKey(primary), nil
	}
	secondary, err := alpine.ParseCommand(bc.Secondary)
	if err != nil {
		return dispatch.Binding{}, err
	}
	if mode == dispatch.HoldDisambiguate {
		return dispatch.HoldKey(primary, secondary), nil
	}
	return dispatch.EncoderKey(primary, secondary), nil
}

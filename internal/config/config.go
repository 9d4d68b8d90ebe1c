// Package config loads the display configuration used by the demo program.
package config

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/flavioheleno/ledmatrix"
)

type Pins struct {
	Data   string `yaml:"data"`   // DIN, e.g. GPIO10
	Clock  string `yaml:"clock"`  // CLK, e.g. GPIO11
	Select string `yaml:"select"` // CS/LOAD, e.g. GPIO8
}

type Config struct {
	Driver string `yaml:"driver"` // "gpio" | "spi" | "sim"
	Pins   Pins   `yaml:"pins"`
	SPI    string `yaml:"spi,omitempty"` // SPI port name, empty for the default one

	Columns    int    `yaml:"columns"`
	Rows       int    `yaml:"rows"`
	ChainOrder []int  `yaml:"chain_order,omitempty"`
	Rotated    []bool `yaml:"rotated,omitempty"`
	Intensity  int    `yaml:"intensity"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration of a single module bit-banged on the
// SPI0 pins of a Raspberry Pi.
func Default() *Config {
	return &Config{
		Driver:    "gpio",
		Pins:      Pins{Data: "GPIO10", Clock: "GPIO11", Select: "GPIO8"},
		Columns:   1,
		Rows:      1,
		Intensity: ledmatrix.DefaultIntensity,
		LogLevel:  "info",
	}
}

// Load reads path on top of Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the fields the driver does not check itself.
func (c *Config) Validate() error {
	switch c.Driver {
	case "gpio":
		if c.Pins.Data == "" || c.Pins.Clock == "" || c.Pins.Select == "" {
			return errors.New("config: gpio driver needs data, clock and select pins")
		}
	case "spi", "sim":
	default:
		return errors.New("config: driver must be gpio, spi or sim")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.New("config: invalid log_level " + c.LogLevel)
	}
	return nil
}

// Level returns the configured log level, info when unset.
func (c *Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Opts returns the display options described by c.
func (c *Config) Opts(logger *zerolog.Logger) *ledmatrix.Opts {
	return &ledmatrix.Opts{
		Columns:   c.Columns,
		Rows:      c.Rows,
		Order:     c.ChainOrder,
		Rotated:   c.Rotated,
		Intensity: c.Intensity,
		Logger:    logger,
	}
}

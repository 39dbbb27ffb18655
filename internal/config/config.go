// Package config loads graphwire CLI configuration from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/graphwire"
	"github.com/rawbytedev/graphwire/pkg/frame"
)

// Config holds encoder and framing settings.
type Config struct {
	// Simple disables reference tracking.
	Simple bool `yaml:"simple"`

	// FieldMode is "name" or "index".
	FieldMode string `yaml:"field_mode"`

	// MaxElements bounds decoded counts. Zero means unlimited.
	MaxElements int `yaml:"max_elements"`

	// MaxDepth bounds nesting. Zero means the library default.
	MaxDepth int `yaml:"max_depth"`

	Frame FrameConfig `yaml:"frame"`
}

// FrameConfig configures transport frames.
type FrameConfig struct {
	Enabled bool `yaml:"enabled"`

	// Compression is "none", "zstd" or "lz4".
	Compression string `yaml:"compression"`

	// MaxSize bounds frames in bytes.
	MaxSize int `yaml:"max_size"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{
		FieldMode: "name",
		Frame: FrameConfig{
			Compression: "none",
			MaxSize:     frame.DefaultMaxSize,
		},
	}
}

// LoadFile reads path over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields and limits.
func (c *Config) Validate() error {
	if _, err := graphwire.ParseFieldMode(c.FieldMode); err != nil {
		return err
	}
	if _, err := frame.ParseCompression(c.Frame.Compression); err != nil {
		return err
	}
	if c.MaxElements < 0 || c.MaxDepth < 0 || c.Frame.MaxSize < 0 {
		return errors.New("config: limits must not be negative")
	}
	return nil
}

// Options returns the graphwire options the config describes.
func (c *Config) Options() (graphwire.Options, error) {
	mode, err := graphwire.ParseFieldMode(c.FieldMode)
	if err != nil {
		return graphwire.Options{}, err
	}
	return graphwire.Options{
		Simple:      c.Simple,
		FieldMode:   mode,
		MaxElements: c.MaxElements,
		MaxDepth:    c.MaxDepth,
	}, nil
}

// FrameOptions returns the frame options the config describes.
func (c *Config) FrameOptions() (frame.Options, error) {
	comp, err := frame.ParseCompression(c.Frame.Compression)
	if err != nil {
		return frame.Options{}, err
	}
	return frame.Options{Compression: comp, MaxSize: c.Frame.MaxSize}, nil
}

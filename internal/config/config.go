// Package config loads and saves simulation scenario files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.005
	DefaultDuration = 5.0
	DefaultLength   = 1.0
	DefaultMass     = 1.0
	DefaultSegments = 2
)

// Config describes a simulation scenario.
type Config struct {
	Scenario      string              `yaml:"scenario"`
	Segments      int                 `yaml:"segments"`
	Length        float64             `yaml:"length"`
	Mass          float64             `yaml:"mass"`
	Dt            float64             `yaml:"dt"`
	Duration      float64             `yaml:"duration"`
	Normalize     bool                `yaml:"normalize"`
	Stabilization StabilizationConfig `yaml:"stabilization"`
}

// StabilizationConfig holds the Baumgarte feedback gains.
type StabilizationConfig struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:  "pendulum",
		Segments:  DefaultSegments,
		Length:    DefaultLength,
		Mass:      DefaultMass,
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		Normalize: true,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Segments < 1 {
		return fmt.Errorf("config: segments must be at least 1, got %d", c.Segments)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.Length <= 0 {
		return fmt.Errorf("config: length must be positive, got %g", c.Length)
	}
	if c.Mass <= 0 {
		return fmt.Errorf("config: mass must be positive, got %g", c.Mass)
	}
	return nil
}

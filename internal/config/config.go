// Package config loads and saves simulation run configuration from YAML.
// CLI flags take precedence over file values; file values over defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/racesim/internal/physics"
)

const (
	DefaultDt        = 0.1
	DefaultRefreshMs = 250
	DefaultMaxSteps  = 100000
	DefaultTrack     = "oval"
)

// Config describes one simulation run.
type Config struct {
	Track     string      `yaml:"track"` // preset name, or path to a track YAML file
	Dt        float64     `yaml:"dt"`
	RefreshMs int         `yaml:"refresh_ms"`
	MaxSteps  int         `yaml:"max_steps"`
	Car       physics.Car `yaml:"car"`
}

// DefaultConfig returns the built-in run configuration.
func DefaultConfig() *Config {
	return &Config{
		Track:     DefaultTrack,
		Dt:        DefaultDt,
		RefreshMs: DefaultRefreshMs,
		MaxSteps:  DefaultMaxSteps,
		Car:       physics.DefaultCar(),
	}
}

// Load reads a config file, layering it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values a run cannot proceed without.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %f", c.Dt)
	}
	if c.RefreshMs <= 0 {
		return fmt.Errorf("config: refresh_ms must be positive, got %d", c.RefreshMs)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("config: max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.Track == "" {
		return fmt.Errorf("config: track is required")
	}
	return nil
}

// RefreshPeriod returns the plot refresh interval as a duration.
func (c *Config) RefreshPeriod() time.Duration {
	return time.Duration(c.RefreshMs) * time.Millisecond
}

// Package config loads the server configuration from a YAML file.
// An empty path yields the built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
	"github.com/Lucas-Miller/3d-pipes/internal/sim"
)

// Config holds every tunable of the simulation server.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`

	TickRateHz       int     `yaml:"tick_rate_hz"`
	NumPipes         int     `yaml:"num_pipes"`
	IdleResetSeconds float64 `yaml:"idle_reset_seconds"`
	MaxSegmentLen    int     `yaml:"max_segment_len"`
	// Seed for the random source; 0 means derive from the clock.
	Seed int64 `yaml:"seed"`

	Bounds BoundsSpec `yaml:"bounds"`
}

// BoundsSpec is the YAML shape of the grid bounds.
type BoundsSpec struct {
	Min []int `yaml:"min"`
	Max []int `yaml:"max"`
}

func defaults() Config {
	return Config{
		ListenAddr:       ":8080",
		DBPath:           "pipes.db",
		TickRateHz:       60,
		NumPipes:         sim.DefaultNumPipes,
		IdleResetSeconds: sim.DefaultIdleResetSeconds,
		MaxSegmentLen:    sim.DefaultMaxSegmentLen,
		Bounds: BoundsSpec{
			Min: []int{-10, -10, -10},
			Max: []int{10, 10, 10},
		},
	}
}

// Load reads the configuration from path. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects malformed configuration up front, before anything
// touches the grid.
func (c Config) Validate() error {
	if c.NumPipes <= 0 {
		return fmt.Errorf("num_pipes must be positive, got %d", c.NumPipes)
	}
	if c.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be positive, got %d", c.TickRateHz)
	}
	if c.IdleResetSeconds <= 0 {
		return fmt.Errorf("idle_reset_seconds must be positive, got %g", c.IdleResetSeconds)
	}
	if c.MaxSegmentLen <= 0 {
		return fmt.Errorf("max_segment_len must be positive, got %d", c.MaxSegmentLen)
	}
	if len(c.Bounds.Min) != 3 || len(c.Bounds.Max) != 3 {
		return fmt.Errorf("bounds min/max must each have 3 components")
	}
	b := c.GridBounds()
	if err := b.Validate(); err != nil {
		return err
	}
	if b.CellCount() < c.NumPipes {
		return fmt.Errorf("bounds hold %d cells, cannot spawn %d pipes", b.CellCount(), c.NumPipes)
	}
	return nil
}

// GridBounds converts the YAML bounds spec into the domain type.
func (c Config) GridBounds() pipe.Bounds {
	if len(c.Bounds.Min) != 3 || len(c.Bounds.Max) != 3 {
		return pipe.DefaultBounds
	}
	return pipe.Bounds{
		Min: pipe.Vec3{X: c.Bounds.Min[0], Y: c.Bounds.Min[1], Z: c.Bounds.Min[2]},
		Max: pipe.Vec3{X: c.Bounds.Max[0], Y: c.Bounds.Max[1], Z: c.Bounds.Max[2]},
	}
}

package mpm

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mpmsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.CellWidth() != 1 {
		t.Errorf("CellWidth() = %g, want 1", cfg.CellWidth())
	}
	if cfg.ParticleVolume() != 0.25 {
		t.Errorf("ParticleVolume() = %g, want 0.25", cfg.ParticleVolume())
	}
	want := 1000 * 0.2 / (1.2 * 0.6)
	if math.Abs(cfg.Lambda()-want) > 1e-9 {
		t.Errorf("Lambda() = %g, want %g", cfg.Lambda(), want)
	}
}

func TestConfigDerived_CellWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpaceWidth = 10
	cfg.GridWidth = 200
	if math.Abs(cfg.CellWidth()-0.05) > 1e-15 {
		t.Errorf("CellWidth() = %g, want 0.05", cfg.CellWidth())
	}
	if math.Abs(cfg.ParticleVolume()-0.000625) > 1e-15 {
		t.Errorf("ParticleVolume() = %g, want 0.000625", cfg.ParticleVolume())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -0.1 }},
		{"small grid", func(c *Config) { c.GridWidth = 4 }},
		{"zero space", func(c *Config) { c.SpaceWidth = 0 }},
		{"zero rho_0", func(c *Config) { c.Rho0 = 0 }},
		{"zero rest density", func(c *Config) { c.RestDensity = 0 }},
		{"nu one half", func(c *Config) { c.Nu = 0.5 }},
		{"nu minus one", func(c *Config) { c.Nu = -1 }},
		{"NaN gravity", func(c *Config) { c.Gravity = math.NaN() }},
		{"Inf viscosity", func(c *Config) { c.DynamicViscosity = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

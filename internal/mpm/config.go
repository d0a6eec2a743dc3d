package mpm

import (
	"fmt"
	"math"

	"github.com/san-kum/mpmsim/internal/dynamo"
)

// Config holds the physical and numerical parameters of a run. It is treated
// as immutable once a Solver has been built from it.
type Config struct {
	Dt               float64 `yaml:"dt"`
	Gravity          float64 `yaml:"gravity"`
	DynamicViscosity float64 `yaml:"dynamic_viscosity"`
	SpaceWidth       float64 `yaml:"space_width"`
	GridWidth        int     `yaml:"grid_width"`
	Rho0             float64 `yaml:"rho_0"`
	RestDensity      float64 `yaml:"rest_density"`
	EOSStiffness     float64 `yaml:"eos_stiffness"`
	EOSPower         float64 `yaml:"eos_power"`
	E                float64 `yaml:"e"`
	Nu               float64 `yaml:"nu"`
}

// MinGridWidth leaves room for the two-cell sticky walls on both sides plus a
// full 3x3 stencil in between.
const MinGridWidth = 8

func DefaultConfig() Config {
	return Config{
		Dt:               0.2,
		Gravity:          -0.3,
		DynamicViscosity: 0.1,
		SpaceWidth:       64,
		GridWidth:        64,
		Rho0:             4,
		RestDensity:      4,
		EOSStiffness:     10,
		EOSPower:         4,
		E:                1000,
		Nu:               0.2,
	}
}

func (c Config) CellWidth() float64 {
	return c.SpaceWidth / float64(c.GridWidth)
}

// ParticleVolume is the initial area of one particle at the default packing
// of two particles per cell per axis.
func (c Config) ParticleVolume() float64 {
	h := c.CellWidth() / 2
	return h * h
}

// Lambda is the first Lamé parameter. The stress model does not use it yet.
func (c Config) Lambda() float64 {
	return c.E * c.Nu / ((1 + c.Nu) * (1 - 2*c.Nu))
}

func (c Config) Validate() error {
	fields := map[string]float64{
		"dt": c.Dt, "gravity": c.Gravity, "dynamic_viscosity": c.DynamicViscosity,
		"space_width": c.SpaceWidth, "rho_0": c.Rho0, "rest_density": c.RestDensity,
		"eos_stiffness": c.EOSStiffness, "eos_power": c.EOSPower, "e": c.E, "nu": c.Nu,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", dynamo.ErrInvalidConfig, name)
		}
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, c.Dt)
	}
	if c.GridWidth < MinGridWidth {
		return fmt.Errorf("%w: grid_width must be at least %d, got %d", dynamo.ErrInvalidConfig, MinGridWidth, c.GridWidth)
	}
	if c.SpaceWidth <= 0 {
		return fmt.Errorf("%w: space_width must be positive, got %g", dynamo.ErrInvalidConfig, c.SpaceWidth)
	}
	if c.Rho0 <= 0 {
		return fmt.Errorf("%w: rho_0 must be positive, got %g", dynamo.ErrInvalidConfig, c.Rho0)
	}
	if c.RestDensity <= 0 {
		return fmt.Errorf("%w: rest_density must be positive, got %g", dynamo.ErrInvalidConfig, c.RestDensity)
	}
	if c.Nu == 0.5 || c.Nu == -1 {
		return fmt.Errorf("%w: nu=%g makes lambda singular", dynamo.ErrInvalidConfig, c.Nu)
	}
	return nil
}

package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mpmsim/internal/compute"
	"github.com/san-kum/mpmsim/internal/control"
	"github.com/san-kum/mpmsim/internal/dynamo"
	"github.com/san-kum/mpmsim/internal/mpm"
)

const (
	DefaultTicks         = 500
	DefaultSnapshotEvery = 10
	DefaultSeedMin       = 16.0
	DefaultSeedMax       = 48.0
	DefaultStrength      = 1e-2
	DefaultPerfWindow    = 60
)

type Config struct {
	Preset      string            `yaml:"preset,omitempty"`
	Simulation  mpm.Config        `yaml:"simulation"`
	Seed        SeedConfig        `yaml:"seed"`
	Run         RunConfig         `yaml:"run"`
	Interaction InteractionConfig `yaml:"interaction"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// SeedConfig is the square [Min, Max]^2 filled with particles at start,
// raised by Lift along y.
type SeedConfig struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Lift float64 `yaml:"lift,omitempty"`
}

func (s SeedConfig) Bounds() (lo, hi r2.Vec) {
	return r2.Vec{X: s.Min, Y: s.Min + s.Lift}, r2.Vec{X: s.Max, Y: s.Max + s.Lift}
}

type RunConfig struct {
	Ticks         int    `yaml:"ticks"`
	SnapshotEvery int    `yaml:"snapshot_every"`
	Backend       string `yaml:"backend"`
	Workers       int    `yaml:"workers"`
	ValidateState bool   `yaml:"validate_state"`
}

type InteractionConfig struct {
	Strength float64 `yaml:"strength"`
	// MinDistance of zero means 1e-6 of the space width.
	MinDistance float64         `yaml:"min_distance"`
	Events      []control.Event `yaml:"events,omitempty"`
}

type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"`
}

func DefaultConfig() *Config {
	return &Config{
		Simulation: mpm.DefaultConfig(),
		Seed: SeedConfig{
			Min: DefaultSeedMin,
			Max: DefaultSeedMax,
		},
		Run: RunConfig{
			Ticks:         DefaultTicks,
			SnapshotEvery: DefaultSnapshotEvery,
			Backend:       "auto",
			ValidateState: true,
		},
		Interaction: InteractionConfig{
			Strength: DefaultStrength,
		},
		Telemetry: TelemetryConfig{
			PerfWindow: DefaultPerfWindow,
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base. base is left untouched.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func (c *Config) Clone() *Config {
	cp := *c
	if c.Interaction.Events != nil {
		cp.Interaction.Events = append([]control.Event(nil), c.Interaction.Events...)
	}
	return &cp
}

func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	lo, hi := c.Seed.Bounds()
	space := c.Simulation.SpaceWidth
	if !(hi.X > lo.X) || lo.X < 0 || lo.Y < 0 || hi.X > space || hi.Y > space {
		return fmt.Errorf("%w: seed block %v..%v must be non-empty and inside [0, %g]^2",
			dynamo.ErrInvalidConfig, lo, hi, space)
	}
	if c.Run.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", dynamo.ErrInvalidConfig, c.Run.Ticks)
	}
	if c.Run.SnapshotEvery < 0 {
		return fmt.Errorf("%w: snapshot_every must not be negative", dynamo.ErrInvalidConfig)
	}
	if c.Run.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", dynamo.ErrInvalidConfig)
	}
	if !knownBackend(c.Run.Backend) {
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownBackend, c.Run.Backend)
	}
	if c.Interaction.MinDistance < 0 {
		return fmt.Errorf("%w: min_distance must not be negative", dynamo.ErrInvalidConfig)
	}
	for i, e := range c.Interaction.Events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: event %d: %v", dynamo.ErrInvalidConfig, i, err)
		}
	}
	if c.Telemetry.PerfWindow < 0 {
		return fmt.Errorf("%w: perf_window must not be negative", dynamo.ErrInvalidConfig)
	}
	return nil
}

func knownBackend(name string) bool {
	if name == "" {
		return true
	}
	for _, n := range compute.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// GetInteraction resolves the interaction field, filling in the default
// minimum distance.
func (c *Config) GetInteraction() mpm.Interaction {
	in := mpm.DefaultInteraction(c.Simulation)
	in.Strength = c.Interaction.Strength
	if c.Interaction.MinDistance > 0 {
		in.MinDistance = c.Interaction.MinDistance
	}
	return in
}

// GetPointerSource returns a script when events are configured and None
// otherwise.
func (c *Config) GetPointerSource() control.PointerSource {
	if len(c.Interaction.Events) == 0 {
		return control.NewNone()
	}
	return control.NewScript(c.Interaction.Events)
}

// SeedParticles builds the initial particle set.
func (c *Config) SeedParticles() (*mpm.ParticleSet, error) {
	lo, hi := c.Seed.Bounds()
	return mpm.SeedRect(c.Simulation, lo, hi)
}

func (c *Config) GetBackend() (compute.Backend, error) {
	return compute.NewBackend(c.Run.Backend, c.Run.Workers)
}

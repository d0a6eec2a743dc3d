package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/mpmsim/internal/dynamo"
)

// Presets are complete configs keyed by name. GetPreset hands out copies.
var Presets = map[string]*Config{
	"dam":     dam(),
	"drop":    drop(),
	"viscous": viscous(),
	"stiff":   stiff(),
}

var presetDescriptions = map[string]string{
	"dam":     "64x64 block released under gravity",
	"drop":    "small block falling from near the ceiling",
	"viscous": "dam break with high dynamic viscosity",
	"stiff":   "dam break with a stiffer equation of state",
}

func dam() *Config {
	c := DefaultConfig()
	c.Preset = "dam"
	return c
}

func drop() *Config {
	c := DefaultConfig()
	c.Preset = "drop"
	c.Seed = SeedConfig{Min: 24, Max: 40, Lift: 16}
	c.Run.Ticks = 400
	return c
}

func viscous() *Config {
	c := DefaultConfig()
	c.Preset = "viscous"
	c.Simulation.DynamicViscosity = 2
	return c
}

func stiff() *Config {
	c := DefaultConfig()
	c.Preset = "stiff"
	c.Simulation.EOSStiffness = 40
	c.Simulation.Dt = 0.1
	c.Run.Ticks = 1000
	return c
}

func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", dynamo.ErrUnknownPreset, name, ListPresets())
	}
	return cfg.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func DescribePreset(name string) string {
	return presetDescriptions[name]
}

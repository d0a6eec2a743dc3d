package config

import (
	"errors"
	"testing"

	"github.com/san-kum/mpmsim/internal/dynamo"
)

func TestGetPreset(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg, err := GetPreset(name)
			if err != nil {
				t.Fatalf("preset %s: %v", name, err)
			}
			if cfg.Preset != name {
				t.Errorf("preset name = %q", cfg.Preset)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s invalid: %v", name, err)
			}
			if DescribePreset(name) == "" {
				t.Errorf("preset %s has no description", name)
			}
		})
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg, err := GetPreset("nonexistent")
	if cfg != nil || !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v, %v", cfg, err)
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	a, _ := GetPreset("dam")
	a.Simulation.Gravity = 5

	b, _ := GetPreset("dam")
	if b.Simulation.Gravity != -0.3 {
		t.Error("mutating a preset copy changed the registry")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	want := []string{"dam", "drop", "stiff", "viscous"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("got %v, want %v", names, want)
		}
	}
}

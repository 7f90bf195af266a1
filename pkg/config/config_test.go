package config

import (
	"testing"

	"github.com/damiendr/cura-nozzlewipe/pkg/errors"
)

func TestLoadString(t *testing.T) {
	data := `
# printer profile
[nozzle_wipe]
takeoff_dist: 12.5
landing_dist = 8
same_type: yes
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	if !cfg.HasSection("nozzle_wipe") {
		t.Error("expected [nozzle_wipe] section to exist")
	}
	if cfg.HasSection("nonexistent") {
		t.Error("expected [nonexistent] section to not exist")
	}

	section, err := cfg.GetSection("nozzle_wipe")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if section.GetName() != "nozzle_wipe" {
		t.Errorf("expected name 'nozzle_wipe', got '%s'", section.GetName())
	}

	takeoff, err := section.GetFloat("takeoff_dist")
	if err != nil {
		t.Fatalf("GetFloat(takeoff_dist) failed: %v", err)
	}
	if takeoff != 12.5 {
		t.Errorf("expected 12.5, got %f", takeoff)
	}

	landing, err := section.GetFloat("landing_dist")
	if err != nil {
		t.Fatalf("GetFloat(landing_dist) failed: %v", err)
	}
	if landing != 8.0 {
		t.Errorf("expected 8.0, got %f", landing)
	}

	sameType, err := section.GetBoolean("same_type")
	if err != nil {
		t.Fatalf("GetBoolean(same_type) failed: %v", err)
	}
	if !sameType {
		t.Error("expected same_type to be true")
	}
}

func TestGetFallbacks(t *testing.T) {
	cfg, err := LoadString("[nozzle_wipe]\n")
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	section, _ := cfg.GetSection("nozzle_wipe")

	if v, err := section.GetFloat("missing", 1.5); err != nil || v != 1.5 {
		t.Errorf("expected fallback 1.5, got %v (%v)", v, err)
	}
	if v, err := section.GetBoolean("missing", true); err != nil || !v {
		t.Errorf("expected fallback true, got %v (%v)", v, err)
	}
	if _, err := section.GetFloat("missing"); !errors.Is(err, errors.ErrConfigOption) {
		t.Errorf("expected CONFIG_OPTION error, got %v", err)
	}
}

func TestBadValues(t *testing.T) {
	cfg, err := LoadString("[nozzle_wipe]\ntakeoff_dist: abc\nsame_type: maybe\n")
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	section, _ := cfg.GetSection("nozzle_wipe")

	if _, err := section.GetFloat("takeoff_dist"); !errors.Is(err, errors.ErrConfigValue) {
		t.Errorf("expected CONFIG_VALUE error, got %v", err)
	}
	if _, err := section.GetBoolean("same_type"); !errors.Is(err, errors.ErrConfigValue) {
		t.Errorf("expected CONFIG_VALUE error, got %v", err)
	}
}

func TestMalformedConfig(t *testing.T) {
	cases := []string{
		"[]\n",
		"key: value\n", // option outside any section
		"[nozzle_wipe]\nno separator here\n",
	}
	for _, data := range cases {
		if _, err := LoadString(data); err == nil {
			t.Errorf("expected error for %q", data)
		}
	}
}

func TestGetSectionMissing(t *testing.T) {
	cfg, err := LoadString("[other]\nx: 1\n")
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if _, err := cfg.GetSection("nozzle_wipe"); !errors.Is(err, errors.ErrConfigSection) {
		t.Errorf("expected CONFIG_SECTION error, got %v", err)
	}
}

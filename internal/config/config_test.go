package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RCSCONSOLE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load with defaults: %v", err)
	}
	if cfg.Sim.TickInterval != 250*time.Millisecond {
		t.Fatalf("tick interval default = %v", cfg.Sim.TickInterval)
	}
	if !cfg.Audio.CreateFallback {
		t.Fatalf("fallback creation should default on")
	}
	if cfg.Audio.MainSink != "console-main" {
		t.Fatalf("main sink default = %q", cfg.Audio.MainSink)
	}
	if cfg.Journal.Path == "" {
		t.Fatalf("journal path should have a default")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := "[sim]\ntick_interval = \"100ms\"\nrated_power_mw = 3400.0\n\n[audio]\ncreate_fallback = false\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RCSCONSOLE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sim.TickInterval != 100*time.Millisecond {
		t.Fatalf("tick interval = %v, want 100ms", cfg.Sim.TickInterval)
	}
	if cfg.Sim.RatedPowerMW != 3400.0 {
		t.Fatalf("rated power = %v, want 3400", cfg.Sim.RatedPowerMW)
	}
	if cfg.Audio.CreateFallback {
		t.Fatalf("fallback creation should be off")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RCSCONSOLE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("RCSCONSOLE_AUDIO_MAIN_SINK", "panel-a")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Audio.MainSink != "panel-a" {
		t.Fatalf("main sink = %q, want env override", cfg.Audio.MainSink)
	}
}

func TestValidateRejectsBadRatings(t *testing.T) {
	c := Config{
		Sim:   SimConfig{TickInterval: time.Second, RatedPowerMW: 0, RatedFlowKgS: 1},
		Audio: AudioConfig{ArbiterInterval: time.Second},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for zero rated power")
	}
}

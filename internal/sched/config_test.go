package sched

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yml")} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q): %v", path, err)
		}
		if cfg != DefaultConfig() {
			t.Errorf("Load(%q) = %+v, want defaults", path, cfg)
		}
	}
}

func TestLoadOverridesAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `cpus: 200
tick_ms: 2
starvation_limit: -4
sleep_drain_batch: 16
steal: false
event_buffer: 64
log_level: debug
trace:
  format: sqlite
  path: trace.db
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CPUs != MaxCPUs {
		t.Errorf("CPUs = %d, want clamp to %d", cfg.CPUs, MaxCPUs)
	}
	if cfg.TickMS != 2 || cfg.SleepDrainBatch != 16 || cfg.Steal || cfg.EventBuffer != 64 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.StarvationLimit != DefaultStarvationLimit {
		t.Errorf("StarvationLimit = %d, want default", cfg.StarvationLimit)
	}
	if cfg.LogLevel != "debug" || cfg.Trace.Format != "sqlite" || cfg.Trace.Path != "trace.db" {
		t.Errorf("strings not applied: %+v", cfg)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("unset field lost its default: %q", cfg.LogFormat)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("cpus: [1, 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParsePriority(t *testing.T) {
	tests := map[string]Priority{"critical": Critical, "Normal": Normal, "BACKGROUND": Background, "": Normal}
	for in, want := range tests {
		got, err := ParsePriority(in)
		if err != nil || got != want {
			t.Errorf("ParsePriority(%q) = %s,%v", in, got, err)
		}
	}
	if _, err := ParsePriority("realtime"); err == nil {
		t.Error("expected error for unknown priority")
	}
}

package sched

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors config.yml
type Config struct {
	CPUs            int  `yaml:"cpus"`              // 4 (by default), at most MaxCPUs
	TickMS          int  `yaml:"tick_ms"`           // 0 disables the built-in tick clock
	StarvationLimit int  `yaml:"starvation_limit"`  // 100 (by default)
	SleepDrainBatch int  `yaml:"sleep_drain_batch"` // 0 = fire every due entry each tick
	Steal           bool `yaml:"steal"`             // work stealing on idle CPUs
	PinThreads      bool `yaml:"pin_threads"`       // pin executor goroutines to host cores
	EventBuffer     int  `yaml:"event_buffer"`      // 0 disables the event stream

	LogLevel  string      `yaml:"log_level"`
	LogFormat string      `yaml:"log_format"`
	Trace     TraceConfig `yaml:"trace"`
}

// TraceConfig selects where the event stream is recorded.
type TraceConfig struct {
	Format string `yaml:"format"` // none, csv, jsonl, sqlite
	Path   string `yaml:"path"`
}

// DefaultConfig is used when no config file is given.
func DefaultConfig() Config {
	return Config{
		CPUs:            4,
		TickMS:          5,
		StarvationLimit: DefaultStarvationLimit,
		Steal:           true,
		EventBuffer:     256,
		LogLevel:        "info",
		LogFormat:       "text",
		Trace:           TraceConfig{Format: "none"},
	}
}

// Load reads YAML and overrides defaults; an empty or missing path yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.clamp()
	return cfg, nil
}

// sanity clamps
func (c *Config) clamp() {
	if c.CPUs <= 0 {
		c.CPUs = 1
	} else if c.CPUs > MaxCPUs {
		c.CPUs = MaxCPUs
	}
	if c.TickMS < 0 {
		c.TickMS = 0
	}
	if c.StarvationLimit <= 0 {
		c.StarvationLimit = DefaultStarvationLimit
	}
	if c.SleepDrainBatch < 0 {
		c.SleepDrainBatch = 0
	}
	if c.EventBuffer < 0 {
		c.EventBuffer = 0
	}
	if c.Trace.Format == "" {
		c.Trace.Format = "none"
	}
}

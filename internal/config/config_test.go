package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load with defaults failed: %v", err)
	}

	if cfg.App.Name != "pulsewatcher" {
		t.Fatalf("unexpected app name: %q", cfg.App.Name)
	}
	if cfg.Capture.SamplingRateHz != 10 {
		t.Fatalf("unexpected sampling rate: %v", cfg.Capture.SamplingRateHz)
	}
	if cfg.Capture.RequiredDuration != 15*time.Second {
		t.Fatalf("unexpected required duration: %v", cfg.Capture.RequiredDuration)
	}
	if cfg.Capture.FingerDetectDelay != 2*time.Second {
		t.Fatalf("unexpected finger detect delay: %v", cfg.Capture.FingerDetectDelay)
	}
	if cfg.Estimator.ThresholdFraction != 0.3 || cfg.Estimator.RefractorySamples != 6 {
		t.Fatalf("unexpected estimator defaults: %+v", cfg.Estimator)
	}
	if cfg.Estimator.BPMMin != 40 || cfg.Estimator.BPMMax != 200 || cfg.Estimator.DefaultBPM != 70 {
		t.Fatalf("unexpected bpm defaults: %+v", cfg.Estimator)
	}
	if cfg.Database.DSN != "" {
		t.Fatalf("database should be unset by default, got %q", cfg.Database.DSN)
	}
	if cfg.Export.MaxDataPoints != 100000 {
		t.Fatalf("unexpected export default: %d", cfg.Export.MaxDataPoints)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sampling rate", func(c *Config) { c.Capture.SamplingRateHz = 0 }},
		{"zero duration", func(c *Config) { c.Capture.RequiredDuration = 0 }},
		{"negative finger delay", func(c *Config) { c.Capture.FingerDetectDelay = -time.Second }},
		{"zero threshold", func(c *Config) { c.Estimator.ThresholdFraction = 0 }},
		{"inverted bpm bounds", func(c *Config) { c.Estimator.BPMMin = 200; c.Estimator.BPMMax = 40 }},
		{"zero simulate rate", func(c *Config) { c.Simulate.RateBPM = 0 }},
		{"zero max points", func(c *Config) { c.Export.MaxDataPoints = 0 }},
	}

	for _, tc := range cases {
		cfg := base()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestResolveMaxPoints(t *testing.T) {
	cfg := &Config{Export: ExportConfig{MaxDataPoints: 5000}}

	if got := cfg.ResolveMaxPoints(0); got != 5000 {
		t.Fatalf("no override should use config value, got %d", got)
	}
	if got := cfg.ResolveMaxPoints(250); got != 250 {
		t.Fatalf("override should win, got %d", got)
	}
}

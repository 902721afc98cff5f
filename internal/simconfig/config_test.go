package simconfig

import (
	"errors"
	"testing"
)

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatal("default config invalid:", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"high freq dag", func(c *Config) { c.RequestFreq = "high"; c.DagType = "dag" }, true},
		{"bad freq", func(c *Config) { c.RequestFreq = "extreme" }, false},
		{"bad dag type", func(c *Config) { c.DagType = "tree" }, false},
		{"bad cold start", func(c *Config) { c.ColdStart = "" }, false},
		{"bad fn type", func(c *Config) { c.FnType = "gpu" }, false},
		{"ai needs ai_type", func(c *Config) { c.ES.Up, c.ES.Down = "ai", "ai" }, false},
		{"ai with ai_type", func(c *Config) { c.ES.Up, c.ES.Down, c.ES.AIType = "ai", "ai", "ppo" }, true},
		{"paired scaler mismatch", func(c *Config) { c.ES.Up, c.ES.Down = "lass", "hpa" }, false},
		{"unpaired scaler", func(c *Config) { c.ES.Up, c.ES.Down = "no", "hpa" }, true},
		{"scheduler scales itself", func(c *Config) { c.ES.Sche = "faasflow" }, false},
		{"scheduler scales itself, no scaler", func(c *Config) { c.ES.Up, c.ES.Down, c.ES.Sche = "no", "no", "faasflow" }, true},
		{"bad down smooth", func(c *Config) { c.ES.DownSmooth = "smooth_50" }, false},
		{"bad scheduler", func(c *Config) { c.ES.Sche = "magic" }, false},
	}
	for _, test := range tests {
		cfg := Default()
		test.modify(&cfg)
		err := cfg.Validate()
		if test.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
		}
		if !test.ok {
			if err == nil {
				t.Errorf("%s: expected error", test.name)
			} else if !errors.Is(err, ErrInvalid) {
				t.Errorf("%s: error does not wrap ErrInvalid: %v", test.name, err)
			}
		}
	}
}

func TestKey(t *testing.T) {
	want := "hpa_hpa_rule_low.single.high.cpu"
	cfg := Default()
	if cfg.Key() != want {
		t.Fatalf("wrong key %q, want %q", cfg.Key(), want)
	}
	// Key is callable on config values, e.g. function results and map entries.
	if key := Default().Key(); key != want {
		t.Fatalf("wrong key %q for Default() value", key)
	}
	byName := map[string]Config{"default": Default()}
	if key := byName["default"].Key(); key != want {
		t.Fatalf("wrong key %q for map value", key)
	}
}

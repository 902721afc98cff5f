// Package simconfig contains the environment config sent to the simulator by
// reset, and experiment files listing the configs to run.
package simconfig

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalid is wrapped by all validation errors.
var ErrInvalid = errors.New("invalid config")

// Config is the environment config of the serverless simulator.
type Config struct {
	// Runs that should be compared must use the same seed.
	RandSeed    string `json:"rand_seed" yaml:"rand_seed" toml:"rand_seed"`
	RequestFreq string `json:"request_freq" yaml:"request_freq" toml:"request_freq"` // low, middle, high
	DagType     string `json:"dag_type" yaml:"dag_type" toml:"dag_type"`             // single, chain, dag, mix
	ColdStart   string `json:"cold_start" yaml:"cold_start" toml:"cold_start"`       // high, low, mix
	FnType      string `json:"fn_type" yaml:"fn_type" toml:"fn_type"`                // cpu, data, mix
	NoLog       bool   `json:"no_log" yaml:"no_log" toml:"no_log"`

	ES ESConfig `json:"es" yaml:"es" toml:"es"`
}

// ESConfig selects the algorithm used for each stage of the simulated platform.
type ESConfig struct {
	Up         string `json:"up" yaml:"up" toml:"up"`
	Down       string `json:"down" yaml:"down" toml:"down"`
	Sche       string `json:"sche" yaml:"sche" toml:"sche"`
	AIType     string `json:"ai_type,omitempty" yaml:"ai_type" toml:"ai_type"`
	DownSmooth string `json:"down_smooth" yaml:"down_smooth" toml:"down_smooth"`

	FitHPA                 string `json:"fit_hpa,omitempty" yaml:"fit_hpa" toml:"fit_hpa"`
	NoPerformCostRateScore string `json:"no_perform_cost_rate_score,omitempty" yaml:"no_perform_cost_rate_score" toml:"no_perform_cost_rate_score"`
}

var (
	requestFreqs = []string{"low", "middle", "high"}
	dagTypes     = []string{"single", "chain", "dag", "mix"}
	coldStarts   = []string{"high", "low", "mix"}
	fnTypes      = []string{"cpu", "data", "mix"}

	scalers      = []string{"ai", "lass", "fnsche", "hpa", "faasflow", "no"}
	schedulers   = []string{"ai", "rule", "fnsche", "faasflow", "rule_prewarm_succ", "round_robin", "random", "load_least", "gofs", "pass", "time"}
	downSmooths  = []string{"direct", "smooth_30", "smooth_100"}
	aiTypes      = []string{"sac", "ppo", "mat", "ppo_hrf"}
	pairedScaler = []string{"ai", "lass", "hpa", "faasflow", "fnsche"}
	ownScaling   = []string{"fnsche", "faasflow"}
)

// Default returns a config that passes Validate.
func Default() Config {
	return Config{
		RequestFreq: "low",
		DagType:     "single",
		ColdStart:   "high",
		FnType:      "cpu",
		ES: ESConfig{
			Up:         "hpa",
			Down:       "hpa",
			Sche:       "rule",
			DownSmooth: "direct",
		},
	}
}

// Validate checks the config against the values the simulator accepts.
func (c *Config) Validate() error {
	if err := oneOf("request_freq", c.RequestFreq, requestFreqs); err != nil {
		return err
	}
	if err := oneOf("dag_type", c.DagType, dagTypes); err != nil {
		return err
	}
	if err := oneOf("cold_start", c.ColdStart, coldStarts); err != nil {
		return err
	}
	if err := oneOf("fn_type", c.FnType, fnTypes); err != nil {
		return err
	}
	return c.ES.Validate()
}

// Validate checks the stage algorithm combination.
func (es *ESConfig) Validate() error {
	if err := oneOf("es.up", es.Up, scalers); err != nil {
		return err
	}
	if err := oneOf("es.down", es.Down, scalers); err != nil {
		return err
	}
	if err := oneOf("es.sche", es.Sche, schedulers); err != nil {
		return err
	}
	if err := oneOf("es.down_smooth", es.DownSmooth, downSmooths); err != nil {
		return err
	}
	if es.Up == "ai" {
		if err := oneOf("es.ai_type", es.AIType, aiTypes); err != nil {
			return err
		}
	}
	if slices.Contains(pairedScaler, es.Up) && es.Up != es.Down {
		return fmt.Errorf("%w: es.up %q requires es.down %q, have %q", ErrInvalid, es.Up, es.Up, es.Down)
	}
	if slices.Contains(ownScaling, es.Sche) && es.Up != "no" {
		return fmt.Errorf("%w: es.sche %q does its own scaling, es.up must be \"no\"", ErrInvalid, es.Sche)
	}
	return nil
}

// Key identifies the algorithm combination, e.g. for naming result files.
func (c Config) Key() string {
	return fmt.Sprintf("%s_%s_%s_%s.%s.%s.%s", c.ES.Up, c.ES.Down, c.ES.Sche, c.RequestFreq, c.DagType, c.ColdStart, c.FnType)
}

func oneOf(field, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("%w: %s %q not one of %v", ErrInvalid, field, value, allowed)
	}
	return nil
}

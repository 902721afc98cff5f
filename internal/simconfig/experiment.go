package simconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Experiment is a list of environment configs to run.
type Experiment struct {
	Runs []Run `json:"runs" yaml:"runs" toml:"runs"`
}

// Run is one named config of an experiment.
type Run struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	// Episodes overrides the episode count given on the command line.
	Episodes int    `json:"episodes,omitempty" yaml:"episodes" toml:"episodes"`
	Config   Config `json:"config" yaml:"config" toml:"config"`
}

// Validate checks all runs. Run names must be unique; unnamed runs are named
// after their config key.
func (e *Experiment) Validate() error {
	if len(e.Runs) == 0 {
		return fmt.Errorf("%w: experiment has no runs", ErrInvalid)
	}
	names := make(map[string]bool, len(e.Runs))
	for i := range e.Runs {
		run := &e.Runs[i]
		if run.Name == "" {
			run.Name = run.Config.Key()
		}
		if names[run.Name] {
			return fmt.Errorf("%w: duplicate run name %q", ErrInvalid, run.Name)
		}
		names[run.Name] = true
		if run.Episodes < 0 {
			return fmt.Errorf("%w: run %s: negative episode count", ErrInvalid, run.Name)
		}
		if err := run.Config.Validate(); err != nil {
			return fmt.Errorf("run %s: %w", run.Name, err)
		}
	}
	return nil
}

// Format is an experiment file syntax.
type Format string

const (
	YAML  Format = "yaml"
	TOML  Format = "toml"
	JSONC Format = "json" // JSON, comments and trailing commas allowed
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	case ".json", ".jsonc":
		return JSONC, nil
	}
	return "", fmt.Errorf("unknown experiment file type %q", filepath.Ext(path))
}

// Load reads and validates an experiment file.
func Load(path string) (*Experiment, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	exp, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return exp, nil
}

// Parse decodes and validates an experiment.
func Parse(data []byte, format Format) (*Experiment, error) {
	var exp Experiment
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &exp); err != nil {
			return nil, err
		}
	case TOML:
		if _, err := toml.Decode(string(data), &exp); err != nil {
			return nil, err
		}
	case JSONC:
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(std, &exp); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	return &exp, nil
}

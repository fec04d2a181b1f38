package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Run holds the tunables of a single scheduling run: which solver binary to
// delegate to, how long it may work, and the objective weights.
type Run struct {
	// Solver selects the MILP backend: "cbc", "highs" or "glpk".
	Solver string `json:"solver"`
	// TimeLimitSeconds bounds the wall-clock time of the solve call.
	TimeLimitSeconds int `json:"time_limit_seconds"`
	// Weights scales the soft-cost terms of the objective.
	Weights Weights `json:"weights"`
}

// Weights are the soft-cost coefficients. They tune the objective only and
// never alter the constraint set.
type Weights struct {
	// Deviation penalizes distance from the target mid-day load.
	Deviation float64 `json:"deviation"`
	// ActiveDay penalizes each day a class has any session at all.
	ActiveDay float64 `json:"active_day"`
	// Gap penalizes idle periods between a day's first and last session.
	Gap float64 `json:"gap"`
}

// SetDefaults applies sane defaults.
func (c *Run) SetDefaults() {
	if c.Solver == "" {
		c.Solver = "cbc"
	}
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = 60
	}
	if c.Weights == (Weights{}) {
		c.Weights = Weights{Deviation: 0.5, ActiveDay: 2, Gap: 2}
	}
}

// Validate checks mandatory fields. Preference rewards are subtracted from a
// minimized objective, so negative weights would flip their meaning.
func (c Run) Validate() error {
	switch c.Solver {
	case "cbc", "highs", "glpk":
	default:
		return fmt.Errorf("unknown solver %q", c.Solver)
	}
	if c.TimeLimitSeconds <= 0 {
		return fmt.Errorf("time_limit_seconds must be positive")
	}
	if c.Weights.Deviation < 0 || c.Weights.ActiveDay < 0 || c.Weights.Gap < 0 {
		return fmt.Errorf("objective weights must be non-negative")
	}
	return nil
}

// Default returns the run configuration used when no file is given.
func Default() Run {
	var cfg Run
	cfg.SetDefaults()
	return cfg
}

// Load reads a run configuration from a JSON or YAML file.
func Load(path string) (*Run, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	var cfg Run
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

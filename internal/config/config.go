// Package config parses the engine's YAML configuration document and
// injects defaults, the way the teacher's config package validates a
// loaded document before handing it to the rest of the process.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Defaults, mirrored from vm.DefaultMaxGoals (kept independent to avoid
// an import cycle: vm has no reason to depend on config).
const DefaultMaxExecutedGoals = 10_000

// EngineOptions controls a Query's resource bound and instrumentation
// surface. Zero value is invalid; use ParseOptions or Defaults.
type EngineOptions struct {
	MaxExecutedGoals uint64 `yaml:"max_executed_goals"`
	TraceEnabled     bool   `yaml:"trace_enabled"`
	DebugEnabled     bool   `yaml:"debug_enabled"`
}

// Defaults returns the options a freshly constructed engine uses absent
// any configuration document.
func Defaults() EngineOptions {
	return EngineOptions{MaxExecutedGoals: DefaultMaxExecutedGoals}
}

// ParseOptions decodes a YAML document into EngineOptions, injecting
// defaults for any field the document leaves zero.
func ParseOptions(raw []byte) (EngineOptions, error) {
	opt := Defaults()
	if len(raw) == 0 {
		return opt, nil
	}
	if err := yaml.Unmarshal(raw, &opt); err != nil {
		return EngineOptions{}, fmt.Errorf("config: %w", err)
	}
	if opt.MaxExecutedGoals == 0 {
		opt.MaxExecutedGoals = DefaultMaxExecutedGoals
	}
	return opt, nil
}

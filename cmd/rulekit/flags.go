package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/rulekit/rulekit/engine"
	"github.com/rulekit/rulekit/internal/config"
)

// configFile is bound by RootCommand's persistent flags in commands.go;
// every subcommand reads it through loadEngineOptions.
var configFile string

func addTraceFlag(fs *pflag.FlagSet, trace *bool) {
	fs.BoolVarP(trace, "trace", "t", false, "capture a trace tree for the query")
}

// loadEngineOptions reads configFile, if set, into config.EngineOptions,
// falling back to config.Defaults() when no file was given.
func loadEngineOptions() (config.EngineOptions, error) {
	if configFile == "" {
		return config.Defaults(), nil
	}
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return config.EngineOptions{}, err
	}
	return config.ParseOptions(raw)
}

// newEngine constructs an engine.Engine from the current configFile flag.
func newEngine() (*engine.Engine, error) {
	opt, err := loadEngineOptions()
	if err != nil {
		return nil, err
	}
	return engine.New(engine.WithOptions(opt)), nil
}

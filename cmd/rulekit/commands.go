// Command rulekit is the CLI front end for the embedded policy engine:
// load policy files, run one-shot queries, drive an interactive repl, or
// watch a policy file and hot-reload it on change.
package main

import (
	"github.com/spf13/cobra"

	"github.com/rulekit/rulekit/cmd/internal/env"
)

// RootCommand is the base CLI command every subcommand attaches to.
var RootCommand = &cobra.Command{
	Use:   "rulekit",
	Short: "rulekit is an embedded logic-programming policy engine",
	Long:  "rulekit loads Prolog-like rule sets and answers queries against them.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return env.CheckEnvironmentVariables(cmd)
	},
}

func init() {
	RootCommand.PersistentFlags().StringVarP(&configFile, "config-file", "c", "", "set path of engine configuration file (YAML)")
	initLoad(RootCommand)
	initQuery(RootCommand)
	initRepl(RootCommand)
	initWatch(RootCommand)
	initVersion(RootCommand)
}

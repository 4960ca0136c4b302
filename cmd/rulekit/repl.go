package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/rulekit/rulekit/external"
	"github.com/rulekit/rulekit/repl"
)

func initRepl(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "repl [file]",
		Short: "start an interactive session, optionally preloaded from file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRepl,
	}
	root.AddCommand(cmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := eng.Load(string(src), args[0]); err != nil {
			return err
		}
	}
	session := repl.New(cmd.OutOrStdout(), eng, external.NewRegistry())
	return session.Loop(context.Background())
}

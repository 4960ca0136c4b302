package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func initLoad(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "parse a policy file and report its rule inventory",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoad,
	}
	root.AddCommand(cmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	eng, err := newEngine()
	if err != nil {
		return err
	}
	if err := eng.Load(string(src), args[0]); err != nil {
		return err
	}
	for _, f := range eng.Functors() {
		fmt.Fprintln(cmd.OutOrStdout(), f.String())
	}
	return nil
}

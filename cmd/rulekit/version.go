package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the rulekit CLI's release tag, stamped by the build; left
// at "dev" for source builds.
var Version = "dev"

func initVersion(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "print the rulekit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
	root.AddCommand(cmd)
}

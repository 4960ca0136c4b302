package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rulekit/rulekit/engine"
	"github.com/rulekit/rulekit/external"
	"github.com/rulekit/rulekit/presentation"
	"github.com/rulekit/rulekit/term"
	"github.com/rulekit/rulekit/vm"
)

var (
	queryJSON  bool
	queryTrace bool
)

func initQuery(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "query <file> <goal>",
		Short: "load a policy file and run a single query against it",
		Args:  cobra.ExactArgs(2),
		RunE:  runQuery,
	}
	cmd.Flags().BoolVar(&queryJSON, "json", false, "print results as JSON instead of a table")
	addTraceFlag(cmd.Flags(), &queryTrace)
	root.AddCommand(cmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	file, goalSrc := args[0], args[1]
	if strings.TrimSpace(goalSrc) == "" {
		return newCLIError("query: goal must not be empty")
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	eng, err := newEngine()
	if err != nil {
		return err
	}
	if err := eng.Load(string(src), file); err != nil {
		return err
	}
	if queryTrace {
		eng.SetTraceEnabled(true)
	}
	q, err := eng.NewQuery(goalSrc, "<query>")
	if err != nil {
		return err
	}

	var vars []term.Symbol
	var results []map[term.Symbol]*term.Term
	err = engine.Pump(context.Background(), q, external.NewRegistry(), func(ev vm.Event) {
		if vars == nil {
			for v := range ev.Bindings {
				vars = append(vars, v)
			}
		}
		results = append(results, ev.Bindings)
		if queryTrace && ev.Trace != nil {
			fmt.Fprintln(cmd.OutOrStdout(), ev.Trace.String())
		}
	}, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if queryJSON {
		return presentation.PrintJSON(out, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "false")
		return nil
	}
	presentation.PrintBindings(out, vars, results)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rulekit/rulekit/filewatcher"
)

func initWatch(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "reload a policy file into the engine whenever it changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	root.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	eng, err := newEngine()
	if err != nil {
		return err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := eng.Load(string(src), path); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	onReload := func(_ context.Context, path string, elapsed time.Duration, err error) {
		if err != nil {
			fmt.Fprintf(out, "reload failed for %s after %s: %s\n", path, elapsed, err)
			return
		}
		fmt.Fprintf(out, "reloaded %s in %s (%d functors)\n", path, elapsed, len(eng.Functors()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := filewatcher.New(path, eng, onReload, nil)
	if err := w.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}

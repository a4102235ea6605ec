package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/gitguard/graph/store"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the proposed comments of a suspended run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := args[0]

		ctx := cmd.Context()
		wf, cleanup, err := buildWorkflow(ctx)
		if err != nil {
			return fail(ExitRuntimeError, "setup: %v", err)
		}
		defer cleanup()

		state, err := wf.Pending(ctx, runID)
		if errors.Is(err, store.ErrNotFound) {
			return fail(ExitRuntimeError, "run %s is not awaiting approval", runID)
		}
		if err != nil {
			return fail(ExitRuntimeError, "loading run %s: %v", runID, err)
		}

		printComments(os.Stdout, state)
		return nil
	},
}

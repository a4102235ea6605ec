package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dshills/gitguard/graph"
)

var (
	resumeApprove bool
	resumeReject  bool
)

var resumeCmd = &cobra.Command{
	Use:   "resume <run-id>",
	Short: "Apply the approval decision and finish a suspended run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := args[0]

		if resumeApprove == resumeReject {
			return fail(ExitUsageError, "exactly one of --approve or --reject is required")
		}

		ctx := cmd.Context()
		wf, cleanup, err := buildWorkflow(ctx)
		if err != nil {
			return fail(ExitRuntimeError, "setup: %v", err)
		}
		defer cleanup()

		state, err := wf.Resume(ctx, runID, resumeApprove)
		switch {
		case errors.Is(err, graph.ErrNotInterrupted):
			return fail(ExitRuntimeError, "run %s is not awaiting approval", runID)
		case errors.Is(err, graph.ErrAlreadyResumed):
			return fail(ExitRuntimeError, "run %s was already resumed", runID)
		case err != nil:
			return fail(ExitRuntimeError, "resuming run %s: %v", runID, err)
		}

		printOutcome(state)
		return nil
	},
}

func init() {
	resumeCmd.Flags().BoolVar(&resumeApprove, "approve", false, "approve posting the proposed comments")
	resumeCmd.Flags().BoolVar(&resumeReject, "reject", false, "reject the proposed comments")
}

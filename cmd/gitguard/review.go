package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/gitguard/review"
)

var (
	reviewRepo  string
	reviewPR    int
	reviewRunID string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Start a review run for a pull request",
	Long: "Fetches the pull request diff, generates proposed review comments, and\n" +
		"suspends before posting. Prints the run ID to use with show and resume.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reviewRepo == "" || !strings.Contains(reviewRepo, "/") {
			return fail(ExitUsageError, "--repo must be owner/name, got %q", reviewRepo)
		}
		if reviewPR <= 0 {
			return fail(ExitUsageError, "--pr must be a positive PR number")
		}

		runID := reviewRunID
		if runID == "" {
			runID = fmt.Sprintf("%s-%d-%d", strings.ReplaceAll(reviewRepo, "/", "-"), reviewPR, time.Now().Unix())
		}

		ctx := cmd.Context()
		wf, cleanup, err := buildWorkflow(ctx)
		if err != nil {
			return fail(ExitRuntimeError, "setup: %v", err)
		}
		defer cleanup()

		state, err := wf.Start(ctx, runID, reviewRepo, reviewPR)
		switch {
		case review.IsInterrupted(err):
			printComments(os.Stdout, state)
			fmt.Printf("Run suspended awaiting approval.\n")
			fmt.Printf("  gitguard resume %s --approve\n", runID)
			fmt.Printf("  gitguard resume %s --reject\n", runID)
			return nil
		case err != nil:
			return fail(ExitRuntimeError, "review run %s: %v", runID, err)
		}

		// Terminal without suspension should not happen with the gate
		// before the poster, but report the outcome if it does.
		printOutcome(state)
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewRepo, "repo", "", "repository as owner/name (required)")
	reviewCmd.Flags().IntVar(&reviewPR, "pr", 0, "pull request number (required)")
	reviewCmd.Flags().StringVar(&reviewRunID, "run-id", "", "run identifier (default derived from repo, PR, and time)")
}

// printOutcome prints the last transcript message of a finished run.
func printOutcome(state review.State) {
	if len(state.Messages) == 0 {
		fmt.Println("Run finished.")
		return
	}
	fmt.Println(state.Messages[len(state.Messages)-1].Text)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "gitguard",
	Short: "Automated PR review with human approval",
	Long: "Gitguard reviews pull requests with an LLM and suspends for human approval\n" +
		"before posting anything. Runs are durable: start a review, inspect the\n" +
		"proposed comments, then resume with an approve or reject decision.",
	SilenceUsage: true,
}

// run executes the root command and returns an exit code.
func run() int {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error.
		if exitCode == ExitSuccess {
			return ExitUsageError
		}
		return exitCode
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

func fail(code int, format string, args ...any) error {
	exitCode = code
	return fmt.Errorf(format, args...)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print gitguard version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "gitguard version %s\n", version)
	},
}

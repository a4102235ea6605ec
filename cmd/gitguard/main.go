// Gitguard is an automated pull-request review assistant with a
// human-in-the-loop approval gate.
//
// A review run fetches the PR diff, asks an LLM provider for
// structured review comments, and suspends durably before posting
// anything. An operator inspects the proposed comments and resumes
// the run with an approve or reject decision; only approved comments
// are posted.
//
// Usage:
//
//	gitguard review --repo owner/name --pr 42   # start a run, prints run ID
//	gitguard show <run-id>                      # inspect proposed comments
//	gitguard resume <run-id> --approve          # post the comments
//	gitguard resume <run-id> --reject           # discard them
//
// Configuration is via GITGUARD_* environment variables; see the
// config package.
package main

import "os"

func main() {
	os.Exit(run())
}

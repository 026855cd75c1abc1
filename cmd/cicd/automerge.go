// Activate-auto-merge command enables auto-merge on gated pull requests.
package main

import (
	"github.com/spf13/cobra"

	"github.com/dukaforge/cicd/internal/automerge"
)

var autoMergeEventPath string

var autoMergeCmd = &cobra.Command{
	Use:   "activate-auto-merge",
	Short: "Enable auto-merge for a gated pull request",
	Long: `Activate-auto-merge reads the pull request event payload (from
--event-path or GITHUB_EVENT_PATH) and, when the event passes the configured
actor and branch-prefix gate, enables squash auto-merge on the pull request
through the hosting GraphQL API. Events outside the gate are a no-op.

The API token comes from PAT, falling back to GITHUB_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := automerge.LoadEvent(autoMergeEventPath)
		if err != nil {
			exitErr(err)
		}

		token, err := automerge.TokenFromEnv()
		if err != nil {
			exitErr(err)
		}

		activator := automerge.New(cfg.APIURL, token, cfg.AutoMerge)
		if _, err := activator.Activate(cmd.Context(), event); err != nil {
			exitErr(err)
		}
		return nil
	},
}

func init() {
	autoMergeCmd.Flags().StringVar(&autoMergeEventPath, "event-path", "", "path to the pull request event payload (default: $GITHUB_EVENT_PATH)")
}

// Version command for the cicd CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaforge/cicd/pkg/cicd"
)

const modulePath = "github.com/dukaforge/cicd"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cicd version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cicd v%s\nmodule: %s\n", cicd.Version, modulePath)
	},
}

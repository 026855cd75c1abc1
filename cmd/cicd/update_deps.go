// Update-deps command bumps pyproject.toml requirement specifiers to admit
// the latest published versions.
package main

import (
	"github.com/spf13/cobra"

	"github.com/dukaforge/cicd/internal/depsupdate"
	"github.com/dukaforge/cicd/internal/ignore"
	"github.com/dukaforge/cicd/internal/logging"
	"github.com/dukaforge/cicd/internal/pypi"
)

var (
	updateDepsFailFast  bool
	updateDepsPreCommit bool
	updateDepsIgnore    []string
	updateDepsIgnoreSep string
)

var updateDepsCmd = &cobra.Command{
	Use:   "update-deps",
	Short: "Update dependency version ranges in pyproject.toml",
	Long: `Update-deps checks every requirement in pyproject.toml (including
optional dependency groups) against the package index and widens its
specifier set just enough to admit the latest published version. Ignore
rules use the Dependabot ignore grammar:

  cicd update-deps --ignore "dependency-name=requests...update-types=version-update:semver-major"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := ignore.ParseEntries(updateDepsIgnore, updateDepsIgnoreSep)
		if err != nil {
			exitErr(err)
		}

		root, err := resolveRoot(cmd.Context(), updateDepsPreCommit)
		if err != nil {
			exitErr(err)
		}

		s, err := openStore()
		if err != nil {
			// The cache is an optimization; run uncached rather than fail.
			logging.Warn("opening local store failed, index lookups are uncached: %v", err)
			s = nil
		} else {
			defer s.Close()
		}

		index := pypi.NewClient(cfg.IndexURL, s, cfg.CacheTTL)
		updated, err := depsupdate.New(root, index, rules, updateDepsFailFast).Run(cmd.Context())
		if err != nil {
			exitErr(err)
		}

		depsupdate.Report(updated)
		return nil
	},
}

func init() {
	updateDepsCmd.Flags().BoolVar(&updateDepsFailFast, "fail-fast", false, "fail immediately if an error occurs, instead of printing and ignoring all non-critical errors")
	updateDepsCmd.Flags().BoolVar(&updateDepsPreCommit, "pre-commit", false, "run as a pre-commit hook")
	updateDepsCmd.Flags().StringArrayVar(&updateDepsIgnore, "ignore", nil, "ignore-rules based on the Dependabot ignore option: key=value pairs joined by the ignore separator; repeatable")
	updateDepsCmd.Flags().StringVar(&updateDepsIgnoreSep, "ignore-separator", ignore.DefaultSeparator, "separator for --ignore key/value-pairs")
}

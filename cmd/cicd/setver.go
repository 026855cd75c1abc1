// Setver command sets a package version across the code base.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaforge/cicd/internal/console"
	"github.com/dukaforge/cicd/internal/semver"
	"github.com/dukaforge/cicd/internal/setver"
	"github.com/dukaforge/cicd/pkg/types"
)

var (
	setverVersion    string
	setverPackageDir string
	setverUpdates    []string
	setverSeparator  string
	setverFailFast   bool
)

var setverCmd = &cobra.Command{
	Use:   "setver",
	Short: "Set the version of a Python package",
	Long: `Setver rewrites the version wherever the code base declares it. By
default it updates the __version__ dunder in the package's root __init__.py;
--code-base-update replaces that with explicit file,pattern,replacement
triplets where {package_dir} and {version} are substituted.

Example:
  cicd setver --package-dir src/my_package --version v1.2.0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := semver.ParseTag(setverVersion)
		if err != nil || version.CoreParts() != 3 {
			exitErr(fmt.Errorf(
				"please specify version as 'Major.Minor.Patch(-Pre-Release+Build Metadata)' "+
					"or 'vMajor.Minor.Patch(-Pre-Release+Build Metadata)': %w", types.ErrInput))
		}

		updates, err := setver.ParseUpdates(setverUpdates, setverSeparator)
		if err != nil {
			exitErr(err)
		}

		root, err := resolveRoot(cmd.Context(), false)
		if err != nil {
			exitErr(err)
		}

		err = setver.Run(setver.Options{
			RootRepoPath: root,
			PackageDir:   setverPackageDir,
			Version:      version,
			Updates:      updates,
			FailFast:     setverFailFast,
		})
		if err != nil {
			exitErr(err)
		}

		console.Success("Bumped version for %s to %s.", setverPackageDir, version)
		return nil
	},
}

func init() {
	setverCmd.Flags().StringVar(&setverVersion, "version", "", "version to set")
	setverCmd.Flags().StringVar(&setverPackageDir, "package-dir", "", "relative path to the package dir from the repository root, e.g. 'src/my_package'")
	setverCmd.Flags().StringArrayVar(&setverUpdates, "code-base-update", nil, "separator-separated 'file path', 'pattern', 'replacement' triplet; repeatable")
	setverCmd.Flags().StringVar(&setverSeparator, "code-base-update-separator", setver.DefaultSeparator, "separator for --code-base-update values")
	setverCmd.Flags().BoolVar(&setverFailFast, "fail-fast", false, "exit immediately upon failure instead of waiting until the end")
	_ = setverCmd.MarkFlagRequired("version")
	_ = setverCmd.MarkFlagRequired("package-dir")
}

// Release command runs the publish pipeline for a tagged version.
package main

import (
	"github.com/spf13/cobra"

	"github.com/dukaforge/cicd/internal/logging"
	"github.com/dukaforge/cicd/internal/release"
	"github.com/dukaforge/cicd/internal/store"
)

var (
	releaseTag            string
	releaseConfigFile     string
	releasePackageDir     string
	releaseGitUsername    string
	releaseGitEmail       string
	releaseBranch         string
	releasePythonVersion  string
	releaseUpdateDocs     bool
	releaseBuildCmd       string
	releaseTagMessageFile string
	releaseTest           bool
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Publish a tagged release",
	Long: `Release runs the publish pipeline for a version tag: it bumps the
package version, commits and pushes the bump, builds the distribution,
uploads it to the package index and, when asked, deploys the versioned
documentation. Settings come from flags and/or a YAML release config
(--release-config); flags win.

Secrets are read from the environment: PYPI_TOKEN (required unless --test)
and PAT, falling back to GITHUB_TOKEN.

Example:
  cicd release --tag v1.2.0 --package-dir src/my_package \
    --git-username "Release Bot" --git-email bot@example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		relCfg, err := buildReleaseConfig(cmd)
		if err != nil {
			exitErr(err)
		}

		secrets, err := release.SecretsFromEnv(relCfg.Test)
		if err != nil {
			exitErr(err)
		}

		root, err := resolveRoot(cmd.Context(), false)
		if err != nil {
			exitErr(err)
		}

		var journal *store.Store
		if journal, err = openStore(); err != nil {
			logging.Warn("opening local store failed, release run is not journaled: %v", err)
			journal = nil
		} else {
			defer journal.Close()
		}

		runner := release.NewRunner(root, relCfg, secrets, journal)
		if err := runner.Run(cmd.Context(), releaseTag); err != nil {
			exitErr(err)
		}
		return nil
	},
}

// buildReleaseConfig merges the optional YAML release config with flags,
// flags taking precedence, then validates the result.
func buildReleaseConfig(cmd *cobra.Command) (release.Config, error) {
	var relCfg release.Config
	if releaseConfigFile != "" {
		loaded, err := release.LoadConfig(releaseConfigFile)
		if err != nil {
			return release.Config{}, err
		}
		relCfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("package-dir") || relCfg.PackageDir == "" {
		relCfg.PackageDir = releasePackageDir
	}
	if flags.Changed("git-username") || relCfg.GitUsername == "" {
		relCfg.GitUsername = releaseGitUsername
	}
	if flags.Changed("git-email") || relCfg.GitEmail == "" {
		relCfg.GitEmail = releaseGitEmail
	}
	if flags.Changed("release-branch") {
		relCfg.ReleaseBranch = releaseBranch
	}
	if flags.Changed("python-version") {
		relCfg.PythonVersion = releasePythonVersion
	}
	if flags.Changed("update-docs") {
		relCfg.UpdateDocs = releaseUpdateDocs
	}
	if flags.Changed("build-cmd") {
		relCfg.BuildCmd = releaseBuildCmd
	}
	if flags.Changed("tag-message-file") {
		relCfg.TagMessageFile = releaseTagMessageFile
	}
	if flags.Changed("test") {
		relCfg.Test = releaseTest
	}

	relCfg.ApplyDefaults()
	return relCfg, relCfg.Validate()
}

func init() {
	releaseCmd.Flags().StringVar(&releaseTag, "tag", "", "release tag, a semantic version with an optional leading v")
	releaseCmd.Flags().StringVar(&releaseConfigFile, "release-config", "", "YAML release configuration file")
	releaseCmd.Flags().StringVar(&releasePackageDir, "package-dir", "", "relative path to the package dir from the repository root")
	releaseCmd.Flags().StringVar(&releaseGitUsername, "git-username", "", "committer name for the version bump commit")
	releaseCmd.Flags().StringVar(&releaseGitEmail, "git-email", "", "committer email for the version bump commit")
	releaseCmd.Flags().StringVar(&releaseBranch, "release-branch", release.DefaultReleaseBranch, "branch the version bump is pushed to")
	releaseCmd.Flags().StringVar(&releasePythonVersion, "python-version", release.DefaultPythonVersion, "Python version the release is built with")
	releaseCmd.Flags().BoolVar(&releaseUpdateDocs, "update-docs", false, "deploy versioned documentation after publishing")
	releaseCmd.Flags().StringVar(&releaseBuildCmd, "build-cmd", release.DefaultBuildCmd, "command that builds the distribution")
	releaseCmd.Flags().StringVar(&releaseTagMessageFile, "tag-message-file", "", "file whose contents become the version bump commit body")
	releaseCmd.Flags().BoolVar(&releaseTest, "test", false, "dry run: skip pushing and publishing")
	_ = releaseCmd.MarkFlagRequired("tag")
}

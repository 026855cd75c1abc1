// Root command for the cicd CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/dukaforge/cicd/internal/logging"
	"github.com/dukaforge/cicd/internal/paths"
	"github.com/dukaforge/cicd/pkg/cicd"
	"github.com/dukaforge/cicd/pkg/types"
)

// Exit codes: 0 success, 1 user error, 2 system error.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir    string
	flagStoreDir     string
	flagRootRepoPath string
	flagDebug        bool
)

// cfg holds the settings loaded from config.yaml, merged with defaults.
// Set by PersistentPreRunE so all subcommands can use it.
var cfg types.Config

var rootCmd = &cobra.Command{
	Use:     "cicd",
	Short:   "cicd automates Python repository maintenance and releases",
	Version: cicd.Version,
	Long: `cicd bundles the repository tasks the CI/CD workflows run: setting
package versions, updating pyproject.toml dependencies, generating MkDocs
API-reference and landing pages, publishing releases, and activating
auto-merge on gated pull requests.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.SetDebug(flagDebug)

		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		cfg, err = loadConfig(configDir)
		if err != nil {
			return err
		}
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagStoreDir, "store-dir", "", "local store directory (default: $(CWD)/"+paths.DefaultStoreDirName+")")
	rootCmd.PersistentFlags().StringVar(&flagRootRepoPath, "root-repo-path", "", "resolvable path to the repository root (default: the root_repo_path configuration value, then '.')")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "print debug statements")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(setverCmd)
	rootCmd.AddCommand(updateDepsCmd)
	rootCmd.AddCommand(apiReferenceCmd)
	rootCmd.AddCommand(docsIndexCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(autoMergeCmd)
}

// resolveStoreDir follows the precedence chain:
// --store-dir flag > config.yaml store_dir > CICD_STORE_DIR env > default.
func resolveStoreDir() (string, error) {
	return paths.ResolveStoreDir(flagStoreDir, cfg.StoreDir)
}

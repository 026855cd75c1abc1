// Config loading for the cicd CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/dukaforge/cicd/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyRootRepoPath  = "root_repo_path"
	cfgKeyDocsFolder    = "docs_folder"
	cfgKeyStoreDir      = "store_dir"
	cfgKeyIndexURL      = "index_url"
	cfgKeyAPIURL        = "api_url"
	cfgKeyCacheTTL      = "cache_ttl"
	cfgKeyAllowedActors = "automerge.allowed_actors"
	cfgKeyBranchPrefix  = "automerge.branch_prefix"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# cicd configuration

# Package index JSON API base URL.
index_url: https://pypi.org/pypi

# Hosting GraphQL API endpoint, used by activate-auto-merge.
api_url: https://api.github.com/graphql

# Documentation root folder name.
docs_folder: docs

# How long cached index lookups stay fresh.
cache_ttl: 24h

# Local store directory (optional; overridable by --store-dir flag)
# store_dir:

# Auto-merge gate. An empty actor list admits any actor; an empty branch
# prefix admits any head branch.
automerge:
  allowed_actors:
    - dependabot[bot]
  branch_prefix: dependabot/
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper. It creates the config directory and a default config.yaml on first
// run; a missing config.yaml is not an error.
func loadConfig(configDir string) (types.Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyRootRepoPath, ".")
	v.SetDefault(cfgKeyDocsFolder, types.DefaultDocsFolder)
	v.SetDefault(cfgKeyIndexURL, types.DefaultIndexURL)
	v.SetDefault(cfgKeyAPIURL, types.DefaultAPIURL)
	v.SetDefault(cfgKeyCacheTTL, types.DefaultCacheTTL)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return types.Config{
		RootRepoPath: v.GetString(cfgKeyRootRepoPath),
		DocsFolder:   v.GetString(cfgKeyDocsFolder),
		StoreDir:     v.GetString(cfgKeyStoreDir),
		IndexURL:     v.GetString(cfgKeyIndexURL),
		APIURL:       v.GetString(cfgKeyAPIURL),
		CacheTTL:     v.GetDuration(cfgKeyCacheTTL),
		AutoMerge: types.AutoMerge{
			AllowedActors: v.GetStringSlice(cfgKeyAllowedActors),
			BranchPrefix:  v.GetString(cfgKeyBranchPrefix),
		},
	}, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// Package paths resolves the cicd configuration and store directory
// locations. Both follow a flag > config > environment > platform-default
// precedence chain.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory name for the local store.
const DefaultStoreDirName = ".cicd-store"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CICD_CONFIG_DIR"
	EnvStoreDir  = "CICD_STORE_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration
// directory.
//
// Linux:   $XDG_CONFIG_HOME/cicd (fallback ~/.config/cicd)
// macOS:   ~/Library/Application Support/cicd
// Windows: %APPDATA%/cicd
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "cicd"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "cicd"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "cicd"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > CICD_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveStoreDir returns the store directory following the precedence
// chain: flag > config.yaml store_dir > CICD_STORE_DIR env > the
// CWD-relative default $(CWD)/.cicd-store.
//
// The store is repo-local by default so release journals and index caches
// live next to the checkout they describe.
func ResolveStoreDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvStoreDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultStoreDirName), nil
}

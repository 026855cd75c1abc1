// Package setver applies a version bump across a code base: a list of
// file/pattern/replacement updates with {package_dir} and {version}
// placeholders, defaulting to the package's __init__.py dunder version.
package setver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukaforge/cicd/internal/fileio"
	"github.com/dukaforge/cicd/internal/logging"
	"github.com/dukaforge/cicd/internal/semver"
	"github.com/dukaforge/cicd/pkg/types"
)

// DefaultSeparator splits the parts of a code-base-update entry.
const DefaultSeparator = ","

// Placeholders substituted in file paths and replacement strings.
const (
	PlaceholderPackageDir = "{package_dir}"
	PlaceholderVersion    = "{version}"
)

const (
	dunderVersionPattern     = `__version__ *= *(?:'|").*(?:'|")`
	dunderVersionReplacement = `__version__ = "` + PlaceholderVersion + `"`
)

// Update is one file rewrite.
type Update struct {
	File        string
	Pattern     string
	Replacement string
}

// ParseUpdates splits raw code-base-update entries into Updates. Each entry
// must hold exactly a file path, a pattern and a replacement.
func ParseUpdates(entries []string, separator string) ([]Update, error) {
	if separator == "" {
		separator = DefaultSeparator
	}
	updates := make([]Update, 0, len(entries))
	for _, entry := range entries {
		parts := strings.Split(entry, separator)
		if len(parts) != 3 {
			return nil, fmt.Errorf(
				"code base update %q must hold file path, pattern and replacement separated by %q: %w",
				entry, separator, types.ErrInput)
		}
		updates = append(updates, Update{File: parts[0], Pattern: parts[1], Replacement: parts[2]})
	}
	return updates, nil
}

// Options configures a version bump run.
type Options struct {
	RootRepoPath string
	PackageDir   string
	Version      semver.Version
	Updates      []Update
	FailFast     bool
}

// Run applies every update. Without FailFast, missing files are collected
// and reported together at the end; pattern errors always stop the run.
func Run(opts Options) error {
	updates := opts.Updates
	if len(updates) == 0 {
		updates = []Update{{
			File:        filepath.Join(PlaceholderPackageDir, "__init__.py"),
			Pattern:     dunderVersionPattern,
			Replacement: dunderVersionReplacement,
		}}
	}

	version := opts.Version.String()
	var missing []error
	for _, update := range updates {
		path := substitute(update.File, opts.PackageDir, version)
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.RootRepoPath, path)
		}
		replacement := substitute(update.Replacement, opts.PackageDir, version)

		if _, err := os.Stat(path); err != nil {
			err = fmt.Errorf("file to update not found at %s: %w", path, types.ErrInput)
			if opts.FailFast {
				return err
			}
			missing = append(missing, err)
			continue
		}

		logging.Debug("updating %s with pattern %q", path, update.Pattern)
		if err := fileio.UpdateFile(path, update.Pattern, replacement); err != nil {
			return fmt.Errorf("updating %s: %w", path, err)
		}
	}
	return errors.Join(missing...)
}

func substitute(s, packageDir, version string) string {
	s = strings.ReplaceAll(s, PlaceholderPackageDir, packageDir)
	return strings.ReplaceAll(s, PlaceholderVersion, version)
}

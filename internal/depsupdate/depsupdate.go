// Package depsupdate rewrites pyproject.toml requirement specifiers so each
// dependency's range admits the latest version published on the package
// index. Ignore rules follow the Dependabot ignore grammar.
package depsupdate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dukaforge/cicd/internal/console"
	"github.com/dukaforge/cicd/internal/fileio"
	"github.com/dukaforge/cicd/internal/ignore"
	"github.com/dukaforge/cicd/internal/logging"
	"github.com/dukaforge/cicd/internal/pyproject"
	"github.com/dukaforge/cicd/internal/requirements"
	"github.com/dukaforge/cicd/internal/semver"
)

// IndexClient resolves the latest published version of a package.
type IndexClient interface {
	LatestVersion(ctx context.Context, name string) (string, error)
}

// Updater runs one dependency update pass over a repository.
type Updater struct {
	root     string
	index    IndexClient
	rules    ignore.Rules
	failFast bool
}

// New returns an Updater for the repository at root.
func New(root string, index IndexClient, rules ignore.Rules, failFast bool) *Updater {
	return &Updater{root: root, index: index, rules: rules, failFast: failFast}
}

// Updated is one rewritten dependency.
type Updated struct {
	Name  string
	Range string
}

// Run updates every updatable dependency and returns the rewrites it made.
// Without fail-fast, per-dependency errors are collected and returned
// together after the full pass.
func (u *Updater) Run(ctx context.Context) ([]Updated, error) {
	path := filepath.Join(u.root, pyproject.FileName)
	doc, err := pyproject.Load(path)
	if err != nil {
		return nil, err
	}
	// The index serves wheels per Python version; a project without a
	// minimum version is underspecified for dependency resolution.
	minPython, err := doc.MinPythonVersion()
	if err != nil {
		return nil, err
	}
	logging.Debug("minimum Python version: %s", minPython)

	handled := map[string]bool{}
	var updated []Updated
	var failures []error

	fail := func(err error) error {
		if u.failFast {
			return err
		}
		console.Error("%v", err)
		failures = append(failures, err)
		return nil
	}

	for _, dependency := range doc.AllDependencies() {
		req, err := requirements.Parse(dependency)
		if err != nil {
			if err := fail(err); err != nil {
				return updated, err
			}
			continue
		}
		if handled[req.Name] {
			continue
		}
		handled[req.Name] = true

		if req.URL != "" {
			console.Info("Dependency %q is pinned to a URL and will be skipped.", req.Name)
			continue
		}
		if req.Specifier.Empty() {
			console.Info("Dependency %q is not version restricted and will be skipped. "+
				"Consider adding version restrictions.", req.Name)
			continue
		}

		latest, err := u.index.LatestVersion(ctx, req.Name)
		if err != nil {
			if err := fail(fmt.Errorf("dependency %q: %w", req.Name, err)); err != nil {
				return updated, err
			}
			continue
		}
		latestVersion, err := semver.Parse(latest)
		if err != nil {
			if err := fail(fmt.Errorf("dependency %q: latest version %q: %w",
				req.Name, latest, err)); err != nil {
				return updated, err
			}
			continue
		}

		skip, err := u.ignored(req.Name, req.Specifier, latest)
		if err != nil {
			return updated, err
		}
		if skip {
			logging.Debug("ignore rules skip %s (latest %s)", req.Name, latest)
			continue
		}

		newRange, changed, err := req.Specifier.UpdateToInclude(latestVersion)
		if err != nil {
			if err := fail(fmt.Errorf("dependency %q: %w", req.Name, err)); err != nil {
				return updated, err
			}
			continue
		}
		if !changed {
			continue
		}

		rewritten := req.WithSpecifier(newRange).String()
		if err := fileio.UpdateFile(path,
			regexp.QuoteMeta(dependency),
			strings.ReplaceAll(rewritten, "$", "$$")); err != nil {
			return updated, fmt.Errorf("rewriting %s: %w", req.Name, err)
		}

		rangeDesc := newRange.String()
		if req.Marker != "" {
			rangeDesc += "; " + req.Marker
		}
		updated = append(updated, Updated{Name: req.Name, Range: rangeDesc})
	}

	if len(failures) > 0 {
		return updated, errors.Join(failures...)
	}
	return updated, nil
}

// ignored applies the Dependabot-style rules for a package, comparing the
// range's lower bound against the latest version.
func (u *Updater) ignored(name string, current semver.Range, latest string) (bool, error) {
	versionRules, updateParts, found, err := u.rules.RulesFor(name)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return ignore.Version(
		strings.Split(current.Lower().String(), "."),
		strings.Split(latest, "."),
		versionRules, updateParts)
}

// Report prints the outcome the way the workflows expect it.
func Report(updated []Updated) {
	if len(updated) == 0 {
		console.OK("No dependency updates available.")
		return
	}
	lines := make([]string, 0, len(updated))
	for _, up := range updated {
		lines = append(lines, fmt.Sprintf("  %s (%s)", up.Name, up.Range))
	}
	console.Success("Successfully updated the following dependencies:\n%s", strings.Join(lines, "\n"))
}

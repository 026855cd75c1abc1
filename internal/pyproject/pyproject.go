// Package pyproject reads the fields of a pyproject.toml file that the
// update-deps and release commands need. The file is never written through
// this package; requirement updates are applied as regex line rewrites so
// the author's formatting survives.
package pyproject

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/dukaforge/cicd/internal/semver"
	"github.com/dukaforge/cicd/pkg/types"
)

// FileName is the canonical manifest file name.
const FileName = "pyproject.toml"

// Project mirrors the [project] table.
type Project struct {
	Name                 string              `toml:"name"`
	Version              string              `toml:"version"`
	RequiresPython       string              `toml:"requires-python"`
	Dependencies         []string            `toml:"dependencies"`
	OptionalDependencies map[string][]string `toml:"optional-dependencies"`
}

// Document is a parsed pyproject.toml.
type Document struct {
	Project Project `toml:"project"`

	// Path is the file the document was read from.
	Path string `toml:"-"`
}

// Load reads and parses the pyproject.toml at path.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc Document
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %v: %w", path, err, types.ErrInputParse)
	}
	doc.Path = path
	return &doc, nil
}

// MinPythonVersion resolves the Python version floor from the project's
// requires-python specifier set, e.g. ">=3.9,<4" yields "3.9". A set with
// only an upper bound resolves to that bound instead. Versions keep the
// granularity they were written with.
func (d *Document) MinPythonVersion() (string, error) {
	r, err := semver.ParseRange(d.Project.RequiresPython)
	if err != nil {
		return "", fmt.Errorf("requires-python in %s: %v: %w",
			d.Path, err, types.ErrUnableToResolve)
	}

	// Lower bounds sort first in a Range, so a bounded set like ">=3.9,<4"
	// resolves to its floor before the upper bound is considered.
	for _, spec := range r.Specs() {
		n := spec.Version.CoreParts()
		switch spec.Op {
		case ">=", "==", "~=", "<=":
			return spec.Raw(), nil
		case ">":
			next, err := spec.Version.Next(granularityPart(n))
			if err != nil {
				return "", err
			}
			return next.Truncate(n), nil
		case "<":
			if spec.Version.Compare(semver.Version{}) == 0 {
				return "", fmt.Errorf("%s is not a valid Python version bound in %s: %w",
					spec, d.Path, types.ErrUnableToResolve)
			}
			prev, err := spec.Version.Previous(granularityPart(n), semver.DefaultMaxFiller)
			if err != nil {
				return "", err
			}
			return prev.Core(), nil
		}
	}
	return "", fmt.Errorf("no minimum Python version requirement in %s: %w",
		d.Path, types.ErrUnableToResolve)
}

// granularityPart maps the number of written version parts to the version
// part an implied bound moves at.
func granularityPart(n int) string {
	switch n {
	case 1:
		return semver.PartMajor
	case 2:
		return semver.PartMinor
	default:
		return semver.PartPatch
	}
}

// AllDependencies returns the project dependencies followed by every
// optional-dependency group, groups in sorted order for determinism.
func (d *Document) AllDependencies() []string {
	deps := append([]string(nil), d.Project.Dependencies...)

	groups := make([]string, 0, len(d.Project.OptionalDependencies))
	for group := range d.Project.OptionalDependencies {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	for _, group := range groups {
		deps = append(deps, d.Project.OptionalDependencies[group]...)
	}
	return deps
}

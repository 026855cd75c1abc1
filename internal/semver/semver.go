// Package semver implements the semantic version value type and the version
// range (specifier set) logic used by the update-deps and release commands.
//
// Precedence follows SemVer.org spec item 11, with build metadata ignored
// for comparisons. Versions may omit minor and patch ("1.5" reads as
// "1.5.0"); the number of parts given in the source string is preserved so
// specifier updates can keep the author's granularity.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dukaforge/cicd/pkg/types"
)

// Version parts accepted by Next and Previous.
const (
	PartMajor = "major"
	PartMinor = "minor"
	PartPatch = "patch"
)

// DefaultMaxFiller pads decremented parts in Previous.
const DefaultMaxFiller = 99

var versionRe = regexp.MustCompile(
	`^(?P<major>0|[1-9]\d*)(?:\.(?P<minor>0|[1-9]\d*))?(?:\.(?P<patch>0|[1-9]\d*))?` +
		`(?:-(?P<prerelease>(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)` +
		`(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
		`(?:\+(?P<build>[0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

// Version is a parsed semantic version. The zero value is "0.0.0".
type Version struct {
	Major      int
	Minor      int
	Patch      int
	PreRelease string
	Build      string

	// coreParts is the number of core version parts present in the source
	// string (1 for "2", 2 for "2.1", 3 for "2.1.0"). Zero means unknown
	// and is treated as 3.
	coreParts int
}

// Parse parses a semantic version string. Minor and patch may be omitted.
func Parse(s string) (Version, error) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("version %q is not a semantic version: %w", s, types.ErrInputParse)
	}

	names := versionRe.SubexpNames()
	groups := make(map[string]string, len(names))
	for i, name := range names {
		if name != "" {
			groups[name] = m[i]
		}
	}

	v := Version{
		PreRelease: groups["prerelease"],
		Build:      groups["build"],
		coreParts:  1,
	}
	v.Major, _ = strconv.Atoi(groups["major"])
	if groups["minor"] != "" {
		v.Minor, _ = strconv.Atoi(groups["minor"])
		v.coreParts = 2
	}
	if groups["patch"] != "" {
		v.Patch, _ = strconv.Atoi(groups["patch"])
		v.coreParts = 3
	}
	return v, nil
}

// ParseTag parses a release tag: a semantic version with an optional leading
// "v".
func ParseTag(tag string) (Version, error) {
	return Parse(strings.TrimPrefix(tag, "v"))
}

// MustParse parses s and panics on error. For tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the full padded version, e.g. "1.5.0-alpha.1+build".
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.PreRelease != "" {
		s += "-" + v.PreRelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Core returns the padded core version without pre-release and build.
func (v Version) Core() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Shortened returns the core version without trailing zero parts, and
// without pre-release and build. "1.0.0" shortens to "1", "1.5.0" to "1.5".
func (v Version) Shortened() string {
	if v.Patch == 0 {
		if v.Minor == 0 {
			return strconv.Itoa(v.Major)
		}
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return v.Core()
}

// MajorMinor returns "MAJOR.MINOR", used for versioned docs aliases.
func (v Version) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CoreParts returns how many core parts the source string carried (1-3).
func (v Version) CoreParts() int {
	if v.coreParts == 0 {
		return 3
	}
	return v.coreParts
}

// Truncate returns the first n core parts joined with dots, e.g.
// Truncate(2) of "2.1.3" is "2.1".
func (v Version) Truncate(n int) string {
	parts := []string{strconv.Itoa(v.Major), strconv.Itoa(v.Minor), strconv.Itoa(v.Patch)}
	if n < 1 {
		n = 1
	}
	if n > 3 {
		n = 3
	}
	return strings.Join(parts[:n], ".")
}

// Compare returns -1, 0 or +1 ordering v against other. Build metadata is
// ignored. A version with a pre-release sorts before the same version
// without one; two pre-releases compare as plain strings.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	switch {
	case v.PreRelease == other.PreRelease:
		return 0
	case v.PreRelease == "":
		return 1
	case other.PreRelease == "":
		return -1
	case v.PreRelease < other.PreRelease:
		return -1
	default:
		return 1
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// LessThan reports whether v orders before other.
func (v Version) LessThan(other Version) bool { return v.Compare(other) < 0 }

// Equal reports whether v and other are the same version, ignoring build
// metadata.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// Next returns the next version for the given part. Lower parts reset to
// zero; pre-release and build are dropped.
func (v Version) Next(part string) (Version, error) {
	switch part {
	case PartMajor:
		return Version{Major: v.Major + 1, coreParts: 3}, nil
	case PartMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1, coreParts: 3}, nil
	case PartPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1, coreParts: 3}, nil
	default:
		return Version{}, fmt.Errorf("version part must be one of %q, %q, %q, not %q: %w",
			PartMajor, PartMinor, PartPatch, part, types.ErrInput)
	}
}

// Previous returns the previous version for the given part, filling
// decremented lower parts with maxFiller (pass a negative value for the
// default of 99). Decrementing below zero rolls into the next part up.
func (v Version) Previous(part string, maxFiller int) (Version, error) {
	if maxFiller < 0 {
		maxFiller = DefaultMaxFiller
	}

	prevMinor := Version{Major: v.Major, Minor: v.Minor - 1, Patch: maxFiller, coreParts: 3}
	prevMajor := Version{Major: v.Major - 1, Minor: maxFiller, Patch: maxFiller, coreParts: 3}

	switch part {
	case PartMajor:
		return prevMajor, nil
	case PartMinor:
		if v.Minor == 0 {
			return prevMajor, nil
		}
		return prevMinor, nil
	case PartPatch:
		if v.Patch == 0 {
			if v.Minor == 0 {
				return prevMajor, nil
			}
			return prevMinor, nil
		}
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch - 1, coreParts: 3}, nil
	default:
		return Version{}, fmt.Errorf("version part must be one of %q, %q, %q, not %q: %w",
			PartMajor, PartMinor, PartPatch, part, types.ErrInput)
	}
}

// Package ignore parses and evaluates Dependabot-style ignore rules for the
// update-deps command. A rule entry is a separator-joined list of
// key=value pairs with keys "dependency-name" (required), "versions" and
// "update-types"; the name "*" applies to every package.
package ignore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dukaforge/cicd/internal/semver"
	"github.com/dukaforge/cicd/pkg/types"
)

// DefaultSeparator joins key=value pairs inside one --ignore option.
const DefaultSeparator = "..."

// Wildcard matches every dependency name.
const Wildcard = "*"

var (
	pairRe       = regexp.MustCompile(`^(?P<key>dependency-name|versions|update-types)=(?P<value>.*)$`)
	versionRe    = regexp.MustCompile(`^(?P<operator>>|<|<=|>=|==|!=|~=)\s*(?P<version>[0-9]+(?:\.[0-9]+){0,2})$`)
	updateTypeRe = regexp.MustCompile(`^version-update:semver-(?P<part>major|minor|patch)$`)
)

// RuleSet holds the raw rule values collected for one dependency name.
// An empty RuleSet means "ignore the package altogether".
type RuleSet struct {
	Versions    []string
	UpdateTypes []string
}

// Rules maps dependency names (or Wildcard) to their rule sets.
type Rules map[string]RuleSet

// VersionRule is a parsed "versions" entry: a single operator and version.
type VersionRule struct {
	Operator string
	Version  string
}

// ParseEntries parses the supplied --ignore options. Each entry holds at
// most three key=value pairs joined by separator; a key may appear only
// once per entry, and "dependency-name" is required.
func ParseEntries(entries []string, separator string) (Rules, error) {
	rules := make(Rules)

	for _, entry := range entries {
		pairs := strings.SplitN(entry, separator, 3)
		for _, pair := range pairs {
			if strings.Contains(pair, separator) {
				return nil, fmt.Errorf(
					"more than three key/value-pairs given for an ignore option "+
						"(entry %q): %w", entry, types.ErrInputParse)
			}
		}

		seen := make(map[string]string, len(pairs))
		for _, pair := range pairs {
			m := pairRe.FindStringSubmatch(pair)
			if m == nil {
				return nil, fmt.Errorf("could not parse ignore configuration %q "+
					"(part of the ignore option %q): %w", pair, entry, types.ErrInputParse)
			}
			key, value := m[1], strings.TrimSpace(m[2])
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("ignore configuration key %q given multiple "+
					"times in option %q: %w", key, entry, types.ErrInputParse)
			}
			seen[key] = value
		}

		name, ok := seen["dependency-name"]
		if !ok {
			return nil, fmt.Errorf("ignore option entry %q missing required "+
				"'dependency-name' configuration: %w", entry, types.ErrInput)
		}

		set := rules[name]
		if v, ok := seen["versions"]; ok {
			set.Versions = append(set.Versions, v)
		}
		if v, ok := seen["update-types"]; ok {
			set.UpdateTypes = append(set.UpdateTypes, v)
		}
		rules[name] = set
	}

	return rules, nil
}

// Parse validates the raw rule values. An empty rule set parses to the
// catch-all ">=0" version rule, ignoring every update for the package.
func (s RuleSet) Parse() ([]VersionRule, []string, error) {
	if len(s.Versions) == 0 && len(s.UpdateTypes) == 0 {
		return []VersionRule{{Operator: ">=", Version: "0"}}, nil, nil
	}

	var versions []VersionRule
	for _, entry := range s.Versions {
		m := versionRe.FindStringSubmatch(entry)
		if m == nil {
			return nil, nil, fmt.Errorf("ignore option's 'versions' value %q must be "+
				"a single operator followed by a version number: %w", entry, types.ErrInputParse)
		}
		versions = append(versions, VersionRule{Operator: m[1], Version: m[2]})
	}

	var parts []string
	for _, entry := range s.UpdateTypes {
		m := updateTypeRe.FindStringSubmatch(entry)
		if m == nil {
			return nil, nil, fmt.Errorf("ignore option's 'update-types' value %q must "+
				"be 'version-update:semver-major', '-minor' or '-patch': %w",
				entry, types.ErrInputParse)
		}
		parts = append(parts, m[1])
	}

	return versions, parts, nil
}

// RulesFor merges the wildcard rule set with the named dependency's rule set
// and parses the result. The boolean reports whether any rule applies.
func (r Rules) RulesFor(name string) ([]VersionRule, []string, bool, error) {
	var versions []VersionRule
	var parts []string
	applies := false

	if set, ok := r[Wildcard]; ok {
		v, p, err := set.Parse()
		if err != nil {
			return nil, nil, false, err
		}
		versions = append(versions, v...)
		parts = append(parts, p...)
		applies = true
	}
	if set, ok := r[name]; ok {
		v, p, err := set.Parse()
		if err != nil {
			return nil, nil, false, err
		}
		versions = append(versions, v...)
		parts = append(parts, p...)
		applies = true
	}
	return versions, parts, applies, nil
}

// Version decides whether the latest version may be ignored for an update
// from current. Version rules AND together; update-type rules OR together.
// A dependency named with no rules at all is ignored entirely.
func Version(current, latest []string, versionRules []VersionRule, updateParts []string) (bool, error) {
	if len(versionRules) == 0 && len(updateParts) == 0 {
		return true, nil
	}

	ignored, err := versionRulesMatch(latest, versionRules)
	if err != nil {
		return false, err
	}
	if ignored {
		return true, nil
	}

	return updatePartsMatch(current, latest, updateParts)
}

// versionRulesMatch reports whether ALL version rules admit ignoring latest.
func versionRulesMatch(latest []string, rules []VersionRule) (bool, error) {
	if len(rules) == 0 {
		return false, nil
	}

	latestVersion, err := semver.Parse(strings.Join(latest, "."))
	if err != nil {
		return false, err
	}

	for _, rule := range rules {
		ruleVersion, err := semver.Parse(rule.Version)
		if err != nil {
			return false, err
		}

		c := latestVersion.Compare(ruleVersion)
		var match bool
		switch rule.Operator {
		case ">":
			match = c > 0
		case "<":
			match = c < 0
		case "<=":
			match = c <= 0
		case ">=":
			match = c >= 0
		case "==":
			match = c == 0
		case "!=":
			match = c != 0
		case "~=":
			if !strings.Contains(rule.Version, ".") {
				return false, fmt.Errorf("ignore option 'versions' with the '~=' "+
					"operator must give more than a single version part (got %q): %w",
					rule.Version, types.ErrInput)
			}
			part := semver.PartMajor
			if strings.Count(rule.Version, ".") > 1 {
				part = semver.PartMinor
			}
			upper, err := ruleVersion.Next(part)
			if err != nil {
				return false, err
			}
			match = c >= 0 && latestVersion.LessThan(upper)
		default:
			return false, fmt.Errorf("unsupported operator %q in ignore 'versions' rule: %w",
				rule.Operator, types.ErrInputParse)
		}

		if !match {
			return false, nil
		}
	}
	return true, nil
}

// updatePartsMatch reports whether ANY update-type rule admits ignoring the
// update from current to latest.
func updatePartsMatch(current, latest []string, parts []string) (bool, error) {
	for _, part := range parts {
		switch part {
		case semver.PartMajor:
			if partDiffers(current, latest, 0) {
				return true, nil
			}
		case semver.PartMinor:
			if len(current) >= 2 && len(latest) >= 2 &&
				!partDiffers(current, latest, 0) && partGreater(latest, current, 1) {
				return true, nil
			}
		case semver.PartPatch:
			if len(current) >= 3 && len(latest) >= 3 &&
				!partDiffers(current, latest, 0) && !partDiffers(current, latest, 1) &&
				partGreater(latest, current, 2) {
				return true, nil
			}
		default:
			return false, fmt.Errorf("only 'major', 'minor' and 'patch' are valid "+
				"'version-update' values (got %q): %w", part, types.ErrInputParse)
		}
	}
	return false, nil
}

func partDiffers(a, b []string, i int) bool {
	return partInt(a, i) != partInt(b, i)
}

func partGreater(a, b []string, i int) bool {
	return partInt(a, i) > partInt(b, i)
}

func partInt(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0
	}
	return n
}

package semver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dukaforge/cicd/pkg/types"
)

// Specifier operators, ordered for deterministic output: lower bounds first,
// exclusions last.
var operatorOrder = map[string]int{
	"~=": 0,
	">=": 1,
	">":  2,
	"==": 3,
	"<=": 4,
	"<":  5,
	"!=": 6,
}

// Specifier is a single version constraint, e.g. ">=1.2".
type Specifier struct {
	Op      string
	Version Version
	raw     string // version as written, granularity preserved
}

// String returns the specifier as written, e.g. "<=2.1".
func (s Specifier) String() string { return s.Op + s.raw }

// Raw returns the specifier's version exactly as written, granularity
// preserved.
func (s Specifier) Raw() string { return s.raw }

// Range is a sanitized set of specifiers constraining a dependency.
//
// Sanitization rules: at most one upper bound ("<", "<="), at most one lower
// bound (">", ">=", "~="), "==" at most once and only alone, and the range
// must not be flipped (lower above upper).
type Range struct {
	specs []Specifier
}

// ParseRange parses a comma-separated specifier set such as ">=1.0,<2".
// Every version must itself be a semantic version.
func ParseRange(s string) (Range, error) {
	var r Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		spec, err := parseSpecifier(part)
		if err != nil {
			return Range{}, err
		}
		r.specs = append(r.specs, spec)
	}
	if err := r.sanitize(); err != nil {
		return Range{}, err
	}
	r.sort()
	return r, nil
}

// NewRange builds a Range from already-parsed specifiers, applying the same
// sanitization as ParseRange.
func NewRange(specs []Specifier) (Range, error) {
	r := Range{specs: append([]Specifier(nil), specs...)}
	if err := r.sanitize(); err != nil {
		return Range{}, err
	}
	r.sort()
	return r, nil
}

func parseSpecifier(s string) (Specifier, error) {
	var op string
	for _, candidate := range []string{">=", "<=", "==", "!=", "~=", ">", "<"} {
		if strings.HasPrefix(s, candidate) {
			op = candidate
			break
		}
	}
	if op == "" {
		return Specifier{}, fmt.Errorf("specifier %q has no recognized operator: %w", s, types.ErrInputParse)
	}

	raw := strings.TrimSpace(s[len(op):])
	v, err := Parse(raw)
	if err != nil {
		return Specifier{}, fmt.Errorf("specifier %q is not a semantic version specifier: %w", s, types.ErrInput)
	}
	if op == "~=" && v.CoreParts() < 2 {
		return Specifier{}, fmt.Errorf("specifier %q: the ~= operator requires at least two version parts: %w", s, types.ErrInput)
	}
	return Specifier{Op: op, Version: v, raw: raw}, nil
}

func (r *Range) sanitize() error {
	var upper, lower, equals int
	for _, spec := range r.specs {
		switch spec.Op {
		case "<", "<=":
			upper++
		case ">", ">=", "~=":
			lower++
		case "==":
			equals++
		}
	}
	if upper > 1 {
		return fmt.Errorf("multiple upper bound specifiers ('<', '<=') in %q: %w", r.String(), types.ErrInput)
	}
	if lower > 1 {
		return fmt.Errorf("multiple lower bound specifiers ('>', '>=', '~=') in %q: %w", r.String(), types.ErrInput)
	}
	if equals > 1 {
		return fmt.Errorf("'==' given multiple times in %q: %w", r.String(), types.ErrInput)
	}
	if equals == 1 && len(r.specs) > 1 {
		return fmt.Errorf("specifiers alongside '==' in %q: %w", r.String(), types.ErrInput)
	}

	lo, hasLo := r.VersionFromOperator(">", ">=", "~=")
	hi, hasHi := r.VersionFromOperator("<", "<=")
	if hasLo && hasHi && hi.LessThan(lo) {
		return fmt.Errorf("version range %q is flipped: %w", r.String(), types.ErrInput)
	}
	return nil
}

func (r *Range) sort() {
	sort.SliceStable(r.specs, func(i, j int) bool {
		return operatorOrder[r.specs[i].Op] < operatorOrder[r.specs[j].Op]
	})
}

// String returns the specifier set, lower bounds first.
func (r Range) String() string {
	parts := make([]string, len(r.specs))
	for i, spec := range r.specs {
		parts[i] = spec.String()
	}
	return strings.Join(parts, ",")
}

// Empty reports whether the range has no specifiers.
func (r Range) Empty() bool { return len(r.specs) == 0 }

// Specs returns a copy of the specifiers.
func (r Range) Specs() []Specifier {
	return append([]Specifier(nil), r.specs...)
}

// Operators returns the operators present in the range, in output order.
func (r Range) Operators() []string {
	ops := make([]string, len(r.specs))
	for i, spec := range r.specs {
		ops[i] = spec.Op
	}
	return ops
}

// HasOperator reports whether any of the given operators appears in the range.
func (r Range) HasOperator(ops ...string) bool {
	_, ok := r.specifierFromOperator(ops...)
	return ok
}

// VersionFromOperator returns the version of the first specifier using one of
// the given operators.
func (r Range) VersionFromOperator(ops ...string) (Version, bool) {
	spec, ok := r.specifierFromOperator(ops...)
	return spec.Version, ok
}

func (r Range) specifierFromOperator(ops ...string) (Specifier, bool) {
	for _, spec := range r.specs {
		for _, op := range ops {
			if spec.Op == op {
				return spec, true
			}
		}
	}
	return Specifier{}, false
}

// Lower returns the lower bound of the range: the version of the ">", ">=",
// "~=" or "==" specifier, or "0.0.0" when the range is unbounded below.
func (r Range) Lower() Version {
	if v, ok := r.VersionFromOperator(">", ">=", "~=", "=="); ok {
		return v
	}
	return Version{}
}

// Contains reports whether the version satisfies every specifier.
func (r Range) Contains(v Version) bool {
	for _, spec := range r.specs {
		if !specSatisfied(spec, v) {
			return false
		}
	}
	return true
}

// ContainsString parses s and reports whether it is in the range.
func (r Range) ContainsString(s string) (bool, error) {
	v, err := Parse(s)
	if err != nil {
		return false, err
	}
	return r.Contains(v), nil
}

func specSatisfied(spec Specifier, v Version) bool {
	c := v.Compare(spec.Version)
	switch spec.Op {
	case ">=":
		return c >= 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	case "<":
		return c < 0
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "~=":
		upper := compatibleUpperBound(spec)
		return c >= 0 && v.LessThan(upper)
	default:
		return false
	}
}

// compatibleUpperBound returns the exclusive upper bound implied by a "~="
// specifier: "~=2.1" admits up to (not including) 3.0.0, "~=2.1.3" up to
// 2.2.0.
func compatibleUpperBound(spec Specifier) Version {
	part := PartMajor
	if spec.Version.CoreParts() >= 3 {
		part = PartMinor
	}
	upper, _ := spec.Version.Next(part)
	return upper
}

// UpdateToInclude returns a range admitting the latest version, preserving
// every specifier it does not need to touch ("!=" exclusions in particular).
// The boolean reports whether the range actually changed.
//
// When latest is already inside the range, a ">=" lower bound needs no
// update; a "~=" or "==" specifier is bumped in place at its original
// granularity. When latest is above the range, the upper bound is raised:
// "<=" to latest truncated to the bound's granularity, "<" to the next
// version above latest at that granularity, and "~=" either bumped in place
// or, on a major jump, expanded to ">=current,<nextMajor".
func (r Range) UpdateToInclude(latest Version) (Range, bool, error) {
	if r.Contains(latest) {
		if r.HasOperator(">=") {
			return r, false, nil
		}
		for _, op := range []string{"~=", "=="} {
			spec, ok := r.specifierFromOperator(op)
			if !ok {
				continue
			}
			updatedVersion := latest.Truncate(spec.Version.CoreParts())
			if updatedVersion == spec.raw {
				return r, false, nil
			}
			return r.replace(op, Specifier{Op: op, Version: MustParse(updatedVersion), raw: updatedVersion}), true, nil
		}
		return r, false, nil
	}

	if spec, ok := r.specifierFromOperator("<="); ok {
		updatedVersion := latest.Truncate(spec.Version.CoreParts())
		return r.replace("<=", Specifier{Op: "<=", Version: MustParse(updatedVersion), raw: updatedVersion}), true, nil
	}

	if spec, ok := r.specifierFromOperator("~="); ok {
		if latest.Major > spec.Version.Major {
			// Expand and change ~= to >= and < operators.
			nextMajor, _ := latest.Next(PartMajor)
			nextMajorRaw := fmt.Sprintf("%d", nextMajor.Major)
			out := r.remove("~=")
			out.specs = append(out.specs,
				Specifier{Op: ">=", Version: spec.Version, raw: spec.Version.Core()},
				Specifier{Op: "<", Version: Version{Major: nextMajor.Major, coreParts: 1}, raw: nextMajorRaw},
			)
			out.sort()
			return out, true, nil
		}
		updatedVersion := latest.Truncate(spec.Version.CoreParts())
		return r.replace("~=", Specifier{Op: "~=", Version: MustParse(updatedVersion), raw: updatedVersion}), true, nil
	}

	if spec, ok := r.specifierFromOperator("<"); ok {
		var updatedVersion string
		switch spec.Version.CoreParts() {
		case 1:
			next, _ := latest.Next(PartMajor)
			updatedVersion = fmt.Sprintf("%d", next.Major)
		case 2:
			next, _ := latest.Next(PartMinor)
			updatedVersion = next.Truncate(2)
		default:
			next, _ := latest.Next(PartPatch)
			updatedVersion = next.Core()
		}
		return r.replace("<", Specifier{Op: "<", Version: MustParse(updatedVersion), raw: updatedVersion}), true, nil
	}

	return Range{}, false, fmt.Errorf(
		"cannot update specifier set %q to include latest version %s: %w",
		r.String(), latest, types.ErrUnableToResolve)
}

// replace returns a copy of the range with the first specifier using op
// swapped for the given specifier.
func (r Range) replace(op string, spec Specifier) Range {
	out := r.remove(op)
	out.specs = append(out.specs, spec)
	out.sort()
	return out
}

// remove returns a copy of the range without the first specifier using op.
func (r Range) remove(op string) Range {
	out := Range{specs: make([]Specifier, 0, len(r.specs))}
	removed := false
	for _, spec := range r.specs {
		if !removed && spec.Op == op {
			removed = true
			continue
		}
		out.specs = append(out.specs, spec)
	}
	return out
}

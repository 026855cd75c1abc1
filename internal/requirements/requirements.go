// Package requirements parses and regenerates Python requirement strings of
// the form "name[extra,...] >=1.0,<2 ; marker" or "name @ url". Only the
// subset used in pyproject.toml dependency lists is understood; markers are
// carried as opaque strings.
package requirements

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dukaforge/cicd/internal/semver"
	"github.com/dukaforge/cicd/pkg/types"
)

var (
	nameRe          = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)
	canonicalizeRe  = regexp.MustCompile(`[-_.]+`)
	extrasOpenChar  = "["
	extrasCloseChar = "]"
)

// Requirement is a parsed dependency declaration.
type Requirement struct {
	Name      string
	Extras    []string
	Specifier semver.Range
	URL       string
	Marker    string

	// PostNameSpace records whether whitespace separated the name (and
	// extras) from the specifier, so Regenerate can preserve the author's
	// formatting.
	PostNameSpace bool
}

// Parse parses a requirement string. The specifier set, when present, must
// consist of semantic version specifiers.
func Parse(s string) (Requirement, error) {
	var req Requirement

	rest := strings.TrimSpace(s)
	if rest == "" {
		return Requirement{}, fmt.Errorf("empty requirement: %w", types.ErrInputParse)
	}

	// Marker: everything after the first semicolon.
	if i := strings.Index(rest, ";"); i >= 0 {
		req.Marker = strings.TrimSpace(rest[i+1:])
		rest = strings.TrimSpace(rest[:i])
	}

	m := nameRe.FindString(rest)
	if m == "" {
		return Requirement{}, fmt.Errorf("requirement %q has no package name: %w", s, types.ErrInputParse)
	}
	req.Name = m
	rest = rest[len(m):]

	// Extras: "[a,b]" immediately after the name.
	if strings.HasPrefix(rest, extrasOpenChar) {
		end := strings.Index(rest, extrasCloseChar)
		if end < 0 {
			return Requirement{}, fmt.Errorf("requirement %q has an unterminated extras list: %w", s, types.ErrInputParse)
		}
		for _, extra := range strings.Split(rest[1:end], ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				req.Extras = append(req.Extras, extra)
			}
		}
		rest = rest[end+1:]
	}

	req.PostNameSpace = strings.HasPrefix(rest, " ")
	rest = strings.TrimSpace(rest)

	// URL pin: "@ <url>".
	if strings.HasPrefix(rest, "@") {
		req.URL = strings.TrimSpace(strings.TrimPrefix(rest, "@"))
		if req.URL == "" {
			return Requirement{}, fmt.Errorf("requirement %q has an empty URL: %w", s, types.ErrInputParse)
		}
		return req, nil
	}

	if rest != "" {
		spec, err := semver.ParseRange(rest)
		if err != nil {
			return Requirement{}, fmt.Errorf("requirement %q: %w", s, err)
		}
		req.Specifier = spec
	}
	return req, nil
}

// CanonicalName returns the canonical form of a package name: lower case
// with runs of "-", "_" and "." collapsed to a single "-".
func CanonicalName(name string) string {
	return strings.ToLower(canonicalizeRe.ReplaceAllString(name, "-"))
}

// WithSpecifier returns a copy of the requirement with the given specifier
// set.
func (r Requirement) WithSpecifier(spec semver.Range) Requirement {
	r.Specifier = spec
	return r
}

// String regenerates the requirement, preserving the post-name space and
// sorting extras. The specifier set prints lower bounds first.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)

	if len(r.Extras) > 0 {
		extras := append([]string(nil), r.Extras...)
		sort.Strings(extras)
		b.WriteString("[" + strings.Join(extras, ",") + "]")
	}

	if r.PostNameSpace {
		b.WriteString(" ")
	}

	if r.URL != "" {
		b.WriteString("@ " + r.URL)
		if r.Marker != "" {
			b.WriteString(" ")
		}
	} else if !r.Specifier.Empty() {
		b.WriteString(r.Specifier.String())
	}

	if r.Marker != "" {
		b.WriteString("; " + r.Marker)
	}
	return b.String()
}

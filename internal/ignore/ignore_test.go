package ignore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/cicd/pkg/types"
)

func TestParseEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    Rules
		wantErr bool
	}{
		{
			name:    "name only ignores package",
			entries: []string{"dependency-name=requests"},
			want:    Rules{"requests": {}},
		},
		{
			name:    "name with versions",
			entries: []string{"dependency-name=requests...versions=>=3"},
			want:    Rules{"requests": {Versions: []string{">=3"}}},
		},
		{
			name: "repeated entries accumulate",
			entries: []string{
				"dependency-name=requests...versions=>=3",
				"dependency-name=requests...update-types=version-update:semver-major",
			},
			want: Rules{"requests": {
				Versions:    []string{">=3"},
				UpdateTypes: []string{"version-update:semver-major"},
			}},
		},
		{
			name:    "wildcard entry",
			entries: []string{"dependency-name=*...update-types=version-update:semver-major"},
			want:    Rules{"*": {UpdateTypes: []string{"version-update:semver-major"}}},
		},
		{
			name:    "missing dependency-name rejected",
			entries: []string{"versions=>=3"},
			wantErr: true,
		},
		{
			name:    "unknown key rejected",
			entries: []string{"dependency-name=requests...package-ecosystem=pip"},
			wantErr: true,
		},
		{
			name:    "duplicate key rejected",
			entries: []string{"dependency-name=a...dependency-name=b"},
			wantErr: true,
		},
		{
			name: "four pairs rejected",
			entries: []string{strings.Join([]string{
				"dependency-name=a", "versions=>=1", "versions=>=2", "versions=>=3",
			}, DefaultSeparator)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntries(tt.entries, DefaultSeparator)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleSetParse(t *testing.T) {
	t.Run("empty set becomes catch-all", func(t *testing.T) {
		versions, parts, err := RuleSet{}.Parse()
		require.NoError(t, err)
		assert.Equal(t, []VersionRule{{Operator: ">=", Version: "0"}}, versions)
		assert.Empty(t, parts)
	})

	t.Run("versions and update types parsed", func(t *testing.T) {
		versions, parts, err := RuleSet{
			Versions:    []string{">= 2.5", "!=2.6.1"},
			UpdateTypes: []string{"version-update:semver-minor"},
		}.Parse()
		require.NoError(t, err)
		assert.Equal(t, []VersionRule{
			{Operator: ">=", Version: "2.5"},
			{Operator: "!=", Version: "2.6.1"},
		}, versions)
		assert.Equal(t, []string{"minor"}, parts)
	})

	t.Run("bad versions value rejected", func(t *testing.T) {
		_, _, err := RuleSet{Versions: []string{"latest"}}.Parse()
		assert.ErrorIs(t, err, types.ErrInputParse)
	})

	t.Run("bad update-types value rejected", func(t *testing.T) {
		_, _, err := RuleSet{UpdateTypes: []string{"semver-major"}}.Parse()
		assert.ErrorIs(t, err, types.ErrInputParse)
	})
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		latest   string
		versions []VersionRule
		parts    []string
		want     bool
		wantErr  bool
	}{
		{
			name:    "no rules ignores everything",
			current: "1.0.0",
			latest:  "2.0.0",
			want:    true,
		},
		{
			name:     "version rule matches",
			current:  "1.0.0",
			latest:   "2.0.0",
			versions: []VersionRule{{Operator: ">=", Version: "2"}},
			want:     true,
		},
		{
			name:     "version rules AND together",
			current:  "1.0.0",
			latest:   "2.0.0",
			versions: []VersionRule{{Operator: ">=", Version: "2"}, {Operator: "<", Version: "2"}},
			want:     false,
		},
		{
			name:     "compatible rule admits range",
			current:  "2.0.0",
			latest:   "2.3.0",
			versions: []VersionRule{{Operator: "~=", Version: "2.0"}},
			want:     true,
		},
		{
			name:     "compatible rule needs two parts",
			current:  "2.0.0",
			latest:   "2.3.0",
			versions: []VersionRule{{Operator: "~=", Version: "2"}},
			wantErr:  true,
		},
		{
			name:    "major update ignored",
			current: "1.9.0",
			latest:  "2.0.0",
			parts:   []string{"major"},
			want:    true,
		},
		{
			name:    "minor bump not ignored by major rule",
			current: "1.2.0",
			latest:  "1.3.0",
			parts:   []string{"major"},
			want:    false,
		},
		{
			name:    "minor update ignored",
			current: "1.2.0",
			latest:  "1.3.0",
			parts:   []string{"minor"},
			want:    true,
		},
		{
			name:    "patch update ignored",
			current: "1.2.3",
			latest:  "1.2.4",
			parts:   []string{"patch"},
			want:    true,
		},
		{
			name:    "two digit parts compare numerically",
			current: "1.9.0",
			latest:  "1.10.0",
			parts:   []string{"minor"},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Version(
				strings.Split(tt.current, "."),
				strings.Split(tt.latest, "."),
				tt.versions, tt.parts)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRulesFor(t *testing.T) {
	rules := Rules{
		"*":        {UpdateTypes: []string{"version-update:semver-major"}},
		"requests": {Versions: []string{">=3"}},
	}

	versions, parts, applies, err := rules.RulesFor("requests")
	require.NoError(t, err)
	assert.True(t, applies)
	assert.Equal(t, []VersionRule{{Operator: ">=", Version: "3"}}, versions)
	assert.Equal(t, []string{"major"}, parts)

	_, parts, applies, err = rules.RulesFor("other")
	require.NoError(t, err)
	assert.True(t, applies)
	assert.Equal(t, []string{"major"}, parts)

	_, _, applies, err = Rules{}.RulesFor("anything")
	require.NoError(t, err)
	assert.False(t, applies)
}

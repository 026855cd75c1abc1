package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/cicd/pkg/types"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "single lower bound", in: ">=1.0", want: ">=1.0"},
		{name: "bounds sorted lower first", in: "<2,>=1.0", want: ">=1.0,<2"},
		{name: "spaces tolerated", in: ">= 1.0, < 2", want: ">=1.0,<2"},
		{name: "exclusion kept", in: ">=1.0,!=1.5,<2", want: ">=1.0,<2,!=1.5"},
		{name: "compatible release", in: "~=2.1", want: "~=2.1"},
		{name: "equals alone", in: "==1.2.3", want: "==1.2.3"},
		{name: "two upper bounds rejected", in: "<2,<=3", wantErr: true},
		{name: "two lower bounds rejected", in: ">=1,~=1.2", wantErr: true},
		{name: "equals with others rejected", in: "==1.2,<2", wantErr: true},
		{name: "flipped range rejected", in: ">=3,<2", wantErr: true},
		{name: "compatible release needs two parts", in: "~=2", wantErr: true},
		{name: "non-semver version rejected", in: ">=1.2.3.4", wantErr: true},
		{name: "missing operator rejected", in: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.String())
		})
	}
}

func TestRangeContains(t *testing.T) {
	tests := []struct {
		name    string
		r       string
		version string
		want    bool
	}{
		{name: "inside closed range", r: ">=1.0,<2", version: "1.5.0", want: true},
		{name: "below lower bound", r: ">=1.0,<2", version: "0.9.0"},
		{name: "at exclusive upper bound", r: ">=1.0,<2", version: "2.0.0"},
		{name: "at inclusive upper bound", r: ">=1.0,<=2", version: "2.0.0", want: true},
		{name: "excluded version", r: ">=1.0,!=1.5", version: "1.5.0"},
		{name: "compatible minor admits patch", r: "~=2.1.3", version: "2.1.9", want: true},
		{name: "compatible minor rejects next minor", r: "~=2.1.3", version: "2.2.0"},
		{name: "compatible major admits minor", r: "~=2.1", version: "2.9.0", want: true},
		{name: "compatible major rejects next major", r: "~=2.1", version: "3.0.0"},
		{name: "equals exact", r: "==1.2", version: "1.2.0", want: true},
		{name: "equals mismatch", r: "==1.2", version: "1.2.5"},
		{name: "empty range admits everything", r: "", version: "9.9.9", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.r)
			require.NoError(t, err)
			got, err := r.ContainsString(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRangeLower(t *testing.T) {
	r, err := ParseRange(">=1.2,<3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", r.Lower().String())

	r, err = ParseRange("<3")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", r.Lower().String())
}

func TestUpdateToInclude(t *testing.T) {
	tests := []struct {
		name        string
		r           string
		latest      string
		want        string
		wantChanged bool
		wantErr     bool
	}{
		{
			name:   "satisfied minimum left alone",
			r:      ">=1.0",
			latest: "1.9.0",
			want:   ">=1.0",
		},
		{
			name:        "inclusive upper bound raised at its granularity",
			r:           ">=1.0,<=2.1",
			latest:      "3.4.5",
			want:        ">=1.0,<=3.4",
			wantChanged: true,
		},
		{
			name:        "exclusive major bound raised to next major",
			r:           ">=1.0,<2",
			latest:      "2.3.0",
			want:        ">=1.0,<3",
			wantChanged: true,
		},
		{
			name:        "exclusive minor bound raised to next minor",
			r:           "<2.1",
			latest:      "2.3.4",
			want:        "<2.4",
			wantChanged: true,
		},
		{
			name:        "exclusive patch bound raised to next patch",
			r:           "<2.1.0",
			latest:      "2.3.4",
			want:        "<2.3.5",
			wantChanged: true,
		},
		{
			name:        "compatible release bumped in place",
			r:           "~=2.1",
			latest:      "2.5.0",
			want:        "~=2.5",
			wantChanged: true,
		},
		{
			name:        "compatible release expanded on major jump",
			r:           "~=2.1",
			latest:      "3.2.0",
			want:        ">=2.1.0,<4",
			wantChanged: true,
		},
		{
			name:   "compatible release covering latest left alone",
			r:      "~=2.1",
			latest: "2.1.0",
			want:   "~=2.1",
		},
		{
			// ==2.1 pins 2.1.0 exactly; 2.1.5 is outside and no bound can move.
			name:    "equals pin outside range unresolvable",
			r:       "==2.1",
			latest:  "2.1.5",
			wantErr: true,
		},
		{
			name:        "exclusion preserved when bound moves",
			r:           ">=1.0,!=1.5,<2",
			latest:      "2.2.0",
			want:        ">=1.0,<3,!=1.5",
			wantChanged: true,
		},
		{
			name:    "only lower bound above latest unresolvable",
			r:       ">5.0",
			latest:  "4.0.0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.r)
			require.NoError(t, err)

			got, changed, err := r.UpdateToInclude(MustParse(tt.latest))
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrUnableToResolve)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

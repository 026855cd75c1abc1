package requirements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/cicd/pkg/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantName   string
		wantExtras []string
		wantSpec   string
		wantURL    string
		wantMarker string
		wantErr    bool
	}{
		{
			name:     "bare name",
			in:       "requests",
			wantName: "requests",
		},
		{
			name:     "name with specifier",
			in:       "requests>=2.28,<3",
			wantName: "requests",
			wantSpec: ">=2.28,<3",
		},
		{
			name:     "space before specifier",
			in:       "requests >=2.28",
			wantName: "requests",
			wantSpec: ">=2.28",
		},
		{
			name:       "extras",
			in:         "uvicorn[standard]>=0.24",
			wantName:   "uvicorn",
			wantExtras: []string{"standard"},
			wantSpec:   ">=0.24",
		},
		{
			name:       "marker carried verbatim",
			in:         `tomli>=1.1; python_version < "3.11"`,
			wantName:   "tomli",
			wantSpec:   ">=1.1",
			wantMarker: `python_version < "3.11"`,
		},
		{
			name:     "url pin",
			in:       "mypkg @ https://example.com/mypkg-1.0.tar.gz",
			wantName: "mypkg",
			wantURL:  "https://example.com/mypkg-1.0.tar.gz",
		},
		{
			name:    "empty rejected",
			in:      "   ",
			wantErr: true,
		},
		{
			name:    "unterminated extras rejected",
			in:      "pkg[standard",
			wantErr: true,
		},
		{
			name:    "non-semver specifier rejected",
			in:      "pkg>=1.0.0.post1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, req.Name)
			assert.Equal(t, tt.wantExtras, req.Extras)
			assert.Equal(t, tt.wantSpec, req.Specifier.String())
			assert.Equal(t, tt.wantURL, req.URL)
			assert.Equal(t, tt.wantMarker, req.Marker)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "requests>=2.28,<3", want: "requests>=2.28,<3"},
		{name: "post-name space preserved", in: "requests >=2.28", want: "requests >=2.28"},
		{name: "extras sorted", in: "pkg[two,one]>=1.0", want: "pkg[one,two]>=1.0"},
		{name: "marker reattached", in: `tomli>=1.1; python_version < "3.11"`, want: `tomli>=1.1; python_version < "3.11"`},
		{name: "url pin", in: "mypkg @ https://example.com/a.tar.gz", want: "mypkg @ https://example.com/a.tar.gz"},
		{name: "bounds reordered lower first", in: "pkg<2,>=1.0", want: "pkg>=1.0,<2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.String())
		})
	}
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "my-package", CanonicalName("My_Package"))
	assert.Equal(t, "my-package", CanonicalName("my.package"))
	assert.Equal(t, "my-package", CanonicalName("MY--PACKAGE"))
	assert.Equal(t, "requests", CanonicalName("requests"))
}

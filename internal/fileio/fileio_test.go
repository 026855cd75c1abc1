package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/cicd/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUpdateFile(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		pattern     string
		replacement string
		want        string
	}{
		{
			name:        "version line rewritten",
			file:        "__init__.py",
			content:     "\"\"\"pkg\"\"\"\n__version__ = \"1.0.0\"\n",
			pattern:     `__version__ *= *(?:'|").*(?:'|")`,
			replacement: `__version__ = "2.0.0"`,
			want:        "\"\"\"pkg\"\"\"\n__version__ = \"2.0.0\"\n",
		},
		{
			name:        "untouched lines preserved",
			file:        "config.txt",
			content:     "a = 1\nb = 2\nc = 3\n",
			pattern:     `b = \d`,
			replacement: "b = 9",
			want:        "a = 1\nb = 9\nc = 3\n",
		},
		{
			name:        "trailing whitespace trimmed outside markdown",
			file:        "code.py",
			content:     "x = 1   \n",
			pattern:     `^$a`, // matches nothing
			replacement: "",
			want:        "x = 1\n",
		},
		{
			name:        "markdown keeps trailing spaces",
			file:        "README.md",
			content:     "line with break  \nnext\n",
			pattern:     `^$a`,
			replacement: "",
			want:        "line with break  \nnext\n",
		},
		{
			name:        "trailing newline normalized",
			file:        "code.py",
			content:     "x = 1",
			pattern:     `^$a`,
			replacement: "",
			want:        "x = 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			require.NoError(t, UpdateFile(path, tt.pattern, tt.replacement))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestUpdateFileBadPattern(t *testing.T) {
	path := writeFile(t, t.TempDir(), "f.txt", "content\n")
	err := UpdateFile(path, `([unclosed`, "x")
	assert.ErrorIs(t, err, types.ErrInputParse)
}

func TestUpdateFileMissingFile(t *testing.T) {
	err := UpdateFile(filepath.Join(t.TempDir(), "absent.txt"), `a`, "b")
	assert.Error(t, err)
}

func TestWriteFileIfChanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")

	changed, err := WriteFileIfChanged(path, []byte("hello\n"))
	require.NoError(t, err)
	assert.True(t, changed, "first write creates the file")

	changed, err = WriteFileIfChanged(path, []byte("hello\n"))
	require.NoError(t, err)
	assert.False(t, changed, "identical content is not rewritten")

	changed, err = WriteFileIfChanged(path, []byte("other\n"))
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "other\n", string(got))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	require.NoError(t, WriteFileAtomic(path, []byte("v1\n")))
	require.NoError(t, WriteFileAtomic(path, []byte("v2\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2\n", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

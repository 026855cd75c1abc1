package docsindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/cicd/pkg/types"
)

func setupRepo(t *testing.T, readme string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte(readme), 0o644))
	return root
}

func TestCreateStripsDocsFolderLinks(t *testing.T) {
	root := setupRepo(t, "# Project\n\nSee [the guide](docs/guide.md).\n")

	require.NoError(t, Create(Options{RootRepoPath: root, DocsFolder: "docs"}))

	data, err := os.ReadFile(filepath.Join(root, "docs", "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Project\n\nSee [the guide](guide.md).\n", string(data))
}

func TestCreateAppliesUserReplacements(t *testing.T) {
	root := setupRepo(t, "[LICENSE](LICENSE) and docs/extra\n")

	err := Create(Options{
		RootRepoPath: root,
		DocsFolder:   "docs",
		Replacements: []string{"(LICENSE),(LICENSE.md)"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "docs", "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "[LICENSE](LICENSE.md) and extra\n", string(data))
}

func TestCreateCustomSeparator(t *testing.T) {
	root := setupRepo(t, "value a,b here\n")

	err := Create(Options{
		RootRepoPath: root,
		DocsFolder:   "docs",
		Replacements: []string{"a,b|x,y"},
		Separator:    "|",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "docs", "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "value x,y here\n", string(data))
}

func TestCreateRejectsMalformedReplacement(t *testing.T) {
	root := setupRepo(t, "content\n")

	err := Create(Options{
		RootRepoPath: root,
		DocsFolder:   "docs",
		Replacements: []string{"a,b,c"},
	})
	assert.ErrorIs(t, err, types.ErrInput)
}

func TestCreateMissingReadme(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))

	err := Create(Options{RootRepoPath: root, DocsFolder: "docs"})
	require.Error(t, err)
}

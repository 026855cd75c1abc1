package gitutil

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invoked command lines and plays back canned output.
type fakeRunner struct {
	calls  []string
	output map[string]string
	err    error
}

func (f *fakeRunner) run(_ context.Context, _ string, name string, args ...string) (string, error) {
	line := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, line)
	if f.err != nil {
		return "", f.err
	}
	return f.output[line], nil
}

func TestRoot(t *testing.T) {
	f := &fakeRunner{output: map[string]string{
		"git rev-parse --show-toplevel": "/work/repo\n",
	}}
	g := NewWithRunner("/work/repo/src", f.run)

	root, err := g.Root(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/work/repo", root)
}

func TestPorcelain(t *testing.T) {
	f := &fakeRunner{output: map[string]string{
		"git status --porcelain docs": " M docs/index.md\n?? docs/api/.pages",
	}}
	g := NewWithRunner("/repo", f.run)

	lines, err := g.Porcelain(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{" M docs/index.md", "?? docs/api/.pages"}, lines)

	changed, err := g.HasChanges(context.Background(), "docs")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestHasChangesCleanTree(t *testing.T) {
	f := &fakeRunner{output: map[string]string{}}
	g := NewWithRunner("/repo", f.run)

	changed, err := g.HasChanges(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCommitMultipleMessages(t *testing.T) {
	f := &fakeRunner{output: map[string]string{}}
	g := NewWithRunner("/repo", f.run)

	require.NoError(t, g.Commit(context.Background(), "Release v1.2.0", "[skip ci]"))
	require.Len(t, f.calls, 1)
	assert.Equal(t, "git commit -m Release v1.2.0 -m [skip ci]", f.calls[0])
}

func TestConfigUser(t *testing.T) {
	f := &fakeRunner{output: map[string]string{}}
	g := NewWithRunner("/repo", f.run)

	require.NoError(t, g.ConfigUser(context.Background(), "Release Bot", "bot@example.com"))
	assert.Equal(t, []string{
		"git config --global user.name Release Bot",
		"git config --global user.email bot@example.com",
	}, f.calls)
}

func TestPushForce(t *testing.T) {
	f := &fakeRunner{output: map[string]string{}}
	g := NewWithRunner("/repo", f.run)

	require.NoError(t, g.Push(context.Background(), "origin", "main", false))
	require.NoError(t, g.Push(context.Background(), "origin", "v1.2.0", true))
	assert.Equal(t, []string{
		"git push origin main",
		"git push origin v1.2.0 --force",
	}, f.calls)
}

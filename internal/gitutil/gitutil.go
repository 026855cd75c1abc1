// Package gitutil wraps the git operations the release pipeline and the
// documentation generators need: working-tree status, identity setup,
// staging, committing and pushing.
package gitutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukaforge/cicd/internal/shell"
)

// Git runs git commands rooted at Dir.
type Git struct {
	dir string
	run shell.Runner
}

// New returns a Git for the repository at dir.
func New(dir string) *Git {
	return &Git{dir: dir, run: shell.Default}
}

// NewWithRunner is for tests.
func NewWithRunner(dir string, run shell.Runner) *Git {
	return &Git{dir: dir, run: run}
}

// Root returns the top-level directory of the repository containing dir.
func (g *Git) Root(ctx context.Context) (string, error) {
	out, err := g.run(ctx, g.dir, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("finding repository root: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Porcelain returns the porcelain status lines for the given paths, or for
// the whole tree when no paths are given.
func (g *Git) Porcelain(ctx context.Context, paths ...string) ([]string, error) {
	args := append([]string{"status", "--porcelain"}, paths...)
	out, err := g.run(ctx, g.dir, "git", args...)
	if err != nil {
		return nil, fmt.Errorf("checking working tree status: %w", err)
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// HasChanges reports whether any of the given paths have uncommitted
// changes.
func (g *Git) HasChanges(ctx context.Context, paths ...string) (bool, error) {
	lines, err := g.Porcelain(ctx, paths...)
	if err != nil {
		return false, err
	}
	return len(lines) > 0, nil
}

// ConfigUser sets the commit identity for the workflow runner.
func (g *Git) ConfigUser(ctx context.Context, name, email string) error {
	if _, err := g.run(ctx, g.dir, "git", "config", "--global", "user.name", name); err != nil {
		return fmt.Errorf("setting git user name: %w", err)
	}
	if _, err := g.run(ctx, g.dir, "git", "config", "--global", "user.email", email); err != nil {
		return fmt.Errorf("setting git user email: %w", err)
	}
	return nil
}

// Add stages the given paths.
func (g *Git) Add(ctx context.Context, paths ...string) error {
	args := append([]string{"add"}, paths...)
	if _, err := g.run(ctx, g.dir, "git", args...); err != nil {
		return fmt.Errorf("staging changes: %w", err)
	}
	return nil
}

// Commit records the staged changes with the given message lines.
func (g *Git) Commit(ctx context.Context, messages ...string) error {
	args := []string{"commit"}
	for _, m := range messages {
		args = append(args, "-m", m)
	}
	if _, err := g.run(ctx, g.dir, "git", args...); err != nil {
		return fmt.Errorf("committing changes: %w", err)
	}
	return nil
}

// Push pushes the given refspec to the remote.
func (g *Git) Push(ctx context.Context, remote, refspec string, force bool) error {
	args := []string{"push", remote, refspec}
	if force {
		args = append(args, "--force")
	}
	if _, err := g.run(ctx, g.dir, "git", args...); err != nil {
		return fmt.Errorf("pushing %s to %s: %w", refspec, remote, err)
	}
	return nil
}

// Fetch updates the given remote refs. Used before deploying versioned
// documentation so the publish branch is current.
func (g *Git) Fetch(ctx context.Context, remote string, refspecs ...string) error {
	args := append([]string{"fetch", remote}, refspecs...)
	if _, err := g.run(ctx, g.dir, "git", args...); err != nil {
		return fmt.Errorf("fetching from %s: %w", remote, err)
	}
	return nil
}

// Shared helpers for cicd CLI commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dukaforge/cicd/internal/console"
	"github.com/dukaforge/cicd/internal/gitutil"
	"github.com/dukaforge/cicd/internal/store"
	"github.com/dukaforge/cicd/pkg/types"
)

// changedStatusRe matches porcelain status lines for changed, added,
// renamed, copied or deleted files.
var changedStatusRe = regexp.MustCompile(`^[? MARC][?MD]`)

// exitErr prints the error and exits, mapping input errors to the user exit
// code and everything else to the system exit code.
func exitErr(err error) {
	console.Error("%v", err)
	if errors.Is(err, types.ErrInput) || errors.Is(err, types.ErrInputParse) {
		os.Exit(exitUserError)
	}
	os.Exit(exitSysError)
}

// resolveRoot returns the absolute repository root, the flag taking
// precedence over the root_repo_path configuration value. With preCommit set
// and the root at its "." default, git locates the root, so hooks work from
// any subdirectory.
func resolveRoot(ctx context.Context, preCommit bool) (string, error) {
	root := flagRootRepoPath
	if root == "" {
		root = cfg.RootRepoPath
	}
	if root == "" {
		root = "."
	}
	if preCommit && root == "." {
		gitRoot, err := gitutil.New(".").Root(ctx)
		if err != nil {
			return "", err
		}
		root = gitRoot
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving repository root: %w", err)
	}
	return abs, nil
}

// openStore opens the local store at the resolved store directory.
func openStore() (*store.Store, error) {
	dir, err := resolveStoreDir()
	if err != nil {
		return nil, err
	}
	return store.Open(dir)
}

// checkUnstagedChanges exits with a user error when the generated path has
// uncommitted changes, listing them with a staging hint. Used by the
// pre-commit mode of the documentation commands.
func checkUnstagedChanges(ctx context.Context, root, relPath, what string) {
	lines, err := gitutil.New(root).Porcelain(ctx, relPath)
	if err != nil {
		exitErr(err)
	}

	var changed []string
	for _, line := range lines {
		if changedStatusRe.MatchString(line) {
			changed = append(changed, line)
		}
	}
	if len(changed) > 0 {
		fmt.Fprintf(console.ErrOut,
			"%s The following files have been changed/added/removed:\n\n%s\n\nPlease stage them:\n\n  git add %s\n",
			console.CurlyLoop, strings.Join(changed, "\n"), relPath)
		os.Exit(exitUserError)
	}
	console.OK("No changes - your %s is up-to-date !", what)
}

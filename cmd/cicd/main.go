// Package main provides the cicd CLI: repository automation tasks for
// Python package repositories (version bumps, dependency updates,
// documentation generation) and the two workflow entry points (release,
// activate-auto-merge).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}

// Package fileio provides the file rewriting helpers shared by the cicd
// commands: regex line rewrites, write-if-changed, and atomic writes.
package fileio

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dukaforge/cicd/pkg/types"
)

// UpdateFile reads the file, applies the pattern/replacement pair to every
// line, and writes the result back. Trailing whitespace is trimmed from each
// line, except in markdown files where intra-line trailing spaces are
// significant. The output always ends with a single newline.
//
// The replacement string may use Go regexp group references ($1, ${name}).
func UpdateFile(path, pattern, replacement string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("pattern %q: %v: %w", pattern, err, types.ErrInputParse)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	keepTrailingSpace := filepath.Ext(path) == ".md"

	content := strings.TrimSuffix(string(raw), "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !keepTrailingSpace {
			line = strings.TrimRight(line, " \t\r")
		} else {
			line = strings.TrimSuffix(line, "\r")
		}
		lines[i] = re.ReplaceAllString(line, replacement)
	}

	return WriteFileAtomic(path, []byte(strings.Join(lines, "\n")+"\n"))
}

// WriteFileIfChanged writes content to path unless the file already holds
// exactly that content. It reports whether the file was written, so callers
// can keep mtimes stable for pre-commit runs.
func WriteFileIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == string(content) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := WriteFileAtomic(path, content); err != nil {
		return false, err
	}
	return true, nil
}

// WriteFileAtomic writes content using the temp-file, fsync, rename pattern
// so a crash never leaves a half-written file behind.
func WriteFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".cicd-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// Package docsindex builds the documentation landing page from the
// repository README, applying text replacements so relative links keep
// working once the page lives under the docs folder.
package docsindex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukaforge/cicd/internal/fileio"
	"github.com/dukaforge/cicd/pkg/types"
)

// DefaultSeparator splits a replacement's old and new parts.
const DefaultSeparator = ","

// SourceFile is the landing page source at the repository root.
const SourceFile = "README.md"

// Options configures a landing page build. RootRepoPath must be absolute.
type Options struct {
	RootRepoPath string
	DocsFolder   string
	Replacements []string
	Separator    string
}

// IndexPath returns the generated landing page path.
func (o Options) IndexPath() string {
	return filepath.Join(o.RootRepoPath, o.DocsFolder, "index.md")
}

// Create writes the landing page. The replacement list always ends with
// dropping the "<docs folder>/" prefix from links.
func Create(opts Options) error {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	replacements := append(append([]string{}, opts.Replacements...),
		filepath.Base(opts.DocsFolder)+"/"+opts.Separator)

	readme := filepath.Join(opts.RootRepoPath, SourceFile)
	data, err := os.ReadFile(readme)
	if err != nil {
		return fmt.Errorf("reading %s: %w", SourceFile, err)
	}
	content := string(data)

	for _, mapping := range replacements {
		parts := strings.Split(mapping, opts.Separator)
		if len(parts) != 2 {
			return fmt.Errorf(
				"replacement %q must have exactly an old and a new part when split by %q: %w",
				mapping, opts.Separator, types.ErrInput)
		}
		content = strings.ReplaceAll(content, parts[0], parts[1])
	}

	return fileio.WriteFileAtomic(opts.IndexPath(), []byte(content))
}

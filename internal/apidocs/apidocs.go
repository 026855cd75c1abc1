// Package apidocs generates the Python API reference tree for MkDocs with
// mkdocstrings: a .pages navigation file per directory and one markdown stub
// per module. Files are only rewritten when their content changed so
// repeated runs keep a clean working tree.
package apidocs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dukaforge/cicd/internal/fileio"
	"github.com/dukaforge/cicd/internal/logging"
	"github.com/dukaforge/cicd/pkg/types"
)

// SubDir is the generated directory under the documentation root.
const SubDir = "api_reference"

// Defaults applied when the caller supplies no exclusions.
var (
	DefaultUnwantedFolders = []string{"__pycache__"}
	DefaultUnwantedFiles   = []string{"__init__.py"}
)

const (
	pagesTemplate        = "title: \"%s\"\n"
	mdTemplate           = "# %s\n\n::: %s\n"
	optionsHeader        = "    options:\n"
	noDocstringAddition  = optionsHeader + "      show_if_no_docstring: true\n"
	specialOptionIndent  = "      "
	specialOptionMaxCuts = 2
)

// Options configures a generation run. RootRepoPath must be absolute.
type Options struct {
	RootRepoPath    string
	DocsFolder      string
	PackageDirs     []string
	PreClean        bool
	UnwantedFolders []string
	UnwantedFiles   []string
	FullDocsFolders []string
	FullDocsFiles   []string
	SpecialOptions  []string
	Relative        bool
}

// TargetDir returns the api_reference directory for the given options.
func (o Options) TargetDir() string {
	return filepath.Join(o.RootRepoPath, o.DocsFolder, SubDir)
}

// parseSpecialOptions splits "relative/path.py,mkdocstrings option" entries,
// accumulating options per file.
func parseSpecialOptions(entries []string) (map[string][]string, error) {
	parsed := make(map[string][]string)
	for _, entry := range entries {
		parts := strings.SplitN(entry, ",", specialOptionMaxCuts)
		if len(parts) != 2 || strings.Contains(parts[1], ",") {
			return nil, fmt.Errorf(
				"special option %q must contain exactly one comma separating the file path and the option: %w",
				entry, types.ErrInput)
		}
		parsed[parts[0]] = append(parsed[parts[0]], parts[1])
	}
	return parsed, nil
}

// Generate writes the API reference tree and returns it.
func Generate(opts Options) error {
	if len(opts.PackageDirs) == 0 {
		return fmt.Errorf("at least one package dir is required: %w", types.ErrInput)
	}
	if len(opts.UnwantedFolders) == 0 {
		opts.UnwantedFolders = DefaultUnwantedFolders
	}
	if len(opts.UnwantedFiles) == 0 {
		opts.UnwantedFiles = DefaultUnwantedFiles
	}
	for _, name := range append(append([]string{}, opts.UnwantedFolders...), opts.UnwantedFiles...) {
		if strings.Contains(name, "/") {
			return fmt.Errorf("unwanted folders and files are names, not paths, got %q: %w",
				name, types.ErrInput)
		}
	}

	specialOptions, err := parseSpecialOptions(opts.SpecialOptions)
	if err != nil {
		return err
	}

	targetDir := opts.TargetDir()
	if opts.PreClean {
		logging.Debug("removing %s", targetDir)
		if err := os.RemoveAll(targetDir); err != nil {
			return fmt.Errorf("removing %s: %w", targetDir, err)
		}
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", targetDir, err)
	}
	if _, err := fileio.WriteFileIfChanged(
		filepath.Join(targetDir, ".pages"),
		[]byte(fmt.Sprintf(pagesTemplate, "API Reference"))); err != nil {
		return err
	}

	gen := &generator{
		opts:           opts,
		targetDir:      targetDir,
		specialOptions: specialOptions,
		singlePackage:  len(opts.PackageDirs) == 1,
	}
	for _, pkg := range opts.PackageDirs {
		abs := filepath.Join(opts.RootRepoPath, pkg)
		if err := gen.walkPackage(abs, abs); err != nil {
			return err
		}
	}
	return nil
}

type generator struct {
	opts           Options
	targetDir      string
	specialOptions map[string][]string
	singlePackage  bool
}

// walkPackage descends top-down through pkg. Directories without an
// __init__.py produce no docs themselves but are still descended, matching
// namespace-package layouts.
func (g *generator) walkPackage(pkg, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	var subdirs []string
	var files []string
	hasInit := false
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if !contains(g.opts.UnwantedFolders, name) {
				subdirs = append(subdirs, name)
			}
			continue
		}
		if name == "__init__.py" {
			hasInit = true
		}
		files = append(files, name)
	}

	if hasInit {
		if err := g.emitDir(pkg, dir, files); err != nil {
			return err
		}
	} else {
		logging.Debug("skipping %s: no __init__.py", dir)
	}

	for _, sub := range subdirs {
		if err := g.walkPackage(pkg, filepath.Join(dir, sub)); err != nil {
			return err
		}
	}
	return nil
}

// relPath returns dir relative to the package for single-package runs, or
// relative to the package parent otherwise. Multi-package trees keep the
// package name as the first navigation level.
func (g *generator) relPath(pkg, dir string) (string, error) {
	base := pkg
	if !g.singlePackage {
		base = filepath.Dir(pkg)
	}
	rel, err := filepath.Rel(base, dir)
	if err != nil {
		return "", fmt.Errorf("computing doc path for %s: %w", dir, err)
	}
	return filepath.ToSlash(rel), nil
}

func (g *generator) emitDir(pkg, dir string, files []string) error {
	rel, err := g.relPath(pkg, dir)
	if err != nil {
		return err
	}

	docsSubDir := filepath.Join(g.targetDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(docsSubDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", docsSubDir, err)
	}
	if rel != "." {
		if _, err := fileio.WriteFileIfChanged(
			filepath.Join(docsSubDir, ".pages"),
			[]byte(fmt.Sprintf(pagesTemplate, path.Base(rel)))); err != nil {
			return err
		}
	}

	for _, name := range files {
		if !strings.HasSuffix(name, ".py") || contains(g.opts.UnwantedFiles, name) {
			logging.Debug("skipping %s: not a documented Python module", name)
			continue
		}
		if err := g.emitModule(pkg, rel, docsSubDir, name); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) emitModule(pkg, rel, docsSubDir, name string) error {
	stem := strings.TrimSuffix(name, ".py")
	pkgName := filepath.Base(pkg)

	pyPathRoot := pkgName
	if g.opts.Relative {
		relPkg, err := filepath.Rel(g.opts.RootRepoPath, pkg)
		if err != nil {
			return fmt.Errorf("computing import path for %s: %w", pkg, err)
		}
		pyPathRoot = filepath.ToSlash(relPkg)
	}

	var pyPath string
	if rel == "." || (!g.singlePackage && rel == pkgName) {
		pyPath = pyPathRoot + "/" + stem
	} else {
		sub := rel
		if !g.singlePackage {
			sub = strings.TrimPrefix(rel, pkgName+"/")
		}
		pyPath = pyPathRoot + "/" + sub + "/" + stem
	}
	pyPath = strings.ReplaceAll(pyPath, "/", ".")

	relFilePath := name
	if rel != "." {
		relFilePath = path.Join(rel, name)
	}

	content := fmt.Sprintf(mdTemplate, stem, pyPath)
	if contains(g.opts.FullDocsFiles, relFilePath) || contains(g.opts.FullDocsFolders, rel) {
		content += noDocstringAddition
	}
	if options, ok := g.specialOptions[relFilePath]; ok {
		if !strings.Contains(content, optionsHeader) {
			content += optionsHeader
		}
		for _, option := range options {
			content += specialOptionIndent + option + "\n"
		}
	}

	_, err := fileio.WriteFileIfChanged(filepath.Join(docsSubDir, stem+".md"), []byte(content))
	return err
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

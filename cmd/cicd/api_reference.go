// Create-api-reference-docs command generates the mkdocstrings tree.
package main

import (
	"path"

	"github.com/spf13/cobra"

	"github.com/dukaforge/cicd/internal/apidocs"
)

var (
	apiRefPackageDirs     []string
	apiRefPreClean        bool
	apiRefPreCommit       bool
	apiRefDocsFolder      string
	apiRefUnwantedFolders []string
	apiRefUnwantedFiles   []string
	apiRefFullDocsFolders []string
	apiRefFullDocsFiles   []string
	apiRefSpecialOptions  []string
	apiRefRelative        bool
)

var apiReferenceCmd = &cobra.Command{
	Use:   "create-api-reference-docs",
	Short: "Create the Python API reference for MkDocs",
	Long: `Create-api-reference-docs walks the given package dirs and writes a
mkdocstrings-compatible tree under '<docs-folder>/api_reference': a .pages
navigation file per directory and one markdown stub per Python module.

Example:
  cicd create-api-reference-docs --package-dir src/my_package --pre-clean`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(cmd.Context(), apiRefPreCommit)
		if err != nil {
			exitErr(err)
		}
		if !cmd.Flags().Changed("docs-folder") && cfg.DocsFolder != "" {
			apiRefDocsFolder = cfg.DocsFolder
		}

		opts := apidocs.Options{
			RootRepoPath:    root,
			DocsFolder:      apiRefDocsFolder,
			PackageDirs:     apiRefPackageDirs,
			PreClean:        apiRefPreClean,
			UnwantedFolders: apiRefUnwantedFolders,
			UnwantedFiles:   apiRefUnwantedFiles,
			FullDocsFolders: apiRefFullDocsFolders,
			FullDocsFiles:   apiRefFullDocsFiles,
			SpecialOptions:  apiRefSpecialOptions,
			Relative:        apiRefRelative,
		}
		if err := apidocs.Generate(opts); err != nil {
			exitErr(err)
		}

		if apiRefPreCommit {
			checkUnstagedChanges(cmd.Context(), root,
				path.Join(apiRefDocsFolder, apidocs.SubDir), "API reference documentation")
		}
		return nil
	},
}

func init() {
	apiReferenceCmd.Flags().StringArrayVar(&apiRefPackageDirs, "package-dir", nil, "relative path to a package dir from the repository root; repeatable")
	apiReferenceCmd.Flags().BoolVar(&apiRefPreClean, "pre-clean", false, "remove the 'api_reference' sub directory prior to (re)creation")
	apiReferenceCmd.Flags().BoolVar(&apiRefPreCommit, "pre-commit", false, "run as a pre-commit hook; non-zero exit if changes were made")
	apiReferenceCmd.Flags().StringVar(&apiRefDocsFolder, "docs-folder", "docs", "folder name for the documentation root folder")
	apiReferenceCmd.Flags().StringArrayVar(&apiRefUnwantedFolders, "unwanted-folder", nil, "folder name to exclude from the API reference; repeatable (default __pycache__)")
	apiReferenceCmd.Flags().StringArrayVar(&apiRefUnwantedFiles, "unwanted-file", nil, "file name to exclude from the API reference; repeatable (default __init__.py)")
	apiReferenceCmd.Flags().StringArrayVar(&apiRefFullDocsFolders, "full-docs-folder", nil, "folder in which to include everything, even without docstrings; repeatable")
	apiReferenceCmd.Flags().StringArrayVar(&apiRefFullDocsFiles, "full-docs-file", nil, "relative file path in which to include everything, even without docstrings; repeatable")
	apiReferenceCmd.Flags().StringArrayVar(&apiRefSpecialOptions, "special-option", nil, "comma-separated relative file path and mkdocstrings option to add for it; repeatable, accumulated per file")
	apiReferenceCmd.Flags().BoolVar(&apiRefRelative, "relative", false, "use relative Python import links in the API reference markdown files")
	_ = apiReferenceCmd.MarkFlagRequired("package-dir")
}

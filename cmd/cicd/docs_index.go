// Create-docs-index command builds the documentation landing page.
package main

import (
	"path"

	"github.com/spf13/cobra"

	"github.com/dukaforge/cicd/internal/docsindex"
)

var (
	docsIndexPreCommit    bool
	docsIndexDocsFolder   string
	docsIndexReplacements []string
	docsIndexSeparator    string
)

var docsIndexCmd = &cobra.Command{
	Use:   "create-docs-index",
	Short: "Create the documentation landing page from README.md",
	Long: `Create-docs-index copies README.md to '<docs-folder>/index.md',
applying 'old,new' replacements on the way. Dropping the '<docs-folder>/'
link prefix is always the last replacement, so relative links keep working.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(cmd.Context(), docsIndexPreCommit)
		if err != nil {
			exitErr(err)
		}
		if !cmd.Flags().Changed("docs-folder") && cfg.DocsFolder != "" {
			docsIndexDocsFolder = cfg.DocsFolder
		}

		err = docsindex.Create(docsindex.Options{
			RootRepoPath: root,
			DocsFolder:   docsIndexDocsFolder,
			Replacements: docsIndexReplacements,
			Separator:    docsIndexSeparator,
		})
		if err != nil {
			exitErr(err)
		}

		if docsIndexPreCommit {
			checkUnstagedChanges(cmd.Context(), root,
				path.Join(docsIndexDocsFolder, "index.md"), "landing page")
		}
		return nil
	},
}

func init() {
	docsIndexCmd.Flags().BoolVar(&docsIndexPreCommit, "pre-commit", false, "run as a pre-commit hook; non-zero exit if changes were made")
	docsIndexCmd.Flags().StringVar(&docsIndexDocsFolder, "docs-folder", "docs", "folder name for the documentation root folder")
	docsIndexCmd.Flags().StringArrayVar(&docsIndexReplacements, "replacement", nil, "'old,new' mapping applied to README.md when creating index.md; repeatable")
	docsIndexCmd.Flags().StringVar(&docsIndexSeparator, "replacement-separator", docsindex.DefaultSeparator, "string separating a replacement's old and new parts")
}

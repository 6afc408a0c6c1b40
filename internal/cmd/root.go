// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the mkdist command. The root command runs a build;
// version is its only subcommand.
func NewRootCmd() *cobra.Command {
	var flags BuildFlags

	rootCmd := &cobra.Command{
		Use:   "mkdist [rootDir]",
		Short: "File-to-file transformer for library sources",
		Long: `mkdist transforms every file under the source directory into the dist
directory, one output per input. Scripts are transpiled, stylesheets are
compiled, components are split into blocks and relative imports are
rewritten to the emitted extensions.

Arguments:
  rootDir    Project directory (default: current directory)

Examples:
  # Build src/ into dist/ as ES modules
  mkdist

  # Build CommonJS with declarations
  mkdist ./packages/ui --format=cjs -d

  # Only TypeScript sources, excluding tests
  mkdist --pattern='**/*.ts' --pattern='!**/*.test.ts'

  # Print a machine-readable report
  mkdist --report json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			return runBuild(c, args, &flags)
		},
	}

	flags.AddTo(rootCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opmodel/mkdist/internal/output"
	"github.com/opmodel/mkdist/internal/version"
)

// toolProbeTimeout bounds each `<tool> --version` call.
const toolProbeTimeout = 10 * time.Second

// externalTools are the compilers mkdist drives as child processes.
var externalTools = []string{"tsc", "vue-tsc", "sass"}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var rootFlag string

	c := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show mkdist version information.

Displays:
  - mkdist version, commit, and build date
  - esbuild version (embedded in mkdist)
  - tsc, vue-tsc and sass installations found for the project`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runVersion(c, rootFlag)
		},
	}

	c.Flags().StringVar(&rootFlag, "root", ".", "Project directory searched for node_modules/.bin")
	return c
}

func runVersion(cmd *cobra.Command, rootDir string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, version.Get().String())
	fmt.Fprintln(out)

	tbl := output.NewToolTable(rootDir)
	for _, tool := range detectTools(ctx, rootDir) {
		v := tool.Version
		if v == "" {
			v = tool.Message
		}
		tbl.Add(output.ToolRow{Name: tool.Name, Version: v, Path: tool.Path, Found: tool.Found})
	}
	fmt.Fprintln(out, tbl.String())
	return nil
}

func detectTools(ctx context.Context, rootDir string) []version.ToolInfo {
	tools := make([]version.ToolInfo, 0, len(externalTools))
	for _, name := range externalTools {
		probeCtx, cancel := context.WithTimeout(ctx, toolProbeTimeout)
		tools = append(tools, version.DetectTool(probeCtx, name, "", rootDir))
		cancel()
	}
	return tools
}

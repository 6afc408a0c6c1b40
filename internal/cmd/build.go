package cmd

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/mkdist/internal/build"
	"github.com/opmodel/mkdist/internal/config"
	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/output"
)

// runBuild resolves configuration for the root directory and runs a build.
func runBuild(cmd *cobra.Command, args []string, flags *BuildFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reportFormat := output.ParseReportFormat(flags.Report)
	if !reportFormat.IsValid() {
		return &oerrors.ExitError{
			Code: oerrors.ExitConfigError,
			Err:  fmt.Errorf("invalid report format %q (valid: %s)", flags.Report, strings.Join(output.ValidReportFormats(), ", ")),
		}
	}

	// Logging is set up from flags first so that config loading can log,
	// and again once log.timestamps is resolved.
	logCfg := output.LogConfig{Verbose: flags.Verbose}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(flags.Timestamps)
	}
	output.SetupLogging(logCfg)

	rootDir, err := config.ExpandPath(rootDirFromArgs(args))
	if err != nil {
		return fmt.Errorf("expanding root directory: %w", err)
	}
	rootDir, err = filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("resolving root directory: %w", err)
	}

	cfg, err := loadConfig(cmd, rootDir, flags)
	if err != nil {
		return err
	}
	output.SetupLogging(output.LogConfig{Verbose: flags.Verbose, Timestamps: cfg.Log.Timestamps})

	if err := config.Validate(cfg, rootDir); err != nil {
		return err
	}

	opts := cfg.BuildOptions(rootDir)

	var result *build.Result
	err = output.RunWithSpinner(ctx, func(ctx context.Context) error {
		var runErr error
		result, runErr = build.Run(ctx, opts)
		return runErr
	}, output.WithTitle("Building "+cfg.SrcDir), output.WithSpinner(!flags.Verbose))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reportFormat != output.ReportNone {
		if err := output.WriteReport(out, reportFormat, newReport(rootDir, cfg.DistDir, result)); err != nil {
			return err
		}
	} else {
		if flags.Verbose {
			fmt.Fprintln(out, output.RenderFileTree(cfg.DistDir, writtenTree(rootDir, cfg.DistDir, result)))
			for _, p := range result.Skipped {
				fmt.Fprintln(out, output.FormatFileLine(path.Join(cfg.DistDir, p), output.StatusSkipped))
			}
		}
		fmt.Fprintln(out, output.FormatSummary(len(result.WrittenFiles), cfg.DistDir, len(result.Errors)))
	}

	if result.HasErrors() {
		printFileErrors(cmd.ErrOrStderr(), rootDir, result.Errors)
		return &oerrors.ExitError{
			Code:    oerrors.ExitGeneralError,
			Err:     fmt.Errorf("%d file(s) failed to build", len(result.Errors)),
			Printed: true,
		}
	}
	return nil
}

// loadConfig reads .env, the config file and the environment, and merges
// them with the flag layer.
func loadConfig(cmd *cobra.Command, rootDir string, flags *BuildFlags) (*config.Config, error) {
	loader := config.NewLoader()
	if err := loader.LoadDotenv(rootDir); err != nil {
		output.Warn("could not load environment file", "error", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = config.FindConfigFile(rootDir)
	}
	fileCfg, err := loader.LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	envCfg, err := loader.LoadEnv()
	if err != nil {
		return nil, err
	}

	cfg, values := config.ResolveAll(config.Layers{
		Flags: flags.Layer(cmd),
		Env:   envCfg,
		File:  fileCfg,
	})
	config.LogResolvedValues(values)
	return cfg, nil
}

func newReport(rootDir, distDir string, result *build.Result) output.Report {
	r := output.Report{
		RootDir:      rootDir,
		DistDir:      distDir,
		WrittenFiles: make([]string, 0, len(result.WrittenFiles)),
		Skipped:      result.Skipped,
	}
	for _, f := range result.WrittenFiles {
		r.WrittenFiles = append(r.WrittenFiles, relTo(rootDir, f))
	}
	for _, fe := range result.Errors {
		re := output.ReportError{Filename: relTo(rootDir, fe.Filename)}
		for _, err := range fe.Errors {
			re.Errors = append(re.Errors, err.Error())
		}
		r.Errors = append(r.Errors, re)
	}
	return r
}

// writtenTree maps written files relative to the dist directory.
func writtenTree(rootDir, distDir string, result *build.Result) map[string]string {
	dist, err := config.ResolvePath(rootDir, distDir)
	if err != nil {
		dist = filepath.Join(rootDir, distDir)
	}
	files := make(map[string]string, len(result.WrittenFiles))
	for _, f := range result.WrittenFiles {
		files[relTo(dist, f)] = ""
	}
	return files
}

func printFileErrors(w io.Writer, rootDir string, errs []build.FileError) {
	for _, fe := range errs {
		fmt.Fprintln(w, output.FormatFileLine(relTo(rootDir, fe.Filename), output.StatusFailed))
		for _, err := range fe.Errors {
			fmt.Fprintf(w, "  %s\n", err)
		}
	}
}

func relTo(base, p string) string {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

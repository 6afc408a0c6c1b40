package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/mkdist/internal/config"
)

// BuildFlags holds the flags of the build command.
type BuildFlags struct {
	Src            string
	Dist           string
	Patterns       []string
	Format         string
	Ext            string
	Declaration    bool
	DeclarationExt string
	DeclarationMap bool
	NoClean        bool
	Loaders        []string
	Minify         bool
	Sourcemap      bool
	Concurrency    int

	Config     string
	Report     string
	Verbose    bool
	Timestamps bool
}

// AddTo registers the build flags on the given cobra command.
func (f *BuildFlags) AddTo(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.Src, "src", "", "Source directory relative to rootDir (default: src)")
	fs.StringVar(&f.Dist, "dist", "", "Output directory relative to rootDir (default: dist)")
	fs.StringSliceVar(&f.Patterns, "pattern", nil,
		"Glob pattern of files to include, prefix with ! to exclude (can be repeated)")
	fs.StringVar(&f.Format, "format", "", "Module format: esm, cjs (default: esm)")
	fs.StringVar(&f.Ext, "ext", "", "Output extension for scripts, e.g. mjs or js")
	fs.BoolVarP(&f.Declaration, "declaration", "d", false, "Generate type declarations")
	fs.StringVar(&f.DeclarationExt, "declaration-ext", "",
		"Declaration extension: infer, .d.ts, .d.mts, .d.cts (default: infer)")
	fs.BoolVar(&f.DeclarationMap, "declaration-map", false, "Emit source maps for declarations")
	fs.BoolVar(&f.NoClean, "no-clean", false, "Keep existing files in the dist directory")
	fs.StringSliceVar(&f.Loaders, "loaders", nil, "Ordered transform units (default: js,vue,sass,postcss)")
	fs.BoolVar(&f.Minify, "minify", false, "Minify scripts")
	fs.BoolVar(&f.Sourcemap, "sourcemap", false, "Emit script source maps")
	fs.IntVar(&f.Concurrency, "concurrency", 0, "Maximum number of parallel file writes")

	fs.StringVar(&f.Config, "config", "", "Path to config file (default: rootDir/mkdist.yaml)")
	fs.StringVar(&f.Report, "report", "", "Print a build report: yaml, json")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Enable verbose output")
	fs.BoolVar(&f.Timestamps, "timestamps", true, "Show timestamps in log output")
}

// Layer returns the flag configuration layer. Only flags the user set
// explicitly are included so that env and file values are not shadowed
// by flag defaults.
func (f *BuildFlags) Layer(cmd *cobra.Command) *config.Config {
	changed := cmd.Flags().Changed
	layer := &config.Config{}

	if changed("src") {
		layer.SrcDir = f.Src
	}
	if changed("dist") {
		layer.DistDir = f.Dist
	}
	if changed("pattern") {
		layer.Pattern = f.Patterns
	}
	if changed("format") {
		layer.Format = f.Format
	}
	if changed("ext") {
		layer.Ext = f.Ext
	}
	if changed("declaration") {
		layer.Declaration = config.BoolPtr(f.Declaration)
	}
	if changed("declaration-ext") {
		layer.DeclarationExt = f.DeclarationExt
	}
	if changed("declaration-map") {
		layer.DeclarationMap = config.BoolPtr(f.DeclarationMap)
	}
	if changed("no-clean") {
		layer.CleanDist = config.BoolPtr(!f.NoClean)
	}
	if changed("loaders") {
		layer.Loaders = f.Loaders
	}
	if changed("minify") {
		layer.Esbuild.Minify = config.BoolPtr(f.Minify)
	}
	if changed("sourcemap") {
		layer.Esbuild.Sourcemap = "false"
		if f.Sourcemap {
			layer.Esbuild.Sourcemap = "true"
		}
	}
	if changed("concurrency") {
		layer.Concurrency = f.Concurrency
	}
	if changed("timestamps") {
		layer.Log.Timestamps = config.BoolPtr(f.Timestamps)
	}

	return layer
}

// rootDirFromArgs returns the root directory argument, defaulting to the
// current directory.
func rootDirFromArgs(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

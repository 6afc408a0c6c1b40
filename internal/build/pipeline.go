package build

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/dts"
	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/loader"
	"github.com/opmodel/mkdist/internal/output"
	"github.com/opmodel/mkdist/internal/resolve"
	"github.com/opmodel/mkdist/internal/scan"
	"github.com/opmodel/mkdist/internal/sfc"
	"github.com/opmodel/mkdist/internal/style"
	"github.com/opmodel/mkdist/internal/version"
	"github.com/opmodel/mkdist/internal/writer"
)

var (
	mapURLRe       = regexp.MustCompile(`(?m)^//# sourceMappingURL=.*$\n?`)
	componentKeyRe = regexp.MustCompile(`\.vue\.[cm]?[jt]s$`)
)

// dirs are the absolute directories of a build.
type dirs struct {
	root, src, dist string
}

// Run executes a build.
//
// The build proceeds in phases:
//  1. Resolve and check directories
//  2. Clean dist
//  3. Enumerate sources
//  4. Transform every source through the loader chain
//  5. Normalize output paths
//  6. Generate declarations
//  7. Resolve relative specifiers
//  8. Write outputs
//
// Fatal errors (bad directories, failed toolchain runs) return error.
// Per-file failures are in Result.Errors.
func Run(ctx context.Context, opts Options) (*Result, error) {
	// Phase 1: directories
	d, err := resolveDirs(opts)
	if err != nil {
		return nil, err
	}
	output.Debug("resolved directories", "root", d.root, "src", d.src, "dist", d.dist)

	// Phase 2: clean dist
	if opts.CleanDist {
		if err := cleanDist(d); err != nil {
			return nil, err
		}
	}

	// Phase 3: enumerate
	inputs, err := scan.Enumerate(d.src, opts.Patterns)
	if err != nil {
		return nil, err
	}

	// Phase 4: transform
	lopts, closeSass := loaderOptions(opts, d)
	defer closeSass()

	chain := loader.NewChain(opts.Loaders, lopts, opts.Units...)
	output.Debug("loader chain", "units", strings.Join(chain.Units(), ","))

	var outputs []*artifact.Output
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outs, err := chain.LoadFile(ctx, in)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, outs...)
	}

	// Phase 5: normalize
	resolve.Normalize(outputs)

	// Phase 6: declarations
	maps, err := declarations(ctx, opts, d, outputs)
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, maps...)

	// Phase 7: specifiers
	resolve.NewResolver(string(lopts.Format), lopts.OutputExtension(), opts.Alias).ResolveAll(outputs)

	// Phase 8: write
	written, err := writer.WriteAll(ctx, d.dist, outputs, opts.Concurrency)
	if err != nil {
		return nil, err
	}

	return &Result{
		WrittenFiles: written,
		Skipped:      skipped(outputs),
		Errors:       collectErrors(outputs),
	}, nil
}

func resolveDirs(opts Options) (dirs, error) {
	root := opts.RootDir
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return dirs{}, fmt.Errorf("resolving root directory: %w", err)
	}
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return dirs{}, oerrors.NewNotFoundError("root directory not found", root, "pass an existing directory as rootDir")
	}

	d := dirs{
		root: root,
		src:  within(root, opts.SrcDir, "src"),
		dist: within(root, opts.DistDir, "dist"),
	}
	if st, err := os.Stat(d.src); err != nil || !st.IsDir() {
		return dirs{}, oerrors.NewNotFoundError("source directory not found", d.src, "create it or set srcDir")
	}
	return d, nil
}

func within(root, dir, def string) string {
	if dir == "" {
		dir = def
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

// cleanDist empties the dist directory. It refuses directories that hold
// the project or its sources.
func cleanDist(d dirs) error {
	if d.dist == d.root || d.dist == d.src || isWithin(d.src, d.dist) || isWithin(d.root, d.dist) {
		return oerrors.NewConfigError("refusing to clean dist directory", d.dist, "distDir must not contain the root or source directory")
	}
	output.Debug("cleaning dist", "dir", d.dist)
	if err := os.RemoveAll(d.dist); err != nil {
		return fmt.Errorf("cleaning %s: %w", d.dist, err)
	}
	if err := os.MkdirAll(d.dist, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", d.dist, err)
	}
	return nil
}

// isWithin reports whether p lies inside dir.
func isWithin(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// loaderOptions builds the chain options. The returned func stops the sass
// compiler process if one was started.
func loaderOptions(opts Options, d dirs) (loader.Options, func()) {
	lo := loader.Options{
		Format:         opts.Format,
		Ext:            opts.Ext,
		Declaration:    opts.Declaration,
		DeclarationExt: opts.DeclarationExt,
		RootDir:        d.root,
		SrcDir:         d.src,
		Esbuild:        opts.Esbuild,
		Postcss:        opts.Postcss,
		Sass: loader.SassOptions{
			Enabled:      opts.Sass.Enabled,
			IncludePaths: absPaths(d.root, opts.Sass.IncludePaths),
			Compiler:     opts.Sass.Compiler,
		},
		Vue: loader.VueOptions{Transformer: opts.Vue.Transformer},
	}
	if lo.Format == "" {
		lo.Format = DefaultOptions().Format
	}
	if lo.Vue.Transformer == nil {
		lo.Vue.Transformer = sfc.NewProvider(sfc.EnhancedProbe(opts.Vue.Transform))
	}

	closer := func() {}
	if lo.Sass.Enabled && lo.Sass.Compiler == nil {
		if bin, ok := version.LookupTool("sass", opts.Sass.Binary, d.root); ok {
			c := style.NewSassCompiler(bin)
			lo.Sass.Compiler = c
			closer = func() {
				if err := c.Close(); err != nil {
					output.Debug("stopping sass", "err", err)
				}
			}
		}
	}
	return lo, closer
}

func absPaths(root string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, within(root, p, "."))
	}
	return out
}

// declarations fills in declaration artifacts and returns the declaration
// map artifacts to add. A map whose path is already taken by another output
// is returned skipped, and its declaration gets no sourceMappingURL.
func declarations(ctx context.Context, opts Options, d dirs, outputs []*artifact.Output) ([]*artifact.Output, error) {
	var pending []*artifact.Output
	files := map[string]string{}
	for _, o := range outputs {
		if !o.Declaration || o.Skip {
			continue
		}
		if _, dup := files[o.SourcePath]; dup {
			output.Debug("duplicate declaration source skipped", "file", o.SourcePath)
			o.Skip = true
			continue
		}
		files[o.SourcePath] = o.Contents
		pending = append(pending, o)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	compiler := dts.NewCompiler(dts.Options{
		RootDir:         d.root,
		CompilerOptions: opts.TypeScript.CompilerOptions,
		DeclarationMap:  opts.DeclarationMap,
		TscPath:         opts.TypeScript.Tsc,
		VueTscPath:      opts.TypeScript.VueTsc,
	}, opts.TypeScript.ScriptBackend, opts.TypeScript.ComponentBackend)

	keys := make([]string, 0, len(pending))
	for _, o := range pending {
		keys = append(keys, o.SourcePath)
	}
	results, err := compiler.Generate(ctx, dts.NewMapVFS(files, true), keys)
	if err != nil {
		return nil, fmt.Errorf("generating declarations: %w", err)
	}

	claimed := resolve.Paths(outputs)
	var maps []*artifact.Output
	var rewriter *dts.RelativeExtensionRewriter
	if opts.AddRelativeDeclarationExtensions {
		rewriter = dts.NewRelativeExtensionRewriter()
	}

	for _, o := range pending {
		res := results[o.SourcePath]
		o.Contents = res.Contents
		o.Errors = append(o.Errors, res.Errors...)

		final := o.FinalPath()
		if rewriter != nil && o.Contents != "" {
			o.Contents = rewriter.Rewrite(o.Contents, o.SourcePath, declarationExt(final))
		}

		o.Contents = mapURLRe.ReplaceAllString(o.Contents, "")
		if !opts.DeclarationMap || res.Map == "" || o.Contents == "" {
			continue
		}
		if claimed[final+".map"] {
			output.Debug("output path already taken, skipping", "path", final+".map", "source", o.SourcePath)
			maps = append(maps, &artifact.Output{Path: final + ".map", SourcePath: o.SourcePath, Skip: true})
			continue
		}
		emitted := filepath.Join(d.dist, filepath.FromSlash(final))
		src := componentKeyRe.ReplaceAllString(o.SourcePath, ".vue")
		m, err := dts.RewriteMapSources(res.Map, emitted, src)
		if err != nil {
			o.Errors = append(o.Errors, fmt.Errorf("declaration map: %w", err))
			continue
		}
		o.Contents = strings.TrimRight(o.Contents, "\n") + "\n//# sourceMappingURL=" + path.Base(final) + ".map\n"
		maps = append(maps, &artifact.Output{
			Path:       final + ".map",
			SourcePath: o.SourcePath,
			Contents:   m,
		})
	}
	return maps, nil
}

func declarationExt(p string) string {
	for _, ext := range []string{".d.mts", ".d.cts"} {
		if strings.HasSuffix(p, ext) {
			return ext
		}
	}
	return ".d.ts"
}

func skipped(outputs []*artifact.Output) []string {
	var paths []string
	for _, o := range outputs {
		if o.Skip {
			paths = append(paths, o.FinalPath())
		}
	}
	sort.Strings(paths)
	return paths
}

// collectErrors groups recorded errors by file.
func collectErrors(outputs []*artifact.Output) []FileError {
	byFile := map[string][]error{}
	for _, o := range outputs {
		if len(o.Errors) == 0 {
			continue
		}
		name := o.SourcePath
		if name == "" {
			name = o.Path
		}
		byFile[name] = append(byFile[name], o.Errors...)
	}

	errs := make([]FileError, 0, len(byFile))
	for name, list := range byFile {
		errs = append(errs, FileError{Filename: name, Errors: list})
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Filename < errs[j].Filename })
	return errs
}

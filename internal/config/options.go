package config

import (
	"github.com/opmodel/mkdist/internal/build"
	"github.com/opmodel/mkdist/internal/loader"
	"github.com/opmodel/mkdist/internal/style"
	"github.com/opmodel/mkdist/internal/transpile"
)

// BuildOptions converts a resolved config into build options for rootDir.
func (c *Config) BuildOptions(rootDir string) build.Options {
	opts := build.DefaultOptions()

	opts.RootDir = rootDir
	opts.SrcDir = c.SrcDir
	opts.DistDir = c.DistDir
	opts.Patterns = c.Pattern
	opts.CleanDist = Bool(c.CleanDist)
	opts.Loaders = c.Loaders
	opts.Format = transpile.Format(c.Format)
	opts.Ext = c.Ext
	opts.Declaration = Bool(c.Declaration)
	opts.DeclarationExt = c.DeclarationExt
	opts.DeclarationMap = Bool(c.DeclarationMap)
	opts.AddRelativeDeclarationExtensions = Bool(c.AddRelativeDeclarationExtensions)
	opts.Alias = c.Alias
	opts.Concurrency = c.Concurrency

	opts.Esbuild = transpile.Options{
		Target:          c.Esbuild.Target,
		JSX:             c.Esbuild.JSX,
		JSXFactory:      c.Esbuild.JSXFactory,
		JSXFragment:     c.Esbuild.JSXFragment,
		JSXImportSource: c.Esbuild.JSXImportSource,
		Minify:          Bool(c.Esbuild.Minify),
		KeepNames:       Bool(c.Esbuild.KeepNames),
		Define:          c.Esbuild.Define,
		SourceMap:       sourceMap(c.Esbuild.Sourcemap),
	}

	opts.Postcss = loader.PostcssOptions{
		Enabled: Bool(c.Postcss.Enabled),
		PostOptions: style.PostOptions{
			Nested:       Bool(c.Postcss.Nested),
			Autoprefixer: Bool(c.Postcss.Autoprefixer),
			Minify:       Bool(c.Postcss.Minify),
			Targets:      c.Postcss.Targets,
		},
	}

	opts.Sass = build.SassOptions{
		Enabled:      Bool(c.Sass.Enabled),
		Binary:       c.Sass.Binary,
		IncludePaths: c.Sass.IncludePaths,
	}
	opts.Vue = build.VueOptions{Transform: Bool(c.Vue.Transform)}
	opts.TypeScript = build.TypeScriptOptions{
		CompilerOptions: c.TypeScript.CompilerOptions,
		Tsc:             c.TypeScript.Tsc,
		VueTsc:          c.TypeScript.VueTsc,
	}

	return opts
}

func sourceMap(v string) transpile.SourceMap {
	switch v {
	case "inline":
		return transpile.SourceMapInline
	case "true", "linked", "external":
		return transpile.SourceMapLinked
	}
	return transpile.SourceMapNone
}

// Package build runs a complete build: enumerate sources, transform them,
// generate declarations, resolve specifiers and write the dist tree.
package build

import (
	"fmt"
	"strings"

	"github.com/opmodel/mkdist/internal/dts"
	"github.com/opmodel/mkdist/internal/loader"
	"github.com/opmodel/mkdist/internal/sfc"
	"github.com/opmodel/mkdist/internal/style"
	"github.com/opmodel/mkdist/internal/transpile"
)

// Options configures a build. Directory fields may be relative; SrcDir and
// DistDir are resolved against RootDir, RootDir against the working directory.
type Options struct {
	RootDir string
	SrcDir  string
	DistDir string

	// Patterns select source files; "!" prefixed patterns exclude.
	Patterns []string

	// CleanDist empties the dist directory before writing.
	CleanDist bool

	// Loaders is the ordered unit list. Nil selects loader.DefaultLoaders.
	Loaders []string

	Format transpile.Format
	// Ext overrides the script output extension ("mjs", "js", ...).
	Ext string

	Declaration    bool
	DeclarationExt string
	DeclarationMap bool

	// AddRelativeDeclarationExtensions adds runtime extensions to relative
	// specifiers in generated declarations.
	AddRelativeDeclarationExtensions bool

	// Alias maps specifier prefixes to directories relative to SrcDir.
	Alias map[string]string

	// Concurrency bounds parallel writes.
	Concurrency int

	Esbuild    transpile.Options
	Postcss    loader.PostcssOptions
	Sass       SassOptions
	Vue        VueOptions
	TypeScript TypeScriptOptions

	// Units are appended to the chain after the configured loaders.
	Units []loader.Unit
}

// SassOptions configures style compilation.
type SassOptions struct {
	Enabled      bool
	Binary       string
	IncludePaths []string

	// Compiler replaces the Dart Sass process when set.
	Compiler style.Compiler
}

// VueOptions configures component handling.
type VueOptions struct {
	// Transform enables the typed-component transformer.
	Transform bool

	// Transformer replaces the default provider when set.
	Transformer *sfc.Provider
}

// TypeScriptOptions configures declaration generation.
type TypeScriptOptions struct {
	CompilerOptions map[string]any
	Tsc             string
	VueTsc          string

	// ScriptBackend and ComponentBackend replace toolchain detection when set.
	ScriptBackend    dts.Backend
	ComponentBackend dts.Backend
}

// DefaultOptions returns the options of a build without configuration.
func DefaultOptions() Options {
	return Options{
		SrcDir:    "src",
		DistDir:   "dist",
		CleanDist: true,
		Format:    transpile.FormatESM,
		Postcss: loader.PostcssOptions{
			Enabled:     true,
			PostOptions: style.DefaultPostOptions(),
		},
		Sass: SassOptions{Enabled: true},
		Vue:  VueOptions{Transform: true},
	}
}

// Result is the outcome of a build that ran to completion.
type Result struct {
	// WrittenFiles are absolute paths, sorted.
	WrittenFiles []string

	// Skipped are dist-relative paths of artifacts dropped before writing,
	// e.g. on a path collision. Sorted.
	Skipped []string

	// Errors are per-file failures, sorted by file name.
	Errors []FileError
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// FileError collects the failures recorded for one file.
type FileError struct {
	Filename string
	Errors   []error
}

func (e FileError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Filename, strings.Join(msgs, "; "))
}

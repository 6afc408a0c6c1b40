// Package loader implements the transform chain: an ordered list of units,
// each of which may claim an input file and turn it into output artifacts.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/output"
	"github.com/opmodel/mkdist/internal/sfc"
	"github.com/opmodel/mkdist/internal/style"
	"github.com/opmodel/mkdist/internal/transpile"
)

// maxDepth bounds nested reinvocations of the chain.
const maxDepth = 4

var (
	// ErrRecursiveComposite is returned when a composite file asks the chain
	// to load a block of its own format.
	ErrRecursiveComposite = errors.New("composite block cannot have the composite format")

	errTooDeep = errors.New("transform chain nested too deeply")
)

// Unit is one member of the transform chain. Load returns nil to decline
// the input; a non-empty slice claims it.
type Unit interface {
	Name() string
	Load(ctx context.Context, in artifact.Input, lc *Context) ([]*artifact.Output, error)
}

// Options are shared by every unit of a chain.
type Options struct {
	// Format is the module format scripts are emitted in.
	Format transpile.Format

	// Ext overrides the output extension of scripts, without the dot.
	Ext string

	// Declaration enables declaration artifacts.
	Declaration bool

	// DeclarationExt is "infer" or one of .d.ts, .d.mts, .d.cts.
	DeclarationExt string

	// RootDir and SrcDir are absolute; used for style include paths.
	RootDir string
	SrcDir  string

	Esbuild transpile.Options
	Postcss PostcssOptions
	Sass    SassOptions
	Vue     VueOptions
}

// PostcssOptions configures the postcss unit and the post stages of compiled sass.
type PostcssOptions struct {
	Enabled bool
	style.PostOptions
}

// SassOptions configures the sass unit.
type SassOptions struct {
	Enabled      bool
	IncludePaths []string
	// Compiler is nil when no sass compiler is configured.
	Compiler style.Compiler
}

// VueOptions configures the vue unit.
type VueOptions struct {
	// Transformer provides the typed-component transformer. Nil behaves
	// like a provider whose probe failed.
	Transformer *sfc.Provider
}

// OutputExtension returns the extension scripts are written with.
func (o Options) OutputExtension() string {
	if o.Ext != "" {
		return "." + strings.TrimPrefix(o.Ext, ".")
	}
	if o.Format == transpile.FormatCJS {
		return ".js"
	}
	return ".mjs"
}

// scriptExtFor returns the output extension for a script source extension.
// Sources whose extension fixes their module format keep it unless an
// explicit override is configured.
func (o Options) scriptExtFor(srcExt string) string {
	if o.Ext != "" {
		return o.OutputExtension()
	}
	switch srcExt {
	case ".mjs", ".mts":
		return ".mjs"
	case ".cjs", ".cts":
		return ".cjs"
	}
	return o.OutputExtension()
}

// DeclarationExtFor returns the declaration extension for a source extension.
func (o Options) DeclarationExtFor(srcExt string) string {
	if o.DeclarationExt != "" && o.DeclarationExt != "infer" {
		return o.DeclarationExt
	}
	return artifact.DeclarationExtFor(srcExt)
}

// Context is passed to every unit call.
type Context struct {
	Options Options

	chain     *Chain
	depth     int
	composite string
}

// Expanding returns a context for loading blocks of a composite file with
// extension ext.
func (c *Context) Expanding(ext string) *Context {
	child := *c
	child.composite = ext
	return &child
}

// Reinvoke runs the whole chain on a synthetic sub-input. It returns nil
// when no unit claims the input; there is no raw fallback.
func (c *Context) Reinvoke(ctx context.Context, in artifact.Input) ([]*artifact.Output, error) {
	if c.composite != "" && in.Extension == c.composite {
		return nil, fmt.Errorf("%s: %w", in.Path, ErrRecursiveComposite)
	}
	if c.depth >= maxDepth {
		return nil, fmt.Errorf("%s: %w", in.Path, errTooDeep)
	}
	child := *c
	child.depth++
	return c.chain.run(ctx, in, &child)
}

// Factory creates a unit from the chain options.
type Factory func(opts Options) Unit

var registry = map[string]Factory{
	"js":      func(Options) Unit { return scriptUnit{} },
	"vue":     func(Options) Unit { return vueUnit{} },
	"sass":    func(Options) Unit { return sassUnit{} },
	"postcss": func(opts Options) Unit { return newPostcssUnit(opts) },
}

// DefaultLoaders is the unit order used when none is configured.
var DefaultLoaders = []string{"js", "vue", "sass", "postcss"}

// KnownLoader reports whether name is a registered unit.
func KnownLoader(name string) bool {
	_, ok := registry[name]
	return ok
}

// Chain is an ordered list of units.
type Chain struct {
	units []Unit
	opts  Options
}

// NewChain builds a chain from registered unit names followed by extra
// units. Unknown names are reported once and dropped. A nil names slice
// selects DefaultLoaders.
func NewChain(names []string, opts Options, extra ...Unit) *Chain {
	if names == nil {
		names = DefaultLoaders
	}
	c := &Chain{opts: opts}
	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			output.WarnOnce("loader:"+name, "unknown loader", "name", name)
			continue
		}
		c.units = append(c.units, factory(opts))
	}
	c.units = append(c.units, extra...)
	return c
}

// Units returns the unit names in order.
func (c *Chain) Units() []string {
	names := make([]string, len(c.units))
	for i, u := range c.units {
		names[i] = u.Name()
	}
	return names
}

// LoadFile offers in to every unit in order and returns the output of the
// first unit that claims it, or a raw passthrough artifact.
func (c *Chain) LoadFile(ctx context.Context, in artifact.Input) ([]*artifact.Output, error) {
	outs, err := c.run(ctx, in, &Context{Options: c.opts, chain: c})
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		output.Debug("copying file", "file", in.Path)
		return []*artifact.Output{artifact.RawOutput(in)}, nil
	}
	return outs, nil
}

func (c *Chain) run(ctx context.Context, in artifact.Input, lc *Context) ([]*artifact.Output, error) {
	for _, u := range c.units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outs, err := u.Load(ctx, in, lc)
		if err != nil {
			return nil, fmt.Errorf("%s loader: %s: %w", u.Name(), in.Path, err)
		}
		if len(outs) > 0 {
			output.Debug("loaded file", "file", in.Path, "loader", u.Name(), "outputs", len(outs))
			return outs, nil
		}
	}
	return nil, nil
}

// sourcePathOf returns the path artifacts derived from in report as their origin.
func sourcePathOf(in artifact.Input) string {
	if in.SourcePath != "" {
		return in.SourcePath
	}
	return in.Path
}

// failed is a skipped artifact carrying a per-file error.
func failed(in artifact.Input, ext string, err error) *artifact.Output {
	return &artifact.Output{
		Path:       in.Path,
		SourcePath: in.SourcePath,
		Extension:  ext,
		Skip:       true,
		Errors:     []error{err},
	}
}

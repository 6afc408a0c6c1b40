// Package dts generates type declarations for batches of script and
// component sources.
package dts

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"

	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/output"
	"github.com/opmodel/mkdist/internal/version"
)

// componentKeyRe matches VFS keys of component declarations, e.g. "Comp.vue.ts".
var componentKeyRe = regexp.MustCompile(`\.vue\.[cm]?[jt]s$`)

// Options configures a declaration batch.
type Options struct {
	// RootDir is the project root; staging directories and tool lookup use it.
	RootDir string

	// CompilerOptions are merged into the generated tsconfig.
	CompilerOptions map[string]any

	// DeclarationMap requests declaration source maps.
	DeclarationMap bool

	// TscPath and VueTscPath override tool lookup.
	TscPath    string
	VueTscPath string
}

// noEmitOnError reports whether files with errors must produce no declaration.
func (o Options) noEmitOnError() bool {
	v, ok := o.CompilerOptions["noEmitOnError"].(bool)
	return ok && v
}

// Result is the declaration generated for one key.
type Result struct {
	Contents string
	// Map is the declaration map text when requested and produced.
	Map    string
	Errors []error
}

// Backend emits declarations for files held in a VFS. Each declaration is
// written back to the VFS under DeclarationPath of its source.
type Backend interface {
	Name() string
	Emit(ctx context.Context, vfs VFS, files []string, opts Options) ([]*oerrors.PositionError, error)
}

// Compiler routes declaration keys to a script backend and a component
// backend. Backends are chosen on first use and kept for the compiler's lifetime.
type Compiler struct {
	opts Options

	scriptOnce    sync.Once
	script        Backend
	componentOnce sync.Once
	component     Backend
}

// NewCompiler creates a compiler. Nil backends are selected from the
// installed toolchain when first needed.
func NewCompiler(opts Options, script, component Backend) *Compiler {
	c := &Compiler{opts: opts, script: script, component: component}
	if script != nil {
		c.scriptOnce.Do(func() {})
	}
	if component != nil {
		c.componentOnce.Do(func() {})
	}
	return c
}

// ScriptBackend returns the backend for plain script keys.
func (c *Compiler) ScriptBackend() Backend {
	c.scriptOnce.Do(func() {
		c.script = selectScriptBackend(c.opts)
	})
	return c.script
}

// ComponentBackend returns the backend for component keys.
func (c *Compiler) ComponentBackend(ctx context.Context) Backend {
	c.componentOnce.Do(func() {
		c.component = selectComponentBackend(ctx, c.opts)
	})
	return c.component
}

// Generate emits declarations for keys whose sources are in vfs. The result
// holds exactly one entry per key.
func (c *Compiler) Generate(ctx context.Context, vfs VFS, keys []string) (map[string]Result, error) {
	var scripts, components []string
	for _, k := range keys {
		if componentKeyRe.MatchString(k) {
			components = append(components, k)
		} else {
			scripts = append(scripts, k)
		}
	}

	diags := map[string][]*oerrors.PositionError{}
	collect := func(ds []*oerrors.PositionError) {
		for _, d := range ds {
			diags[d.File] = append(diags[d.File], d)
		}
	}

	if len(scripts) > 0 {
		b := c.ScriptBackend()
		output.Debug("generating declarations", "backend", b.Name(), "files", len(scripts))
		ds, err := b.Emit(ctx, vfs, scripts, c.opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		collect(ds)
	}
	if len(components) > 0 {
		b := c.ComponentBackend(ctx)
		output.Debug("generating component declarations", "backend", b.Name(), "files", len(components))
		ds, err := b.Emit(ctx, vfs, components, c.opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		collect(ds)
	}

	results := make(map[string]Result, len(keys))
	for _, k := range keys {
		var res Result
		res.Contents, _ = vfs.Read(DeclarationPath(k))
		if c.opts.DeclarationMap {
			res.Map, _ = vfs.Read(DeclarationPath(k) + ".map")
		}

		if ds := diags[k]; len(ds) > 0 {
			if c.opts.noEmitOnError() {
				res.Contents, res.Map = "", ""
				for _, d := range ds {
					res.Errors = append(res.Errors, d)
				}
			} else {
				for _, d := range ds {
					output.Debug("declaration diagnostic", "file", k, "err", d.Error())
				}
			}
		}
		results[k] = res
	}
	return results, nil
}

// DeclarationPath returns where the declaration of a source is stored.
func DeclarationPath(src string) string {
	ext := path.Ext(src)
	base := strings.TrimSuffix(src, ext)
	switch ext {
	case ".mts", ".mjs":
		return base + ".d.mts"
	case ".cts", ".cjs":
		return base + ".d.cts"
	}
	return base + ".d.ts"
}

func selectScriptBackend(opts Options) Backend {
	if bin, ok := version.LookupTool("tsc", opts.TscPath, opts.RootDir); ok {
		return &TscBackend{Binary: bin}
	}
	if opts.TscPath != "" {
		output.Warn("configured tsc not found", "path", opts.TscPath)
	}
	output.WarnOnce("tsc-missing", "typescript compiler not found, using the built-in declaration emitter")
	return BuiltinBackend{}
}

func selectComponentBackend(ctx context.Context, opts Options) Backend {
	info := version.DetectTool(ctx, "vue-tsc", opts.VueTscPath, opts.RootDir)
	if !info.Found {
		output.WarnOnce("vue-tsc-missing", "vue-tsc is not installed, component declarations are stubbed")
		return StubBackend{}
	}
	return NewVueTscBackend(info.Path, info.Version)
}

package loader

import (
	"context"
	"errors"
	"strings"

	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/style"
)

// fakeSass prefixes sources with their syntax so tests can see they were compiled.
type fakeSass struct {
	available bool
	fail      bool
	calls     []string
	include   [][]string
}

func (f *fakeSass) Available() bool { return f.available }

func (f *fakeSass) Compile(src string, syntax style.Syntax, includePaths []string) (string, error) {
	f.calls = append(f.calls, src)
	f.include = append(f.include, includePaths)
	if f.fail {
		return "", errors.New("expected \"}\"")
	}
	return "/* " + string(syntax) + " */\n" + strings.TrimSpace(src) + "\n", nil
}

// fixedUnit claims every input with a fixed result.
type fixedUnit struct {
	name string
	outs []*artifact.Output
	err  error
}

func (u fixedUnit) Name() string { return u.name }

func (u fixedUnit) Load(context.Context, artifact.Input, *Context) ([]*artifact.Output, error) {
	return u.outs, u.err
}

func testOptions() Options {
	return Options{
		Format:         "esm",
		DeclarationExt: "infer",
	}
}

func load(opts Options, names []string, in artifact.Input) ([]*artifact.Output, error) {
	return NewChain(names, opts).LoadFile(context.Background(), in)
}

package loader

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/output"
	"github.com/opmodel/mkdist/internal/style"
)

// sassUnit compiles .scss and .sass files to CSS.
type sassUnit struct{}

func (sassUnit) Name() string { return "sass" }

func (sassUnit) Load(_ context.Context, in artifact.Input, lc *Context) ([]*artifact.Output, error) {
	if in.Extension != ".scss" && in.Extension != ".sass" {
		return nil, nil
	}

	// Partials are only meant to be imported.
	if strings.HasPrefix(path.Base(in.Path), "_") {
		return []*artifact.Output{{Path: in.Path, SourcePath: in.SourcePath, Skip: true}}, nil
	}

	opts := lc.Options.Sass
	if !opts.Enabled {
		return nil, nil
	}

	if opts.Compiler == nil || !opts.Compiler.Available() {
		output.WarnOnce("sass-missing", "sass is not installed, mkdist will copy sass files as-is")
		return nil, nil
	}

	src, err := in.Contents()
	if err != nil {
		return nil, err
	}

	css, err := opts.Compiler.Compile(src, style.SyntaxFor(in.Extension), includePaths(in, lc.Options))
	if err != nil {
		return []*artifact.Output{failed(in, ".css", fmt.Errorf("compiling %s: %w", in.Path, err))}, nil
	}

	if lc.Options.Postcss.Enabled {
		css, err = style.NewPostProcessor(lc.Options.Postcss.PostOptions).Process(css, in.Path)
		if err != nil {
			return []*artifact.Output{failed(in, ".css", err)}, nil
		}
	}

	return []*artifact.Output{{
		Path:       in.Path,
		SourcePath: in.SourcePath,
		Extension:  ".css",
		Contents:   css,
	}}, nil
}

// includePaths lists the directories sass resolves imports against: the
// file's directory and its parents up to the source root, the project's
// node_modules and any configured paths.
func includePaths(in artifact.Input, opts Options) []string {
	var paths []string
	if opts.SrcDir != "" {
		dir := filepath.Join(opts.SrcDir, filepath.FromSlash(path.Dir(in.Path)))
		for {
			paths = append(paths, dir)
			if dir == opts.SrcDir || !strings.HasPrefix(dir, opts.SrcDir) {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
	if opts.RootDir != "" {
		paths = append(paths, filepath.Join(opts.RootDir, "node_modules"))
	}
	return append(paths, opts.Sass.IncludePaths...)
}

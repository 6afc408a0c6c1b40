package loader

import (
	"context"
	"errors"
	"path"

	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/transpile"
)

// scriptUnit transpiles TypeScript, JSX and JavaScript sources.
type scriptUnit struct{}

func (scriptUnit) Name() string { return "js" }

func (scriptUnit) Load(_ context.Context, in artifact.Input, lc *Context) ([]*artifact.Output, error) {
	if !artifact.IsScriptExt(in.Extension) || artifact.IsDeclarationFile(in.Path) {
		return nil, nil
	}

	src, err := in.Contents()
	if err != nil {
		return nil, err
	}

	opts := lc.Options
	var outs []*artifact.Output

	if opts.Declaration && in.Block == "" {
		outs = append(outs, &artifact.Output{
			Path:        in.Path,
			SourcePath:  sourcePathOf(in),
			Extension:   opts.DeclarationExtFor(in.Extension),
			Contents:    src,
			Declaration: true,
		})
	}

	ext := opts.scriptExtFor(in.Extension)

	format := opts.Format
	topts := opts.Esbuild
	if in.Block != "" {
		// Component blocks stay ES modules for the component compiler.
		format = transpile.FormatESM
		topts.PreserveImports = true
		topts.SourceMap = transpile.SourceMapNone
	}

	res, err := transpile.Script(src, in.Path, format, topts)
	if err != nil {
		var terr *transpile.Error
		if errors.As(err, &terr) {
			return append(outs, failed(in, ext, err)), nil
		}
		return nil, err
	}

	out := &artifact.Output{
		Path:       in.Path,
		SourcePath: in.SourcePath,
		Extension:  ext,
		Contents:   res.Code,
	}
	outs = append(outs, out)

	if res.Map != "" {
		mapPath := artifact.ReplaceExt(in.Path, ext) + ".map"
		out.Contents += "//# sourceMappingURL=" + path.Base(mapPath) + "\n"
		outs = append(outs, &artifact.Output{
			Path:       mapPath,
			SourcePath: in.SourcePath,
			Contents:   res.Map,
		})
	}
	return outs, nil
}

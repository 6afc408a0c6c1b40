package loader

import (
	"context"

	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/style"
)

// postcssUnit runs the CSS post stages over plain stylesheets.
type postcssUnit struct {
	enabled bool
	proc    *style.PostProcessor
}

func newPostcssUnit(opts Options) postcssUnit {
	return postcssUnit{
		enabled: opts.Postcss.Enabled,
		proc:    style.NewPostProcessor(opts.Postcss.PostOptions),
	}
}

func (postcssUnit) Name() string { return "postcss" }

func (u postcssUnit) Load(_ context.Context, in artifact.Input, _ *Context) ([]*artifact.Output, error) {
	if in.Extension != ".css" || !u.enabled {
		return nil, nil
	}

	src, err := in.Contents()
	if err != nil {
		return nil, err
	}

	css, err := u.proc.Process(src, in.Path)
	if err != nil {
		return []*artifact.Output{failed(in, ".css", err)}, nil
	}

	return []*artifact.Output{{
		Path:       in.Path,
		SourcePath: in.SourcePath,
		Extension:  ".css",
		Contents:   css,
	}}, nil
}

package style

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/opmodel/mkdist/internal/transpile"
)

// DefaultTargets are the engines used for vendor prefixing when none are configured.
const DefaultTargets = "chrome87,edge88,firefox78,safari14"

// PostOptions selects the post-processing stages. Stages run in a fixed order:
// nesting, prefixing, minification.
type PostOptions struct {
	Nested       bool
	Autoprefixer bool
	Minify       bool
	// Targets is an esbuild target list used for prefixing.
	Targets string
}

// DefaultPostOptions enables every stage.
func DefaultPostOptions() PostOptions {
	return PostOptions{Nested: true, Autoprefixer: true, Minify: true, Targets: DefaultTargets}
}

// PostProcessor applies the configured CSS stages.
type PostProcessor struct {
	opts PostOptions
}

// NewPostProcessor creates a post processor.
func NewPostProcessor(opts PostOptions) *PostProcessor {
	if opts.Targets == "" {
		opts.Targets = DefaultTargets
	}
	return &PostProcessor{opts: opts}
}

// Process runs every enabled stage over css. file names the source in errors.
func (p *PostProcessor) Process(css, file string) (string, error) {
	var err error

	if p.opts.Nested {
		css, err = run(css, file, api.TransformOptions{
			Supported: map[string]bool{"nesting": false},
		})
		if err != nil {
			return "", fmt.Errorf("flattening nesting: %w", err)
		}
	}

	if p.opts.Autoprefixer {
		_, engines, perr := transpile.ParseTarget(p.opts.Targets)
		if perr != nil {
			return "", perr
		}
		opts := api.TransformOptions{Engines: engines}
		if !p.opts.Nested {
			// targets would otherwise lower nesting too
			opts.Supported = map[string]bool{"nesting": true}
		}
		css, err = run(css, file, opts)
		if err != nil {
			return "", fmt.Errorf("prefixing: %w", err)
		}
	}

	if p.opts.Minify {
		css, err = run(css, file, api.TransformOptions{
			MinifyWhitespace: true,
			MinifySyntax:     true,
		})
		if err != nil {
			return "", fmt.Errorf("minifying: %w", err)
		}
	}

	return css, nil
}

func run(css, file string, opts api.TransformOptions) (string, error) {
	opts.Loader = api.LoaderCSS
	opts.Sourcefile = file
	opts.LogLevel = api.LogLevelSilent

	res := api.Transform(css, opts)
	if len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, m := range res.Errors {
			msgs = append(msgs, m.Text)
		}
		return "", fmt.Errorf("%s: %s", file, strings.Join(msgs, "; "))
	}
	return string(res.Code), nil
}

// Package style compiles and post-processes stylesheets.
package style

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bep/godartsass/v2"
)

// ErrSassUnavailable is returned when no Dart Sass binary can be started.
var ErrSassUnavailable = errors.New("sass compiler unavailable")

// Syntax is the stylesheet syntax of a sass source.
type Syntax string

const (
	SyntaxSCSS Syntax = "scss"
	SyntaxSass Syntax = "sass"
	SyntaxCSS  Syntax = "css"
)

// SyntaxFor maps a file extension to its syntax.
func SyntaxFor(ext string) Syntax {
	switch ext {
	case ".sass":
		return SyntaxSass
	case ".css":
		return SyntaxCSS
	default:
		return SyntaxSCSS
	}
}

// Compiler compiles sass sources to CSS.
type Compiler interface {
	Available() bool
	Compile(src string, syntax Syntax, includePaths []string) (string, error)
}

// SassCompiler runs Dart Sass through the embedded protocol. The process is
// started on first use and shared by all callers.
type SassCompiler struct {
	binary string

	once       sync.Once
	transpiler *godartsass.Transpiler
	startErr   error
}

// NewSassCompiler creates a compiler for the given Dart Sass binary. An empty
// binary uses "sass" from PATH.
func NewSassCompiler(binary string) *SassCompiler {
	return &SassCompiler{binary: binary}
}

func (c *SassCompiler) start() {
	c.once.Do(func() {
		opts := godartsass.Options{}
		if c.binary != "" {
			opts.DartSassEmbeddedFilename = c.binary
		}
		c.transpiler, c.startErr = godartsass.Start(opts)
		if c.startErr != nil {
			c.startErr = fmt.Errorf("%w: %w", ErrSassUnavailable, c.startErr)
		}
	})
}

// Available reports whether the compiler process could be started.
func (c *SassCompiler) Available() bool {
	c.start()
	return c.startErr == nil
}

// Compile compiles src with expanded output.
func (c *SassCompiler) Compile(src string, syntax Syntax, includePaths []string) (string, error) {
	c.start()
	if c.startErr != nil {
		return "", c.startErr
	}

	args := godartsass.Args{
		Source:       src,
		IncludePaths: includePaths,
		OutputStyle:  godartsass.OutputStyleExpanded,
	}
	switch syntax {
	case SyntaxSass:
		args.SourceSyntax = godartsass.SourceSyntaxSASS
	case SyntaxCSS:
		args.SourceSyntax = godartsass.SourceSyntaxCSS
	default:
		args.SourceSyntax = godartsass.SourceSyntaxSCSS
	}

	res, err := c.transpiler.Execute(args)
	if err != nil {
		return "", err
	}
	return res.CSS, nil
}

// Close stops the compiler process if it was started.
func (c *SassCompiler) Close() error {
	if c.transpiler == nil {
		return nil
	}
	return c.transpiler.Close()
}

// Package transpile adapts esbuild's transform API to the needs of the
// transform units: whole scripts, module-format conversion and standalone
// template snippets.
package transpile

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Format is the target module format.
type Format string

const (
	// FormatESM emits static import/export syntax.
	FormatESM Format = "esm"

	// FormatCJS emits require/module.exports syntax.
	FormatCJS Format = "cjs"
)

// SourceMap selects how source maps are produced.
type SourceMap string

const (
	SourceMapNone   SourceMap = ""
	SourceMapInline SourceMap = "inline"
	SourceMapLinked SourceMap = "linked"
)

// Options configures a script transform. Field names follow esbuild's.
type Options struct {
	Target          string
	JSX             string
	JSXFactory      string
	JSXFragment     string
	JSXImportSource string
	Minify          bool
	KeepNames       bool
	Define          map[string]string
	SourceMap       SourceMap

	// PreserveImports keeps value imports esbuild cannot see being used, such
	// as components referenced only from a template.
	PreserveImports bool
}

// Result is a transformed script.
type Result struct {
	Code string
	// Map is the external source map when SourceMapLinked was requested.
	Map string
}

// Error is a failed transform with esbuild's messages.
type Error struct {
	File     string
	Messages []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("transform %s: %s", e.File, strings.Join(e.Messages, "; "))
}

// LoaderFor returns the esbuild loader for a source extension.
func LoaderFor(ext string) api.Loader {
	switch ext {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	case ".css":
		return api.LoaderCSS
	case ".json":
		return api.LoaderJSON
	default:
		return api.LoaderJS
	}
}

// Script transpiles one file. sourcefile names the file in messages and maps.
// Sources already committed to a module format by their extension (.mjs/.mts,
// .cjs/.cts) keep it; others are converted to format.
func Script(code, sourcefile string, format Format, opts Options) (Result, error) {
	ext := path.Ext(sourcefile)

	target, engines, err := ParseTarget(opts.Target)
	if err != nil {
		return Result{}, err
	}

	to := api.TransformOptions{
		Loader:            LoaderFor(ext),
		Sourcefile:        sourcefile,
		Target:            target,
		Engines:           engines,
		MinifyWhitespace:  opts.Minify,
		MinifySyntax:      opts.Minify,
		MinifyIdentifiers: opts.Minify,
		KeepNames:         opts.KeepNames,
		Define:            opts.Define,
		JSXFactory:        opts.JSXFactory,
		JSXFragment:       opts.JSXFragment,
		JSXImportSource:   opts.JSXImportSource,
		LogLevel:          api.LogLevelSilent,
	}

	if opts.PreserveImports {
		to.TsconfigRaw = `{"compilerOptions":{"verbatimModuleSyntax":true}}`
	}

	switch opts.JSX {
	case "", "transform":
		to.JSX = api.JSXTransform
	case "preserve":
		to.JSX = api.JSXPreserve
	case "automatic":
		to.JSX = api.JSXAutomatic
	default:
		return Result{}, fmt.Errorf("unknown jsx mode %q", opts.JSX)
	}

	switch opts.SourceMap {
	case SourceMapInline:
		to.Sourcemap = api.SourceMapInline
	case SourceMapLinked:
		to.Sourcemap = api.SourceMapExternal
	}

	convert := format == FormatCJS && ext != ".mjs" && ext != ".mts" && ext != ".cjs" && ext != ".cts"
	if convert {
		to.Format = api.FormatCommonJS
	}

	res := api.Transform(code, to)
	if len(res.Errors) > 0 {
		return Result{}, newError(sourcefile, res.Errors)
	}

	out := string(res.Code)
	if convert {
		out = CollapseDefaultExport(out)
	}
	return Result{Code: out, Map: string(res.Map)}, nil
}

func newError(file string, msgs []api.Message) *Error {
	e := &Error{File: file}
	for _, m := range msgs {
		if m.Location != nil {
			e.Messages = append(e.Messages, fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text))
		} else {
			e.Messages = append(e.Messages, m.Text)
		}
	}
	return e
}

var (
	defaultOnlyExportRe = regexp.MustCompile(`(?m)^__export\((\w+), \{\n\s*default: \(\) => (\w+)\n\}\);\n`)
	toCommonJSRe        = regexp.MustCompile(`(?m)^module\.exports = __toCommonJS\((\w+)\);\n`)
)

// CollapseDefaultExport rewrites esbuild's CommonJS output for a module whose
// only export is the default one, so that require() returns the default value
// itself instead of a namespace object.
func CollapseDefaultExport(code string) string {
	exp := defaultOnlyExportRe.FindStringSubmatch(code)
	if exp == nil {
		return code
	}
	cjs := toCommonJSRe.FindStringSubmatch(code)
	if cjs == nil || cjs[1] != exp[1] {
		return code
	}

	code = strings.Replace(code, exp[0], "", 1)
	code = strings.Replace(code, cjs[0], "", 1)
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return code + "module.exports = " + exp[2] + ";\n"
}

// ParseTarget parses a comma separated esbuild target list such as
// "es2020,node18". An empty string means esnext.
func ParseTarget(s string) (api.Target, []api.Engine, error) {
	target := api.ESNext
	var engines []api.Engine

	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if t, ok := esTargets[part]; ok {
			target = t
			continue
		}
		matched := false
		for prefix, name := range engineNames {
			if strings.HasPrefix(part, prefix) {
				version := strings.TrimPrefix(part, prefix)
				if version == "" {
					return 0, nil, fmt.Errorf("target %q has no version", part)
				}
				engines = append(engines, api.Engine{Name: name, Version: version})
				matched = true
				break
			}
		}
		if !matched {
			return 0, nil, fmt.Errorf("unknown target %q", part)
		}
	}
	return target, engines, nil
}

var esTargets = map[string]api.Target{
	"esnext": api.ESNext,
	"es5":    api.ES5,
	"es6":    api.ES2015,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
}

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ios":     api.EngineIOS,
	"node":    api.EngineNode,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
	"deno":    api.EngineDeno,
}

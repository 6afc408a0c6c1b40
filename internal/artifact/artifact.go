// Package artifact defines the units of content flowing through a build:
// inputs read from the source tree and outputs destined for the dist tree.
package artifact

import (
	"fmt"
	"os"
	"path"
	"strings"
)

// Input is one file offered to the transform chain. Inputs are immutable; one
// exists per physical source file plus one per block extracted from a composite file.
type Input struct {
	// Path is relative to the source root, slash separated.
	Path string

	// SourcePath is the absolute source path. Empty for synthetic inputs.
	SourcePath string

	// Extension includes the leading dot, e.g. ".ts".
	Extension string

	// Contents reads the text lazily. It may be called more than once.
	Contents func() (string, error)

	// Block names the component block a synthetic input was extracted from,
	// e.g. "script" or "style". Empty for files.
	Block string
}

// Output is one artifact produced by a transform unit. Later pipeline stages
// rewrite Path, Extension and Contents in place.
type Output struct {
	// Path is relative to the dist root and never escapes it.
	Path string

	// SourcePath is the origin used for raw copies, diagnostics and declaration keys.
	SourcePath string

	// Extension overrides the extension of Path when non-empty.
	Extension string

	// Contents holds the text of non-raw artifacts.
	Contents string

	// Declaration marks artifacts whose Contents are replaced by generated declarations.
	Declaration bool

	// Raw artifacts are copied byte for byte from SourcePath.
	Raw bool

	// Skip excludes the artifact from declarations, resolution and writing.
	Skip bool

	// Errors are per-file failures reported in the build result.
	Errors []error
}

// NewInput creates a disk-backed input. relPath is relative to the source root.
func NewInput(relPath, absPath string) Input {
	relPath = path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	return Input{
		Path:       relPath,
		SourcePath: absPath,
		Extension:  path.Ext(relPath),
		Contents: func() (string, error) {
			data, err := os.ReadFile(absPath)
			if err != nil {
				return "", fmt.Errorf("reading %s: %w", absPath, err)
			}
			return string(data), nil
		},
	}
}

// Synthetic creates an in-memory input, e.g. a block pulled out of a component.
func Synthetic(relPath, sourcePath, text string) Input {
	return Input{
		Path:       relPath,
		SourcePath: sourcePath,
		Extension:  path.Ext(relPath),
		Contents: func() (string, error) {
			return text, nil
		},
	}
}

// RawOutput is the passthrough artifact used when no unit claims an input.
func RawOutput(in Input) *Output {
	return &Output{
		Path:       in.Path,
		SourcePath: in.SourcePath,
		Raw:        true,
	}
}

// FinalPath returns the path the artifact is written to once its extension
// override is applied.
func (o *Output) FinalPath() string {
	if o.Extension == "" {
		return o.Path
	}
	return ReplaceExt(o.Path, o.Extension)
}

// AddError records a per-file failure.
func (o *Output) AddError(err error) {
	if err != nil {
		o.Errors = append(o.Errors, err)
	}
}

// ReplaceExt swaps the last extension of p for ext.
func ReplaceExt(p, ext string) string {
	dir, file := path.Split(p)
	return dir + strings.TrimSuffix(file, path.Ext(file)) + ext
}

// IsDeclarationFile reports whether p is a hand-written declaration file.
func IsDeclarationFile(p string) bool {
	for _, suffix := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

// ScriptExtensions are the extensions the script unit claims.
var ScriptExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts"}

// IsScriptExt reports whether ext is a script extension.
func IsScriptExt(ext string) bool {
	for _, e := range ScriptExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// DeclarationExtFor maps a source extension to the extension of the declaration
// a type-declaration compiler writes for it.
func DeclarationExtFor(ext string) string {
	switch ext {
	case ".mts", ".mjs":
		return ".d.mts"
	case ".cts", ".cjs":
		return ".d.cts"
	default:
		return ".d.ts"
	}
}

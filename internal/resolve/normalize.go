// Package resolve finalizes output paths and rewrites relative module
// specifiers against the set of emitted files.
package resolve

import (
	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/output"
)

// Normalize applies extension overrides in place. Artifacts keeping their
// path claim it first, in order; renamed artifacts follow in order. An
// artifact whose final path is already claimed is skipped, so hand-written
// files win over generated ones of the same name.
func Normalize(outputs []*artifact.Output) {
	claimed := make(map[string]*artifact.Output, len(outputs))

	for _, o := range outputs {
		if o.Skip || o.Extension != "" {
			continue
		}
		if prev, ok := claimed[o.Path]; ok && prev != o {
			output.Debug("duplicate output skipped", "path", o.Path, "source", o.SourcePath)
			o.Skip = true
			continue
		}
		claimed[o.Path] = o
	}

	for _, o := range outputs {
		if o.Skip || o.Extension == "" {
			continue
		}
		final := o.FinalPath()
		if prev, ok := claimed[final]; ok && prev != o {
			output.Debug("output path already taken, skipping", "path", final, "source", o.SourcePath)
			o.Skip = true
			continue
		}
		o.Path = final
		o.Extension = ""
		claimed[final] = o
	}
}

// Paths returns the set of final paths of non-skipped artifacts.
func Paths(outputs []*artifact.Output) map[string]bool {
	set := make(map[string]bool, len(outputs))
	for _, o := range outputs {
		if !o.Skip {
			set[o.FinalPath()] = true
		}
	}
	return set
}

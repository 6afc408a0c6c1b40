// Package scan enumerates the source files of a build.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/opmodel/mkdist/internal/artifact"
	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/output"
)

// DefaultPatterns matches every file.
var DefaultPatterns = []string{"**"}

// Matcher decides which relative paths are part of a build. A path is
// included when it matches a positive pattern and no "!" pattern.
type Matcher struct {
	include []string
	exclude []string
}

// NewMatcher validates patterns. An empty list matches everything.
func NewMatcher(patterns []string) (*Matcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		neg := strings.HasPrefix(p, "!")
		p = strings.TrimPrefix(strings.TrimPrefix(p, "!"), "./")
		if _, err := doublestar.Match(p, ""); err != nil {
			return nil, oerrors.NewConfigError("invalid pattern", p, err.Error())
		}
		if neg {
			m.exclude = append(m.exclude, p)
		} else {
			m.include = append(m.include, p)
		}
	}
	if len(m.include) == 0 {
		m.include = DefaultPatterns
	}
	return m, nil
}

// Match reports whether the slash separated rel is selected.
func (m *Matcher) Match(rel string) bool {
	included := false
	for _, p := range m.include {
		if ok, _ := doublestar.Match(p, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range m.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	return true
}

// Enumerate walks srcDir and returns the selected files as inputs sorted
// by path. Dot-prefixed entries and node_modules directories are skipped.
func Enumerate(srcDir string, patterns []string) ([]artifact.Input, error) {
	m, err := NewMatcher(patterns)
	if err != nil {
		return nil, err
	}

	var inputs []artifact.Input
	err = filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == srcDir {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || (d.IsDir() && name == "node_modules") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !m.Match(rel) {
			return nil
		}
		inputs = append(inputs, artifact.NewInput(rel, p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", srcDir, err)
	}

	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Path < inputs[j].Path })
	output.Debug("enumerated source files", "dir", srcDir, "files", len(inputs))
	return inputs, nil
}

package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/loader"
	"github.com/opmodel/mkdist/internal/output"
)

var (
	validFormats         = []string{"esm", "cjs"}
	validExts            = []string{"js", "mjs", "cjs", "ts", "mts", "cts"}
	validDeclarationExts = []string{"infer", ".d.ts", ".d.mts", ".d.cts"}
	validSourcemaps      = []string{"", "true", "false", "inline", "linked", "external"}
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Unwrap classifies validation failures as configuration errors.
func (e ValidationErrors) Unwrap() error {
	return oerrors.ErrConfig
}

// Validate checks a resolved config. Unknown loader names are dropped from
// cfg with a warning. rootDir is absolute.
func Validate(cfg *Config, rootDir string) error {
	var errs ValidationErrors

	if !slices.Contains(validFormats, cfg.Format) {
		errs = append(errs, ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validFormats, ", "), cfg.Format),
		})
	}

	if ext := strings.TrimPrefix(cfg.Ext, "."); ext != "" && !slices.Contains(validExts, ext) {
		errs = append(errs, ValidationError{
			Field:   "ext",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validExts, ", "), cfg.Ext),
		})
	}

	if cfg.DeclarationExt != "" && !slices.Contains(validDeclarationExts, cfg.DeclarationExt) {
		errs = append(errs, ValidationError{
			Field:   "declarationExt",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validDeclarationExts, ", "), cfg.DeclarationExt),
		})
	}

	if !slices.Contains(validSourcemaps, cfg.Esbuild.Sourcemap) {
		errs = append(errs, ValidationError{
			Field:   "esbuild.sourcemap",
			Message: fmt.Sprintf("must be inline or linked, got %q", cfg.Esbuild.Sourcemap),
		})
	}

	if cfg.Concurrency < 0 {
		errs = append(errs, ValidationError{Field: "concurrency", Message: "must not be negative"})
	}

	if strings.TrimSpace(cfg.SrcDir) == "" {
		errs = append(errs, ValidationError{Field: "srcDir", Message: "must not be empty or whitespace only"})
	}
	if strings.TrimSpace(cfg.DistDir) == "" {
		errs = append(errs, ValidationError{Field: "distDir", Message: "must not be empty or whitespace only"})
	} else {
		dist, _ := ResolvePath(rootDir, cfg.DistDir)
		src, _ := ResolvePath(rootDir, cfg.SrcDir)
		switch filepath.Clean(dist) {
		case filepath.Clean(rootDir):
			errs = append(errs, ValidationError{Field: "distDir", Message: "must not be the root directory"})
		case filepath.Clean(src):
			errs = append(errs, ValidationError{Field: "distDir", Message: "must not be the source directory"})
		}
	}

	if cfg.Loaders != nil {
		known := cfg.Loaders[:0:0]
		for _, name := range cfg.Loaders {
			if !loader.KnownLoader(name) {
				output.Warn("unknown loader ignored", "name", name)
				continue
			}
			known = append(known, name)
		}
		cfg.Loaders = known
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

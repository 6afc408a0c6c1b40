package dts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/output"
)

const stageOutDir = "__dts__"

// reservedCompilerOptions are controlled by the stage and cannot be overridden.
var reservedCompilerOptions = map[string]bool{
	"outDir":              true,
	"rootDir":             true,
	"declarationDir":      true,
	"declaration":         true,
	"emitDeclarationOnly": true,
	"noEmit":              true,
	"noEmitOnError":       true,
	"composite":           true,
	"incremental":         true,
}

// stage is a scratch project that a TypeScript compiler process runs in.
// Sources are laid out relative to the project root so relative imports
// and node_modules resolution keep working.
type stage struct {
	dir  string
	root string
	keys map[string]string
}

func newStage(rootDir string) (*stage, error) {
	s := &stage{root: rootDir, keys: map[string]string{}}

	nm := filepath.Join(rootDir, "node_modules")
	if st, err := os.Stat(nm); rootDir != "" && err == nil && st.IsDir() {
		s.dir = filepath.Join(nm, ".cache", "mkdist", uuid.NewString())
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating staging directory: %w", err)
		}
		return s, nil
	}

	dir, err := os.MkdirTemp("", "mkdist-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	s.dir = dir
	return s, nil
}

func (s *stage) Close() error {
	return os.RemoveAll(s.dir)
}

// rel returns the slash separated location of an absolute source path
// inside the stage.
func (s *stage) rel(src string) string {
	if s.root != "" {
		if r, err := filepath.Rel(s.root, src); err == nil && !strings.HasPrefix(r, "..") {
			return filepath.ToSlash(r)
		}
	}
	return "__external__/" + strings.TrimLeft(filepath.ToSlash(src), "/")
}

// add writes text at the staged location of src and remembers key as the
// name diagnostics for that file are reported under.
func (s *stage) add(src, key, text string) (string, error) {
	rel := s.rel(src)
	p := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		return "", err
	}
	s.keys[rel] = key
	return rel, nil
}

// addSiblings copies hand-written declarations and JSON files next to src
// into the stage, so imports of them resolve.
func (s *stage) addSiblings(src string) {
	dir := filepath.Dir(src)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".d.ts") || strings.HasSuffix(name, ".json")) {
			continue
		}
		abs := filepath.Join(dir, name)
		dst := filepath.Join(s.dir, filepath.FromSlash(s.rel(abs)))
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err == nil {
			_ = os.WriteFile(dst, data, 0o644)
		}
	}
}

func (s *stage) writeTsconfig(files []string, opts Options) (string, error) {
	co := map[string]any{
		"declaration":         true,
		"emitDeclarationOnly": true,
		"allowJs":             true,
		"skipLibCheck":        true,
		"strictNullChecks":    true,
		"declarationMap":      opts.DeclarationMap,
		"outDir":              stageOutDir,
		"rootDir":             ".",
	}
	for k, v := range opts.CompilerOptions {
		if reservedCompilerOptions[k] {
			continue
		}
		co[k] = v
	}

	data, err := json.MarshalIndent(map[string]any{
		"compilerOptions": co,
		"files":           files,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	p := filepath.Join(s.dir, "tsconfig.json")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

// run executes a TypeScript compiler over the staged files. A failing exit
// status that comes with file diagnostics is not an error: declarations
// are still emitted for the files that could be checked.
func (s *stage) run(ctx context.Context, bin string, files []string, opts Options, args ...string) ([]*oerrors.PositionError, error) {
	cfg, err := s.writeTsconfig(files, opts)
	if err != nil {
		return nil, fmt.Errorf("writing tsconfig: %w", err)
	}

	args = append(append([]string{}, args...), "-p", cfg, "--pretty", "false")
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = s.dir
	out, runErr := cmd.CombinedOutput()

	diags, general := parseDiagnostics(string(out), func(rel string) (string, bool) {
		key, ok := s.keys[rel]
		return key, ok
	})

	if runErr != nil {
		var exitErr *exec.ExitError
		tool := filepath.Base(bin)
		if !errors.As(runErr, &exitErr) || len(diags) == 0 {
			return nil, oerrors.NewToolchainError(
				fmt.Sprintf("%s failed: %s", tool, strings.TrimSpace(string(out))),
				map[string]string{"binary": bin},
				runErr,
			)
		}
	}
	for _, g := range general {
		output.Warn("typescript", "message", g)
	}
	return diags, nil
}

// collect copies the first existing emitted file among names (relative to
// the output directory) into vfs as the declaration of key. The matching
// map file is copied as well.
func (s *stage) collect(vfs VFS, key string, names ...string) bool {
	for _, name := range names {
		p := filepath.Join(s.dir, stageOutDir, filepath.FromSlash(name))
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		decl := DeclarationPath(key)
		vfs.Write(decl, string(data))
		if m, err := os.ReadFile(p + ".map"); err == nil {
			vfs.Write(decl+".map", retargetMap(string(m), path.Base(decl)))
		}
		return true
	}
	return false
}

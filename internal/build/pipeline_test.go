package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/mkdist/internal/dts"
	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/testutil"
	"github.com/opmodel/mkdist/internal/transpile"
)

func testOptions(root string) Options {
	opts := DefaultOptions()
	opts.RootDir = root
	opts.Sass.Enabled = false
	opts.TypeScript.ScriptBackend = dts.BuiltinBackend{}
	opts.TypeScript.ComponentBackend = dts.StubBackend{}
	return opts
}

func relWritten(t *testing.T, root string, res *Result) []string {
	t.Helper()
	out := make([]string, 0, len(res.WrittenFiles))
	for _, f := range res.WrittenFiles {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func readDist(t *testing.T, root, name string) string {
	t.Helper()
	return testutil.ReadFile(t, filepath.Join(root, "dist"), name)
}

var basicProject = map[string]string{
	"src/index.ts": "import bar from './bar'\nexport default bar\n",
	"src/bar.ts":   "export default 'bar'\n",
}

func TestRun_ESM(t *testing.T) {
	root := testutil.WriteProject(t, basicProject)

	res, err := Run(context.Background(), testOptions(root))
	require.NoError(t, err)
	assert.False(t, res.HasErrors(), spew.Sdump(res.Errors))

	assert.Equal(t, []string{"dist/bar.mjs", "dist/index.mjs"}, relWritten(t, root, res))
	assert.Contains(t, readDist(t, root, "index.mjs"), `from "./bar.mjs"`)
}

func TestRun_CJS(t *testing.T) {
	root := testutil.WriteProject(t, basicProject)
	opts := testOptions(root)
	opts.Format = transpile.FormatCJS

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"dist/bar.js", "dist/index.js"}, relWritten(t, root, res))
	assert.Contains(t, readDist(t, root, "index.js"), `require("./bar.js")`)
}

func TestRun_ExtensionOverride(t *testing.T) {
	root := testutil.WriteProject(t, basicProject)
	opts := testOptions(root)
	opts.Ext = "js"

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"dist/bar.js", "dist/index.js"}, relWritten(t, root, res))
	assert.Contains(t, readDist(t, root, "index.js"), `from "./bar.js"`)
}

func TestRun_Declarations(t *testing.T) {
	root := testutil.WriteProject(t, basicProject)
	opts := testOptions(root)
	opts.Declaration = true

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, res.HasErrors(), spew.Sdump(res.Errors))

	assert.Equal(t, []string{"dist/bar.d.ts", "dist/bar.mjs", "dist/index.d.ts", "dist/index.mjs"}, relWritten(t, root, res))
	assert.Contains(t, readDist(t, root, "index.d.ts"), "declare")
	assert.Contains(t, readDist(t, root, "bar.d.ts"), "declare")
}

// failingBackend emits nothing for files listed in fail and reports an
// error diagnostic for them.
type failingBackend struct {
	fail map[string]bool
}

func (failingBackend) Name() string { return "failing" }

func (b failingBackend) Emit(ctx context.Context, vfs dts.VFS, files []string, opts dts.Options) ([]*oerrors.PositionError, error) {
	var ok []string
	var diags []*oerrors.PositionError
	for _, f := range files {
		if b.fail[filepath.Base(f)] {
			diags = append(diags, &oerrors.PositionError{File: f, Line: 1, Column: 1, Code: "TS2304", Message: "Cannot find name 'x'."})
			continue
		}
		ok = append(ok, f)
	}
	more, err := dts.BuiltinBackend{}.Emit(ctx, vfs, ok, opts)
	return append(diags, more...), err
}

func TestRun_DeclarationFailureIsPerFile(t *testing.T) {
	root := testutil.WriteProject(t, basicProject)
	opts := testOptions(root)
	opts.Declaration = true
	opts.TypeScript.ScriptBackend = failingBackend{fail: map[string]bool{"bar.ts": true}}
	opts.TypeScript.CompilerOptions = map[string]any{"noEmitOnError": true}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, res.Errors, 1, spew.Sdump(res.Errors))
	assert.Equal(t, filepath.Join(root, "src", "bar.ts"), res.Errors[0].Filename)
	assert.ErrorIs(t, res.Errors[0].Errors[0], oerrors.ErrDeclaration)

	assert.Empty(t, readDist(t, root, "bar.d.ts"))
	assert.Contains(t, readDist(t, root, "index.d.ts"), "declare")
	assert.Contains(t, readDist(t, root, "bar.mjs"), "bar")
}

func TestRun_HandWrittenDeclarationWins(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"src/types.ts":   "export type A = string\n",
		"src/types.d.ts": "// hand written\nexport type A = string\n",
	})
	opts := testOptions(root)
	opts.Declaration = true

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"dist/types.d.ts", "dist/types.mjs"}, relWritten(t, root, res))
	assert.Equal(t, []string{"types.d.ts"}, res.Skipped)
	assert.True(t, strings.HasPrefix(readDist(t, root, "types.d.ts"), "// hand written"))
}

func TestRun_RelativeDeclarationExtensions(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"src/index.ts":      "export * from './star'\nexport { default as bar } from './bar'\n",
		"src/bar.ts":        "export default 1\n",
		"src/star/index.ts": "export const star = 1\n",
	})
	opts := testOptions(root)
	opts.Declaration = true
	opts.AddRelativeDeclarationExtensions = true

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	decl := readDist(t, root, "index.d.ts")
	assert.Contains(t, decl, `from './star/index.js'`)
	assert.Contains(t, decl, `from './bar.js'`)
	assert.Contains(t, readDist(t, root, "index.mjs"), `"./star/index.mjs"`)
}

// mapBackend emits a declaration with a map for every file.
type mapBackend struct{}

func (mapBackend) Name() string { return "map" }

func (mapBackend) Emit(_ context.Context, vfs dts.VFS, files []string, _ dts.Options) ([]*oerrors.PositionError, error) {
	for _, f := range files {
		decl := dts.DeclarationPath(f)
		base := filepath.Base(decl)
		vfs.Write(decl, "export declare const x: number;\n//# sourceMappingURL=stale.map\n")
		vfs.Write(decl+".map", `{"version":3,"file":"`+base+`","sources":["staged.ts"],"mappings":"AAAA"}`)
	}
	return nil, nil
}

func TestRun_DeclarationMaps(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{"src/lib/x.ts": "export const x = 1\n"})
	opts := testOptions(root)
	opts.Declaration = true
	opts.DeclarationMap = true
	opts.TypeScript.ScriptBackend = mapBackend{}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"dist/lib/x.d.ts", "dist/lib/x.d.ts.map", "dist/lib/x.mjs"}, relWritten(t, root, res))

	decl := readDist(t, root, "lib/x.d.ts")
	assert.NotContains(t, decl, "stale.map")
	assert.True(t, strings.HasSuffix(decl, "//# sourceMappingURL=x.d.ts.map\n"), decl)
	assert.Contains(t, readDist(t, root, "lib/x.d.ts.map"), `"sources":["../../src/lib/x.ts"]`)
}

func TestRun_HandWrittenDeclarationMapWins(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"src/lib/x.ts":       "export const x = 1\n",
		"src/lib/x.d.ts.map": `{"version":3,"hand":true}`,
	})
	opts := testOptions(root)
	opts.Declaration = true
	opts.DeclarationMap = true
	opts.TypeScript.ScriptBackend = mapBackend{}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"dist/lib/x.d.ts", "dist/lib/x.d.ts.map", "dist/lib/x.mjs"}, relWritten(t, root, res))
	assert.Equal(t, []string{"lib/x.d.ts.map"}, res.Skipped)
	assert.Equal(t, `{"version":3,"hand":true}`, readDist(t, root, "lib/x.d.ts.map"))
	assert.NotContains(t, readDist(t, root, "lib/x.d.ts"), "sourceMappingURL")
}

func TestRun_CopiesUnclaimedFiles(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"src/README.md":            "# readme\n",
		"src/components/Blank.vue": "<template><div /></template>\n",
		"src/styles/_vars.scss":    "$a: 1;\n",
	})

	res, err := Run(context.Background(), testOptions(root))
	require.NoError(t, err)

	assert.Equal(t, []string{"dist/README.md", "dist/components/Blank.vue", "dist/styles/_vars.scss"}, relWritten(t, root, res))
	assert.Equal(t, "<template><div /></template>\n", readDist(t, root, "components/Blank.vue"))
}

func TestRun_Patterns(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"src/index.ts":      "export const a = 1\n",
		"src/index.test.ts": "export const t = 1\n",
	})
	opts := testOptions(root)
	opts.Patterns = []string{"**", "!**/*.test.ts"}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"dist/index.mjs"}, relWritten(t, root, res))
}

func TestRun_CleanDist(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"src/index.ts":   "export const a = 1\n",
		"dist/stale.mjs": "old",
	})

	tests := []struct {
		name      string
		clean     bool
		wantStale bool
	}{
		{name: "clean", clean: true, wantStale: false},
		{name: "keep", clean: false, wantStale: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(root, "dist", "stale.mjs"), []byte("old"), 0o644))
			opts := testOptions(root)
			opts.CleanDist = tt.clean

			_, err := Run(context.Background(), opts)
			require.NoError(t, err)

			_, statErr := os.Stat(filepath.Join(root, "dist", "stale.mjs"))
			assert.Equal(t, tt.wantStale, statErr == nil)
		})
	}
}

func TestRun_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(root string) Options
		wantErr error
	}{
		{
			name: "missing source directory",
			setup: func(root string) Options {
				opts := testOptions(root)
				opts.SrcDir = "nope"
				return opts
			},
			wantErr: oerrors.ErrNotFound,
		},
		{
			name: "missing root",
			setup: func(root string) Options {
				return testOptions(filepath.Join(root, "missing"))
			},
			wantErr: oerrors.ErrNotFound,
		},
		{
			name: "dist is the source directory",
			setup: func(root string) Options {
				opts := testOptions(root)
				opts.DistDir = "src"
				return opts
			},
			wantErr: oerrors.ErrConfig,
		},
		{
			name: "dist is the root",
			setup: func(root string) Options {
				opts := testOptions(root)
				opts.DistDir = "."
				return opts
			},
			wantErr: oerrors.ErrConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutil.WriteProject(t, basicProject)
			_, err := Run(context.Background(), tt.setup(root))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			// sources are never touched
			_, statErr := os.Stat(filepath.Join(root, "src", "index.ts"))
			assert.NoError(t, statErr)
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	root := testutil.WriteProject(t, basicProject)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testOptions(root))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileError(t *testing.T) {
	err := FileError{Filename: "a.ts", Errors: []error{assert.AnError, assert.AnError}}
	assert.Equal(t, "a.ts: "+assert.AnError.Error()+"; "+assert.AnError.Error(), err.Error())
}

func TestIsWithin(t *testing.T) {
	sep := string(filepath.Separator)
	assert.True(t, isWithin(sep+filepath.Join("a", "b"), sep+"a"))
	assert.False(t, isWithin(sep+"a", sep+"a"))
	assert.False(t, isWithin(sep+"ab", sep+"a"))
	assert.False(t, isWithin(sep+"a", sep+filepath.Join("a", "b")))
}

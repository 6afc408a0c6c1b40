package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/mkdist/internal/errors"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.file)
	assert.NotNil(t, loader.env)
}

func TestLoaderLoadFile(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "mkdist.yaml")

		content := `
srcDir: lib
distDir: out
pattern: ["**", "!**/*.test.ts"]
format: cjs
declaration: true
loaders: [js, sass]
alias:
  "@Utils": ./utils
esbuild:
  minify: true
  define:
    __DEV__: "false"
postcss:
  autoprefixer: false
typescript:
  compilerOptions:
    noEmitOnError: true
    strictNullChecks: false
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		cfg, err := NewLoader().LoadFile(configFile)
		require.NoError(t, err)

		assert.Equal(t, "lib", cfg.SrcDir)
		assert.Equal(t, "out", cfg.DistDir)
		assert.Equal(t, []string{"**", "!**/*.test.ts"}, cfg.Pattern)
		assert.Equal(t, "cjs", cfg.Format)
		require.NotNil(t, cfg.Declaration)
		assert.True(t, *cfg.Declaration)
		assert.Nil(t, cfg.CleanDist)
		assert.Equal(t, []string{"js", "sass"}, cfg.Loaders)
		assert.Equal(t, map[string]string{"@Utils": "./utils"}, cfg.Alias)
		assert.True(t, Bool(cfg.Esbuild.Minify))
		assert.Equal(t, map[string]string{"__DEV__": "false"}, cfg.Esbuild.Define)
		require.NotNil(t, cfg.Postcss.Autoprefixer)
		assert.False(t, *cfg.Postcss.Autoprefixer)
		assert.Equal(t, map[string]any{"noEmitOnError": true, "strictNullChecks": false}, cfg.TypeScript.CompilerOptions)
	})

	t.Run("empty path is an empty layer", func(t *testing.T) {
		cfg, err := NewLoader().LoadFile("")
		require.NoError(t, err)
		assert.Equal(t, &Config{}, cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, oerrors.ErrNotFound)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "mkdist.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("format: [unclosed\n"), 0o644))

		_, err := NewLoader().LoadFile(configFile)
		require.Error(t, err)
		assert.ErrorIs(t, err, oerrors.ErrConfig)
	})
}

func TestLoaderLoadEnv(t *testing.T) {
	t.Setenv("MKDIST_FORMAT", "cjs")
	t.Setenv("MKDIST_DECLARATION", "true")
	t.Setenv("MKDIST_PATTERN", "**/*.ts,!**/*.spec.ts")
	t.Setenv("MKDIST_ESBUILD_MINIFY", "true")
	t.Setenv("MKDIST_SASS_ENABLED", "false")

	cfg, err := NewLoader().LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "cjs", cfg.Format)
	assert.True(t, Bool(cfg.Declaration))
	assert.Equal(t, []string{"**/*.ts", "!**/*.spec.ts"}, cfg.Pattern)
	assert.True(t, Bool(cfg.Esbuild.Minify))
	require.NotNil(t, cfg.Sass.Enabled)
	assert.False(t, *cfg.Sass.Enabled)
	assert.Nil(t, cfg.CleanDist)
	assert.Empty(t, cfg.SrcDir)
}

func TestLoaderLoadDotenv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("MKDIST_TEST_DOTENV=from-file\nMKDIST_TEST_KEEP=from-file\n"), 0o644))

	t.Setenv("MKDIST_TEST_KEEP", "from-env")
	t.Cleanup(func() { os.Unsetenv("MKDIST_TEST_DOTENV") })

	require.NoError(t, NewLoader().LoadDotenv(root))
	assert.Equal(t, "from-file", os.Getenv("MKDIST_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("MKDIST_TEST_KEEP"))

	// no file
	assert.NoError(t, NewLoader().LoadDotenv(t.TempDir()))
}

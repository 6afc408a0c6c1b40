package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/mkdist/internal/artifact"
)

func sassOptions(c *fakeSass) Options {
	opts := testOptions()
	opts.RootDir = "/proj"
	opts.SrcDir = "/proj/src"
	opts.Sass = SassOptions{Enabled: true, Compiler: c, IncludePaths: []string{"/extra"}}
	return opts
}

func TestSassUnit_Compiles(t *testing.T) {
	c := &fakeSass{available: true}
	outs, err := load(sassOptions(c), []string{"sass"}, artifact.Synthetic("styles/main.scss", "/proj/src/styles/main.scss", ".a { .b { color: red } }"))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, ".css", outs[0].Extension)
	assert.Equal(t, "styles/main.css", outs[0].FinalPath())
	assert.Contains(t, outs[0].Contents, "/* scss */")

	require.Len(t, c.include, 1)
	assert.Equal(t, []string{
		filepath.Join("/proj/src", "styles"),
		"/proj/src",
		filepath.Join("/proj", "node_modules"),
		"/extra",
	}, c.include[0])
}

func TestSassUnit_SkipsPartials(t *testing.T) {
	c := &fakeSass{available: true}
	outs, err := load(sassOptions(c), []string{"sass"}, artifact.Synthetic("_vars.scss", "/proj/src/_vars.scss", "$a: 1;"))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Skip)
	assert.Empty(t, outs[0].Errors)
	assert.Empty(t, c.calls)
}

func TestSassUnit_SkipsPartialsWithoutCompiler(t *testing.T) {
	outs, err := load(sassOptions(&fakeSass{available: false}), []string{"sass"}, artifact.Synthetic("_mixins.sass", "/proj/src/_mixins.sass", "=m"))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Skip)
	assert.Empty(t, outs[0].Contents)
}

func TestSassUnit_CompileErrorIsPerFile(t *testing.T) {
	c := &fakeSass{available: true, fail: true}
	outs, err := load(sassOptions(c), []string{"sass"}, artifact.Synthetic("a.sass", "/proj/src/a.sass", ".a"))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Skip)
	require.Len(t, outs[0].Errors, 1)
	assert.Contains(t, outs[0].Errors[0].Error(), "compiling a.sass")
}

func TestSassUnit_MissingCompilerDeclines(t *testing.T) {
	c := &fakeSass{available: false}
	outs, err := load(sassOptions(c), []string{"sass"}, artifact.Synthetic("a.scss", "/proj/src/a.scss", ".a{}"))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Raw)
}

func TestSassUnit_DisabledDeclines(t *testing.T) {
	opts := sassOptions(&fakeSass{available: true})
	opts.Sass.Enabled = false
	outs, err := load(opts, []string{"sass"}, artifact.Synthetic("a.scss", "/proj/src/a.scss", ".a{}"))
	require.NoError(t, err)
	assert.True(t, outs[0].Raw)
}

func TestSassUnit_DisabledStillSkipsPartials(t *testing.T) {
	opts := sassOptions(&fakeSass{available: true})
	opts.Sass.Enabled = false
	outs, err := load(opts, []string{"sass"}, artifact.Synthetic("_vars.scss", "/proj/src/_vars.scss", "$a: 1;"))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Skip)
}

func TestSassUnit_RunsPostStages(t *testing.T) {
	c := &fakeSass{available: true}
	opts := sassOptions(c)
	opts.Postcss.Enabled = true
	opts.Postcss.Minify = true

	outs, err := load(opts, []string{"sass"}, artifact.Synthetic("a.scss", "/proj/src/a.scss", ".a { color: red; }"))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, ".a{color:red}\n", outs[0].Contents)
}

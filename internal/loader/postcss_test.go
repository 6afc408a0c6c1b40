package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/style"
)

func TestPostcssUnit(t *testing.T) {
	opts := testOptions()
	opts.Postcss = PostcssOptions{Enabled: true, PostOptions: style.PostOptions{Nested: true}}

	outs, err := load(opts, []string{"postcss"}, artifact.Synthetic("a.css", "/src/a.css", ".a { color: red; .b { color: blue; } }"))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, ".css", outs[0].Extension)
	assert.Contains(t, outs[0].Contents, ".a .b {")
}

func TestPostcssUnit_Disabled(t *testing.T) {
	outs, err := load(testOptions(), []string{"postcss"}, artifact.Synthetic("a.css", "/src/a.css", ".a{}"))
	require.NoError(t, err)
	assert.True(t, outs[0].Raw)
}

func TestPostcssUnit_IgnoresOtherFiles(t *testing.T) {
	opts := testOptions()
	opts.Postcss.Enabled = true
	outs, err := load(opts, []string{"postcss"}, artifact.Synthetic("a.scss", "/src/a.scss", ".a{}"))
	require.NoError(t, err)
	assert.True(t, outs[0].Raw)
}

package style

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSassCompiler_MissingBinary(t *testing.T) {
	c := NewSassCompiler("/nonexistent/sass-binary")
	assert.False(t, c.Available())

	_, err := c.Compile("a { b: c }", SyntaxSCSS, nil)
	assert.ErrorIs(t, err, ErrSassUnavailable)
	assert.NoError(t, c.Close())
}

func TestSassCompiler_Compile(t *testing.T) {
	if _, err := exec.LookPath("sass"); err != nil {
		t.Skip("sass not installed")
	}
	c := NewSassCompiler("")
	if !c.Available() {
		t.Skip("sass does not support the embedded protocol")
	}
	defer c.Close()

	css, err := c.Compile("$c: red;\n.a { .b { color: $c; } }", SyntaxSCSS, nil)
	require.NoError(t, err)
	assert.Contains(t, css, ".a .b {\n  color: red;\n}")
}

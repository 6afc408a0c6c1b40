package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err, "should get home directory")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "no tilde", input: "/absolute/path", expected: "/absolute/path"},
		{name: "relative path without tilde", input: "relative/path", expected: "relative/path"},
		{name: "tilde only", input: "~", expected: homeDir},
		{name: "tilde with path", input: "~/.config/mkdist.yaml", expected: filepath.Join(homeDir, ".config/mkdist.yaml")},
		{name: "tilde username unsupported", input: "~other/x", expected: "~other/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolvePath(t *testing.T) {
	base := filepath.FromSlash("/proj")

	got, err := ResolvePath(base, "src")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "src"), got)

	abs := filepath.FromSlash("/elsewhere/dist")
	got, err = ResolvePath(base, abs)
	require.NoError(t, err)
	assert.Equal(t, abs, got)
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	assert.Empty(t, FindConfigFile(root))

	yml := filepath.Join(root, "mkdist.yml")
	require.NoError(t, os.WriteFile(yml, []byte("format: esm\n"), 0o644))
	assert.Equal(t, yml, FindConfigFile(root))

	yaml := filepath.Join(root, "mkdist.yaml")
	require.NoError(t, os.WriteFile(yaml, []byte("format: esm\n"), 0o644))
	assert.Equal(t, yaml, FindConfigFile(root), "mkdist.yaml is preferred")
}

package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o644))
	}
	return root
}

func paths(t *testing.T, dir string, patterns []string) []string {
	t.Helper()
	inputs, err := Enumerate(dir, patterns)
	require.NoError(t, err)
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, in.Path)
	}
	return out
}

func TestEnumerate(t *testing.T) {
	dir := writeTree(t,
		"index.ts",
		"bar.ts",
		"components/Button.vue",
		"styles/_vars.scss",
		"styles/main.scss",
		"README.md",
		".hidden/secret.ts",
		".env",
		"node_modules/dep/index.js",
	)

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name: "default matches everything",
			want: []string{"README.md", "bar.ts", "components/Button.vue", "index.ts", "styles/_vars.scss", "styles/main.scss"},
		},
		{
			name:     "extension filter",
			patterns: []string{"**/*.ts"},
			want:     []string{"bar.ts", "index.ts"},
		},
		{
			name:     "negation",
			patterns: []string{"**", "!**/*.md", "!styles/**"},
			want:     []string{"bar.ts", "components/Button.vue", "index.ts"},
		},
		{
			name:     "only negations keep the default include",
			patterns: []string{"!**/*.scss"},
			want:     []string{"README.md", "bar.ts", "components/Button.vue", "index.ts"},
		},
		{
			name:     "directory",
			patterns: []string{"components/**"},
			want:     []string{"components/Button.vue"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paths(t, dir, tt.patterns))
		})
	}
}

func TestEnumerate_Inputs(t *testing.T) {
	dir := writeTree(t, "a/b.ts")
	inputs, err := Enumerate(dir, nil)
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	in := inputs[0]
	assert.Equal(t, "a/b.ts", in.Path)
	assert.Equal(t, ".ts", in.Extension)
	assert.Equal(t, filepath.Join(dir, "a", "b.ts"), in.SourcePath)

	text, err := in.Contents()
	require.NoError(t, err)
	assert.Equal(t, "a/b.ts", text)
}

func TestEnumerate_MissingDir(t *testing.T) {
	_, err := Enumerate(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

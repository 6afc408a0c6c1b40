package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/output"
	"github.com/opmodel/mkdist/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

var project = map[string]string{
	"mkdist.yaml":  "sass:\n  enabled: false\n",
	"src/index.ts": "import bar from './bar'\nexport default bar\n",
	"src/bar.ts":   "export default 'bar'\n",
}

func TestBuildCmd_Report(t *testing.T) {
	root := testutil.WriteProject(t, project)

	stdout, _, err := execute(t, root, "--report", "json")
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, root, report.RootDir)
	assert.Equal(t, "dist", report.DistDir)
	assert.Equal(t, []string{"dist/bar.mjs", "dist/index.mjs"}, report.WrittenFiles)
	assert.Empty(t, report.Errors)
}

func TestBuildCmd_FlagsOverrideConfig(t *testing.T) {
	files := map[string]string{}
	for k, v := range project {
		files[k] = v
	}
	files["mkdist.yaml"] = "format: esm\ndistDir: lib\nsass:\n  enabled: false\n"
	root := testutil.WriteProject(t, files)

	stdout, _, err := execute(t, root, "--format", "cjs", "--report", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "lib/index.js")

	assert.Contains(t, testutil.ReadFile(t, root, "lib/index.js"), `require("./bar.js")`)
}

func TestBuildCmd_EnvLayer(t *testing.T) {
	root := testutil.WriteProject(t, project)
	t.Setenv("MKDIST_DISTDIR", "out")

	_, _, err := execute(t, root, "--pattern", "index.ts")
	require.NoError(t, err)

	assert.True(t, testutil.Exists(t, root, "out/index.mjs"))
	assert.False(t, testutil.Exists(t, root, "out/bar.mjs"))
}

func TestBuildCmd_Summary(t *testing.T) {
	root := testutil.WriteProject(t, project)

	stdout, _, err := execute(t, root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Built 2 files into")
}

func TestBuildCmd_VerboseListsFiles(t *testing.T) {
	root := testutil.WriteProject(t, project)

	stdout, _, err := execute(t, root, "-v", "--timestamps=false")
	require.NoError(t, err)
	assert.Contains(t, stdout, "index.mjs")
	assert.Contains(t, stdout, "bar.mjs")
}

func TestBuildCmd_PerFileErrors(t *testing.T) {
	files := map[string]string{
		"mkdist.yaml":   "sass:\n  enabled: false\n",
		"src/good.ts":   "export const ok = 1\n",
		"src/broken.ts": "export const = ;\n",
	}
	root := testutil.WriteProject(t, files)

	_, stderr, err := execute(t, root)
	require.Error(t, err)

	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, oerrors.ExitGeneralError, exitErr.Code)
	assert.True(t, exitErr.Printed)
	assert.Contains(t, stderr, "src/broken.ts")

	assert.True(t, testutil.Exists(t, root, "dist/good.mjs"), "other files are still written")
}

func TestBuildCmd_FatalErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(root string) []string
		wantCode int
	}{
		{
			name:     "invalid report format",
			args:     func(root string) []string { return []string{root, "--report", "xml"} },
			wantCode: oerrors.ExitConfigError,
		},
		{
			name:     "invalid module format",
			args:     func(root string) []string { return []string{root, "--format", "umd"} },
			wantCode: oerrors.ExitConfigError,
		},
		{
			name:     "missing source directory",
			args:     func(root string) []string { return []string{root, "--src", "nope"} },
			wantCode: oerrors.ExitNotFound,
		},
		{
			name:     "missing config file",
			args:     func(root string) []string { return []string{root, "--config", filepath.Join(root, "missing.yaml")} },
			wantCode: oerrors.ExitNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutil.WriteProject(t, project)
			_, _, err := execute(t, tt.args(root)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, oerrors.ExitCodeFromError(err))
		})
	}
}

func TestRelTo(t *testing.T) {
	root := filepath.FromSlash("/proj")
	assert.Equal(t, "dist/a.mjs", relTo(root, filepath.Join(root, "dist", "a.mjs")))
	assert.Equal(t, "src/a.ts", relTo(root, "src/a.ts"))
}

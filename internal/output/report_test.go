package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() Report {
	return Report{
		RootDir:      "/project",
		DistDir:      "dist",
		WrittenFiles: []string{"dist/index.mjs", "dist/index.d.ts"},
		Errors: []ReportError{
			{Filename: "src/broken.ts", Errors: []string{"TS2322: bad"}},
		},
	}
}

func TestWriteReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, ReportYAML, sampleReport()))

	var decoded Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleReport(), decoded)
	assert.Contains(t, buf.String(), "writtenFiles:")
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, ReportJSON, sampleReport()))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleReport(), decoded)
}

func TestWriteReport_NoneWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, ReportNone, sampleReport()))
	assert.Empty(t, buf.String())
}

func TestWriteReport_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteReport(&buf, ReportFormat("xml"), sampleReport()))
}

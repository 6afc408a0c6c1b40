package dts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiagnostics(t *testing.T) {
	out := "src/a.ts(3,7): error TS2322: Type 'string' is not assignable to type 'number'.\n" +
		"  The expected type comes from property 'x'.\n" +
		"node_modules/x/index.d.ts(1,1): error TS1005: ';' expected.\n" +
		"error TS5023: Unknown compiler option 'foo'.\n" +
		"src/b.ts(10,1): error TS1128: Declaration or statement expected.\r\n"

	keys := map[string]string{"src/a.ts": "/p/src/a.ts", "src/b.ts": "/p/src/b.ts"}
	diags, general := parseDiagnostics(out, func(rel string) (string, bool) {
		k, ok := keys[rel]
		return k, ok
	})

	require.Len(t, diags, 2)
	assert.Equal(t, "/p/src/a.ts", diags[0].File)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, 7, diags[0].Column)
	assert.Equal(t, "TS2322", diags[0].Code)
	assert.Equal(t, "Type 'string' is not assignable to type 'number'. The expected type comes from property 'x'.", diags[0].Message)

	assert.Equal(t, "/p/src/b.ts", diags[1].File)
	assert.Equal(t, "TS1128", diags[1].Code)

	assert.Equal(t, []string{"TS5023: Unknown compiler option 'foo'."}, general)
}

func TestParseDiagnostics_Empty(t *testing.T) {
	diags, general := parseDiagnostics("", func(string) (string, bool) { return "", true })
	assert.Empty(t, diags)
	assert.Empty(t, general)
}

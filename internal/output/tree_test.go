package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderFileTree(t *testing.T) {
	out := RenderFileTree("dist", map[string]string{
		"index.mjs":           "index.ts",
		"components/card.vue": "",
		"utils/format.mjs":    "utils/format.ts",
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[0], "dist/")
	assert.Contains(t, out, "components/")
	assert.Contains(t, out, "└── index.mjs")
	assert.Contains(t, out, "utils/format.ts")

	// directories come before files
	assert.Less(t, strings.Index(out, "components/"), strings.Index(out, "index.mjs"))
}

func TestRenderFileTree_Empty(t *testing.T) {
	assert.Empty(t, RenderFileTree("dist", nil))
}

package loader

import (
	"context"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/sfc"
)

const typedComponent = `<template>
  <button @click="onClick($event as MouseEvent)">{{ msg! }}</button>
</template>

<script setup lang="ts">
const props = defineProps<{ msg: string }>()
function onClick(e: MouseEvent) {}
</script>

<style scoped lang="scss">
.a { color: red }
</style>
`

func vueOptions(enhanced bool) Options {
	opts := testOptions()
	opts.Sass = SassOptions{Enabled: true, Compiler: &fakeSass{available: true}}
	opts.Vue.Transformer = sfc.NewProvider(sfc.EnhancedProbe(enhanced))
	return opts
}

func findOutput(outs []*artifact.Output, p string) *artifact.Output {
	for _, o := range outs {
		if o.Path == p {
			return o
		}
	}
	return nil
}

func TestVueUnit_TypedComponent(t *testing.T) {
	in := artifact.Synthetic("Comp.vue", "/src/Comp.vue", typedComponent)
	outs, err := load(vueOptions(true), nil, in)
	require.NoError(t, err)

	main := findOutput(outs, "Comp.vue")
	require.NotNil(t, main, spew.Sdump(outs))
	assert.False(t, main.Raw)
	assert.Empty(t, main.Errors)

	assert.Contains(t, main.Contents, "<script setup>\n")
	assert.Contains(t, main.Contents, "msg: { type: String, required: true }")
	assert.NotContains(t, main.Contents, "defineProps<")
	assert.NotContains(t, main.Contents, "e: MouseEvent")

	assert.Contains(t, main.Contents, `@click="onClick($event)"`)
	assert.Contains(t, main.Contents, "{{ msg }}")

	assert.Contains(t, main.Contents, "<style scoped>\n/* scss */\n.a { color: red }\n</style>\n")
}

func TestVueUnit_BaselineLeavesTypedScripts(t *testing.T) {
	in := artifact.Synthetic("Comp.vue", "/src/Comp.vue", typedComponent)
	outs, err := load(vueOptions(false), nil, in)
	require.NoError(t, err)

	main := findOutput(outs, "Comp.vue")
	require.NotNil(t, main)
	assert.False(t, main.Raw)
	assert.Contains(t, main.Contents, "<script setup lang=\"ts\">\nconst props = defineProps<{ msg: string }>()")
	assert.Contains(t, main.Contents, "{{ msg! }}")
	assert.Contains(t, main.Contents, "/* scss */")
}

func TestVueUnit_UnmodifiedIsRaw(t *testing.T) {
	src := "<template><div /></template>\n<script>export default {}</script>\n"
	outs, err := load(vueOptions(true), []string{"vue"}, artifact.Synthetic("A.vue", "/src/A.vue", src))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Raw)
}

func TestVueUnit_PlainScriptTranspiled(t *testing.T) {
	src := "<template><div /></template>\n<script>\nexport default { name: 'A' }\n</script>\n"
	outs, err := load(vueOptions(true), nil, artifact.Synthetic("A.vue", "/src/A.vue", src))
	require.NoError(t, err)
	main := findOutput(outs, "A.vue")
	require.NotNil(t, main)
	assert.Equal(t, "<template>\n<div />\n</template>\n\n<script>\nexport default { name: \"A\" };\n</script>\n", main.Contents)
}

func TestVueUnit_GenericBypass(t *testing.T) {
	src := "<script setup lang=\"ts\" generic=\"T\">\ndefineProps<{ item: T }>()\n</script>\n"
	outs, err := load(vueOptions(true), nil, artifact.Synthetic("G.vue", "/src/G.vue", src))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Raw)
}

func TestVueUnit_UnresolvableTypeBypass(t *testing.T) {
	src := "<script setup lang=\"ts\">\nimport type { Props } from './types'\ndefineProps<Props>()\n</script>\n"
	outs, err := load(vueOptions(true), nil, artifact.Synthetic("P.vue", "/src/P.vue", src))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Raw)
}

func TestVueUnit_Declaration(t *testing.T) {
	opts := vueOptions(true)
	opts.Declaration = true

	in := artifact.Synthetic("Comp.vue", "/src/Comp.vue", typedComponent)
	outs, err := load(opts, nil, in)
	require.NoError(t, err)

	var decls []*artifact.Output
	for _, o := range outs {
		if o.Declaration {
			decls = append(decls, o)
		}
	}
	require.Len(t, decls, 1, "block declarations are dropped")
	assert.Equal(t, "Comp.vue.ts", decls[0].Path)
	assert.Equal(t, "/src/Comp.vue.ts", decls[0].SourcePath)
	assert.Equal(t, ".d.ts", decls[0].Extension)
	assert.Equal(t, "Comp.vue.d.ts", decls[0].FinalPath())
	assert.Equal(t, typedComponent, decls[0].Contents)
}

func TestVueUnit_DeclarationForRawComponent(t *testing.T) {
	opts := vueOptions(true)
	opts.Declaration = true

	outs, err := load(opts, []string{"vue"}, artifact.Synthetic("A.vue", "/src/A.vue", "<template><div /></template>\n"))
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.True(t, outs[0].Raw)
	assert.Equal(t, "A.vue.js", outs[1].Path)
}

func TestVueUnit_RecursiveBlockIsPerFileError(t *testing.T) {
	src := "<script lang=\"vue\">nope</script>\n"
	outs, err := load(vueOptions(true), nil, artifact.Synthetic("R.vue", "/src/R.vue", src))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Raw)
	require.Len(t, outs[0].Errors, 1)
	assert.ErrorIs(t, outs[0].Errors[0], ErrRecursiveComposite)
}

func TestVueUnit_IgnoresOtherFiles(t *testing.T) {
	outs, err := (vueUnit{}).Load(context.Background(), artifact.Synthetic("a.ts", "", ""), &Context{Options: testOptions()})
	require.NoError(t, err)
	assert.Nil(t, outs)
}

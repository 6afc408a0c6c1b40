package dts

import (
	"context"
	"fmt"
	"strings"

	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/output"
	"github.com/opmodel/mkdist/internal/version"
)

// StubDeclaration is written for components when vue-tsc is unavailable.
const StubDeclaration = "declare const _default: import(\"vue\").DefineComponent<{}, {}, any>;\nexport default _default;\n"

// StubBackend declares every component as an untyped component.
type StubBackend struct{}

func (StubBackend) Name() string { return "stub" }

func (StubBackend) Emit(_ context.Context, vfs VFS, files []string, _ Options) ([]*oerrors.PositionError, error) {
	for _, f := range files {
		vfs.Write(DeclarationPath(f), StubDeclaration)
	}
	return nil, nil
}

// vueStrategy captures how a vue-tsc release line is invoked and where it
// writes declarations.
type vueStrategy struct {
	name string
	args []string
	// outputs lists candidate declaration names for a staged component, in
	// order of preference.
	outputs func(rel string) []string
}

var (
	vueLegacy = vueStrategy{
		name: "vue-tsc<2.0",
		args: []string{"--declaration", "--emitDeclarationOnly"},
		outputs: func(rel string) []string {
			return []string{rel + ".d.ts"}
		},
	}
	vue20 = vueStrategy{
		name: "vue-tsc 2.0",
		outputs: func(rel string) []string {
			return []string{rel + ".d.ts"}
		},
	}
	vue21 = vueStrategy{
		name: "vue-tsc>=2.1",
		outputs: func(rel string) []string {
			return []string{rel + ".d.ts", strings.TrimSuffix(rel, ".vue") + ".d.vue.ts"}
		},
	}
)

func strategyFor(v string) vueStrategy {
	major, minor, _, ok := version.Semver(v)
	switch {
	case !ok || major < 2:
		return vueLegacy
	case major == 2 && minor == 0:
		return vue20
	}
	return vue21
}

// VueTscBackend emits component declarations with vue-tsc.
type VueTscBackend struct {
	Binary   string
	Version  string
	strategy vueStrategy
}

// NewVueTscBackend picks the invocation strategy for the given vue-tsc version.
func NewVueTscBackend(binary, ver string) *VueTscBackend {
	return &VueTscBackend{Binary: binary, Version: ver, strategy: strategyFor(ver)}
}

func (b *VueTscBackend) Name() string { return b.strategy.name }

// Emit stages each component under its real name: a key "Comp.vue.ts"
// holds the source of "Comp.vue".
func (b *VueTscBackend) Emit(ctx context.Context, vfs VFS, files []string, opts Options) ([]*oerrors.PositionError, error) {
	st, err := newStage(opts.RootDir)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	staged := make([]string, 0, len(files))
	for _, f := range files {
		text, ok := vfs.Read(f)
		if !ok {
			return nil, fmt.Errorf("component source %s is not in the file set", f)
		}
		comp := componentKeyRe.ReplaceAllString(f, ".vue")
		rel, err := st.add(comp, f, text)
		if err != nil {
			return nil, fmt.Errorf("staging %s: %w", comp, err)
		}
		st.addSiblings(comp)
		staged = append(staged, rel)
	}

	diags, err := st.run(ctx, b.Binary, staged, opts, b.strategy.args...)
	if err != nil {
		return nil, err
	}

	for i, f := range files {
		if !st.collect(vfs, f, b.strategy.outputs(staged[i])...) {
			output.Debug("no component declaration emitted, using stub", "file", f)
			vfs.Write(DeclarationPath(f), StubDeclaration)
		}
	}
	return diags, nil
}

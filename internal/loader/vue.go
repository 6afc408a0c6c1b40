package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/opmodel/mkdist/internal/artifact"
	"github.com/opmodel/mkdist/internal/output"
	"github.com/opmodel/mkdist/internal/sfc"
)

const vueTransformerMissing = "[mkdist] vue-sfc-transformer is not installed, mkdist will not transforme typescript syntax in the Vue SFC"

// vueUnit transforms the blocks of single-file components by running them
// back through the chain.
type vueUnit struct{}

func (vueUnit) Name() string { return "vue" }

func (vueUnit) Load(ctx context.Context, in artifact.Input, lc *Context) ([]*artifact.Output, error) {
	if in.Extension != ".vue" {
		return nil, nil
	}

	src, err := in.Contents()
	if err != nil {
		return nil, err
	}

	desc, err := sfc.Parse(src)
	if err != nil {
		output.Warn("cannot parse component, copying as-is", "file", in.Path, "err", err)
		return vuePassthrough(in, lc, nil), nil
	}

	provider := lc.Options.Vue.Transformer
	if provider == nil {
		provider = sfc.NewProvider(sfc.EnhancedProbe(false))
	}
	tr, enhanced := provider.Get()
	if !enhanced {
		output.WarnOnce("vue-transformer", vueTransformerMissing)
	}

	script, setup := desc.Scripts()
	typed := isTyped(script) || isTyped(setup)

	setupBody := ""
	if setup != nil {
		setupBody = setup.Content
		if enhanced && isTyped(setup) {
			if _, generic := setup.Attr("generic"); generic {
				output.Warn("generic components are copied as-is", "file", in.Path)
				return vuePassthrough(in, lc, desc), nil
			}
			plain := ""
			if script != nil {
				plain = script.Content
			}
			setupBody, err = tr.ExpandMacros(ctx, setup.Content, plain, setup.Lang() == "tsx")
			if err != nil {
				var bypass *sfc.BypassError
				if errors.As(err, &bypass) {
					output.Warn("typed component copied as-is", "file", in.Path, "reason", bypass.Error())
					return vuePassthrough(in, lc, desc), nil
				}
				return nil, err
			}
		}
	}

	sub := lc.Expanding(".vue")
	main := &artifact.Output{Path: in.Path, SourcePath: in.SourcePath}
	var (
		extras   []*artifact.Output
		blocks   []sfc.AssembledBlock
		modified bool
	)

	for _, b := range desc.Blocks {
		ab := sfc.AssembledBlock{Tag: b.Type, Attrs: b.RawAttrs, Body: b.Content}

		switch b.Type {
		case "script", "style":
			if b.Type == "script" && isTyped(b) && !enhanced {
				break
			}
			body := b.Content
			if b == setup {
				body = setupBody
			}
			lang := b.Lang()
			if lang == "" {
				lang = map[string]string{"script": "js", "style": "css"}[b.Type]
			}

			subIn := artifact.Synthetic(in.Path+"."+lang, sourcePathOf(in)+"."+lang, body)
			subIn.Block = b.Type
			outs, err := sub.Reinvoke(ctx, subIn)
			if errors.Is(err, ErrRecursiveComposite) {
				main.AddError(err)
				break
			}
			if err != nil {
				return nil, err
			}

			primary, rest := splitPrimary(outs, subIn.Path)
			for _, o := range outs {
				main.Errors = append(main.Errors, o.Errors...)
			}
			extras = append(extras, rest...)
			if primary != nil {
				ab.Body = primary.Contents
				ab.Attrs = b.AttrsWithoutLang()
				modified = true
			}

		case "template":
			if !enhanced || !typed || b.Lang() != "" {
				break
			}
			body, err := tr.TranspileTemplate(b.Content)
			if err != nil {
				output.Debug("template left as-is", "file", in.Path, "err", err)
				break
			}
			if body != b.Content {
				ab.Body = body
				modified = true
			}
		}

		blocks = append(blocks, ab)
	}

	if !modified {
		outs := vuePassthrough(in, lc, desc)
		outs[0].Errors = main.Errors
		return outs, nil
	}

	main.Contents = sfc.Assemble(blocks)
	outs := append([]*artifact.Output{main}, extras...)
	if d := vueDeclaration(in, lc, desc, src); d != nil {
		outs = append(outs, d)
	}
	return outs, nil
}

// splitPrimary picks the artifact carrying a block's transformed body and
// returns the remaining artifacts except declarations.
func splitPrimary(outs []*artifact.Output, subPath string) (*artifact.Output, []*artifact.Output) {
	var primary *artifact.Output
	for _, o := range outs {
		if usable(o) && o.Path == subPath {
			primary = o
			break
		}
	}
	if primary == nil {
		for _, o := range outs {
			if !usable(o) {
				continue
			}
			switch o.Extension {
			case ".js", ".mjs", ".cjs", ".css":
				primary = o
			}
			if primary != nil {
				break
			}
		}
	}

	var rest []*artifact.Output
	for _, o := range outs {
		if o == primary || o.Declaration || o.Skip {
			continue
		}
		rest = append(rest, o)
	}
	return primary, rest
}

func usable(o *artifact.Output) bool {
	return !o.Raw && !o.Skip && !o.Declaration && o.Contents != ""
}

func isTyped(b *sfc.Block) bool {
	if b == nil {
		return false
	}
	lang := b.Lang()
	return lang == "ts" || lang == "tsx"
}

func vuePassthrough(in artifact.Input, lc *Context, desc *sfc.Descriptor) []*artifact.Output {
	outs := []*artifact.Output{artifact.RawOutput(in)}
	if desc == nil {
		return outs
	}
	src, err := in.Contents()
	if err != nil {
		return outs
	}
	if d := vueDeclaration(in, lc, desc, src); d != nil {
		outs = append(outs, d)
	}
	return outs
}

// vueDeclaration is the declaration artifact for a component. Its source
// path carries the script language so the declaration compiler can route it.
func vueDeclaration(in artifact.Input, lc *Context, desc *sfc.Descriptor, src string) *artifact.Output {
	if !lc.Options.Declaration {
		return nil
	}
	script, setup := desc.Scripts()
	lang := "js"
	if isTyped(script) || isTyped(setup) {
		lang = "ts"
	}
	return &artifact.Output{
		Path:        fmt.Sprintf("%s.%s", in.Path, lang),
		SourcePath:  fmt.Sprintf("%s.%s", sourcePathOf(in), lang),
		Extension:   ".d.ts",
		Contents:    src,
		Declaration: true,
	}
}

package dts

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// declSpecifierRe matches relative specifiers in declaration text: from
// clauses, side-effect imports and import() type queries.
var declSpecifierRe = regexp.MustCompile(`(\bfrom\s+|\bimport\s*\(\s*|\bimport\s+)(["'])(\.\.?(?:/[^"'\n]*)?)(["'])`)

// explicitExtRe matches specifiers that already carry a runtime extension.
var explicitExtRe = regexp.MustCompile(`\.(?:[cm]?js|json)$`)

const dirCacheSize = 4096

// RelativeExtensionRewriter adds explicit extensions to relative specifiers
// of generated declarations. Directory targets are looked up in the source
// tree and gain an "/index" segment.
type RelativeExtensionRewriter struct {
	dirs *lru.Cache[string, bool]
}

// NewRelativeExtensionRewriter creates a rewriter with its own probe cache.
func NewRelativeExtensionRewriter() *RelativeExtensionRewriter {
	cache, err := lru.New[string, bool](dirCacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &RelativeExtensionRewriter{dirs: cache}
}

// Rewrite returns text with extensions added. sourceFile is the absolute
// path of the source the declaration was generated from; declExt is the
// declaration extension (".d.ts", ".d.mts" or ".d.cts").
func (r *RelativeExtensionRewriter) Rewrite(text, sourceFile, declExt string) string {
	ext := runtimeExtFor(declExt)
	base := filepath.Dir(sourceFile)

	return declSpecifierRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := declSpecifierRe.FindStringSubmatch(m)
		if sub[2] != sub[4] {
			return m
		}
		spec := sub[3]
		if explicitExtRe.MatchString(spec) {
			return m
		}
		target := strings.TrimSuffix(spec, "/")
		if r.isDir(filepath.Join(base, filepath.FromSlash(target))) {
			target = path.Join(target, "index")
			if !strings.HasPrefix(target, ".") {
				target = "./" + target
			}
		}
		return sub[1] + sub[2] + target + ext + sub[4]
	})
}

func (r *RelativeExtensionRewriter) isDir(p string) bool {
	if v, ok := r.dirs.Get(p); ok {
		return v
	}
	st, err := os.Stat(p)
	v := err == nil && st.IsDir()
	r.dirs.Add(p, v)
	return v
}

func runtimeExtFor(declExt string) string {
	switch declExt {
	case ".d.mts":
		return ".mjs"
	case ".d.cts":
		return ".cjs"
	}
	return ".js"
}

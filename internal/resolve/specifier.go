package resolve

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/opmodel/mkdist/internal/artifact"
)

var (
	// esmSpecifierRe matches from clauses, side-effect imports and dynamic imports.
	// It does not know about string literals or comments: import-looking text
	// inside them is rewritten as well.
	esmSpecifierRe = regexp.MustCompile(`(\bfrom\s*|\bimport\s*\(\s*|\bimport\s*)(["'])([^"'\n]*)(["'])`)
	cjsSpecifierRe = regexp.MustCompile(`(\brequire\s*\(\s*)(["'])([^"'\n]*)(["'])`)
)

// Resolver rewrites relative specifiers to paths that exist in the output
// tree.
type Resolver struct {
	// Format is "esm" or "cjs".
	Format string
	// Ext is the output extension of script artifacts, e.g. ".mjs".
	Ext string
	// Alias maps specifier prefixes to directories relative to the source root.
	Alias map[string]string

	aliasKeys []string
}

// NewResolver creates a resolver. Alias keys are tried longest first.
func NewResolver(format, ext string, alias map[string]string) *Resolver {
	keys := make([]string, 0, len(alias))
	for k := range alias {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &Resolver{Format: format, Ext: ext, Alias: alias, aliasKeys: keys}
}

// ResolveAll rewrites every eligible artifact. The emitted set is computed
// once from outputs, so it must run after Normalize.
func (r *Resolver) ResolveAll(outputs []*artifact.Output) {
	emitted := Paths(outputs)
	for _, o := range outputs {
		if o.Skip || o.Raw || o.Declaration {
			continue
		}
		final := o.FinalPath()
		// Components (.vue) are left as emitted; their script blocks keep
		// the specifiers the author wrote.
		if !artifact.IsScriptExt(path.Ext(final)) || artifact.IsDeclarationFile(final) {
			continue
		}
		o.Contents = r.Resolve(o.Contents, final, emitted)
	}
}

// Resolve rewrites the specifiers of one artifact located at from.
func (r *Resolver) Resolve(text, from string, emitted map[string]bool) string {
	re, candidates := r.rules(path.Ext(from))
	return re.ReplaceAllStringFunc(text, func(m string) string {
		sub := re.FindStringSubmatch(m)
		if sub[2] != sub[4] {
			return m
		}
		id := r.substituteAlias(sub[3], from)
		if !strings.HasPrefix(id, ".") {
			return m
		}
		resolved, ok := resolveID(from, id, candidates, emitted)
		if !ok {
			if id == sub[3] {
				return m
			}
			resolved = id
		}
		return sub[1] + sub[2] + resolved + sub[4]
	})
}

// rules selects the pattern and candidate suffixes for a file. .cjs and
// .mjs files follow their own module format whatever the build format is.
func (r *Resolver) rules(ext string) (*regexp.Regexp, []string) {
	cjs := r.Format == "cjs"
	switch ext {
	case ".cjs":
		cjs = true
	case ".mjs":
		cjs = false
	}
	if cjs {
		return cjsSpecifierRe, dedupe("", "/index"+ext, ext)
	}
	return esmSpecifierRe, dedupe("", "/index"+ext, "/index.js", ext, ".ts", ".js")
}

// substituteAlias rewrites an aliased specifier into a path relative to
// the directory of from. Unaliased specifiers are returned unchanged.
func (r *Resolver) substituteAlias(id, from string) string {
	for _, key := range r.aliasKeys {
		rest, ok := aliasRemainder(id, key)
		if !ok {
			continue
		}
		target := path.Join(path.Clean(strings.TrimPrefix(r.Alias[key], "./")), rest)
		return relativeTo(path.Dir(from), target)
	}
	return id
}

func aliasRemainder(id, key string) (string, bool) {
	if id == key {
		return "", true
	}
	prefix := key
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if strings.HasPrefix(id, prefix) {
		return strings.TrimPrefix(id, prefix), true
	}
	return "", false
}

// relativeTo returns target as a "./" or "../" specifier from dir. Both
// are relative to the output root.
func relativeTo(dir, target string) string {
	if dir == "." {
		dir = ""
	}
	var fromParts, toParts []string
	if dir != "" {
		fromParts = strings.Split(dir, "/")
	}
	if target != "." && target != "" {
		toParts = strings.Split(target, "/")
	}
	i := 0
	for i < len(fromParts) && i < len(toParts) && fromParts[i] == toParts[i] {
		i++
	}
	ups := len(fromParts) - i
	rest := strings.Join(toParts[i:], "/")
	if ups == 0 {
		if rest == "" {
			return "."
		}
		return "./" + rest
	}
	rel := strings.Repeat("../", ups)
	if rest == "" {
		return strings.TrimSuffix(rel, "/")
	}
	return rel + rest
}

func resolveID(from, id string, candidates []string, emitted map[string]bool) (string, bool) {
	base := strings.TrimSuffix(id, "/")
	for _, suffix := range candidates {
		if emitted[path.Join(path.Dir(from), base+suffix)] {
			return base + suffix, true
		}
	}
	return "", false
}

func dedupe(list ...string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

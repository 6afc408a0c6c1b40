package sfc

import (
	"errors"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/opmodel/mkdist/internal/transpile"
)

// ExprKind tells how a template expression is transpiled.
type ExprKind int

const (
	// KindExpression is a plain binding or handler value.
	KindExpression ExprKind = iota
	// KindParams is a slot scope parameter list.
	KindParams
	// KindFor is a v-for "alias in source" value.
	KindFor
	// KindInterpolation is the inside of {{ }}.
	KindInterpolation
)

// Expression is one transpilable span of a template.
type Expression struct {
	Kind       ExprKind
	Start, End int
	Src        string
	// Quote is the quote character around an attribute value, 0 for
	// interpolations and unquoted values.
	Quote byte
}

// TemplateExpressions lists the expressions of a template body. Offsets are
// relative to content.
func TemplateExpressions(content string) ([]Expression, error) {
	z := html.NewTokenizer(strings.NewReader(content))
	var (
		exprs  []Expression
		offset int
	)
	for {
		tt := z.Next()
		n := len(z.Raw())
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return exprs, nil
			}
			return nil, z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			exprs = append(exprs, tagExpressions(content[offset:offset+n], offset)...)
		case html.TextToken:
			found, open := interpolations(content[offset:offset+n], offset)
			exprs = append(exprs, found...)
			if open < 0 {
				break
			}
			// The tokenizer stops text at `<`, which also appears in
			// comparisons and type arguments. Close the interpolation on the
			// raw body and restart tokenizing after it.
			end := strings.Index(content[open:], "}}")
			if end < 0 {
				break
			}
			if e, ok := interpolation(content[open:open+end], open); ok {
				exprs = append(exprs, e)
			}
			offset = open + end + 2
			z = html.NewTokenizer(strings.NewReader(content[offset:]))
			continue
		}
		offset += n
	}
}

// TranspileTemplate strips type syntax from every expression of a template
// body. Expressions that fail to transpile are left as written.
func TranspileTemplate(content string) (string, error) {
	exprs, err := TemplateExpressions(content)
	if err != nil {
		return content, err
	}
	var edits []Edit
	for _, e := range exprs {
		out, ok := transpileExpression(e)
		if !ok || out == e.Src {
			continue
		}
		edits = append(edits, Edit{Start: e.Start, End: e.End, Text: out})
	}
	return Splice(content, 0, edits), nil
}

func transpileExpression(e Expression) (string, bool) {
	if strings.TrimSpace(e.Src) == "" {
		return "", false
	}

	var (
		out string
		err error
	)
	switch e.Kind {
	case KindParams:
		out, err = transpile.Params(e.Src)
	case KindFor:
		out, err = transpileFor(e.Src)
	default:
		out, err = transpile.Expression(e.Src)
	}
	if err != nil {
		return "", false
	}
	if e.Quote != 0 {
		out = swapQuotes(out, e.Quote)
	}
	return out, true
}

// swapQuotes makes out safe to place between quote characters: string
// literals using quote are rewritten to use the other quote.
func swapQuotes(out string, quote byte) string {
	q := string(quote)
	if !strings.Contains(out, q) {
		return out
	}
	other := `'`
	if quote == '\'' {
		other = `"`
	}
	out = strings.ReplaceAll(out, other, `\`+other)
	return strings.ReplaceAll(out, q, other)
}

var forAliasRe = regexp.MustCompile(`^([\s\S]*?)\s+(?:in|of)\s+(\S[\s\S]*)$`)

func transpileFor(src string) (string, error) {
	m := forAliasRe.FindStringSubmatchIndex(src)
	if m == nil {
		return transpile.Expression(src)
	}
	alias := src[m[2]:m[3]]
	source := src[m[4]:m[5]]

	newSource, err := transpile.Expression(source)
	if err != nil {
		return "", err
	}
	newAlias := transpileForAlias(alias)
	return newAlias + src[m[3]:m[4]] + newSource, nil
}

func transpileForAlias(alias string) string {
	trimmed := strings.TrimSpace(alias)
	wrapped := strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")")
	inner := trimmed
	if wrapped {
		inner = trimmed[1 : len(trimmed)-1]
	}

	parts := splitTopLevel(inner, ',')
	changed := false
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !strings.ContainsAny(p, ":!<") && !strings.Contains(p, " as ") {
			parts[i] = p
			continue
		}
		if out, err := transpile.Params(p); err == nil {
			parts[i], changed = out, true
		} else if out, err := transpile.Expression(p); err == nil {
			parts[i], changed = out, true
		} else {
			parts[i] = p
		}
	}
	if !changed {
		return alias
	}
	out := strings.Join(parts, ", ")
	if wrapped {
		out = "(" + out + ")"
	}
	return out
}

// splitTopLevel splits s on sep outside brackets and string literals.
func splitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		depth int
		quote byte
		last  int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(' || c == '[' || c == '{' || c == '<':
			depth++
		case c == ')' || c == ']' || c == '}' || c == '>':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

func directiveKind(name string) (ExprKind, bool) {
	switch {
	case name == "v-for":
		return KindFor, true
	case name == "v-slot" || strings.HasPrefix(name, "v-slot:") || strings.HasPrefix(name, "#"):
		return KindParams, true
	case strings.HasPrefix(name, ":") || strings.HasPrefix(name, "@") || strings.HasPrefix(name, "."):
		return KindExpression, true
	case strings.HasPrefix(name, "v-"):
		return KindExpression, true
	}
	return 0, false
}

// tagExpressions scans the attributes of a raw start tag. offset is the
// position of the tag in the template body.
func tagExpressions(tag string, offset int) []Expression {
	var exprs []Expression
	i := 1
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
		i++
	}
	for i < len(tag) {
		for i < len(tag) && (isSpace(tag[i]) || tag[i] == '/') {
			i++
		}
		if i >= len(tag) || tag[i] == '>' {
			break
		}

		nameStart := i
		for i < len(tag) && !isSpace(tag[i]) && tag[i] != '=' && tag[i] != '>' && !(tag[i] == '/' && i+1 < len(tag) && tag[i+1] == '>') {
			i++
		}
		name := tag[nameStart:i]

		j := i
		for j < len(tag) && isSpace(tag[j]) {
			j++
		}
		if j >= len(tag) || tag[j] != '=' {
			continue
		}
		i = j + 1
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) {
			break
		}

		var (
			quote    byte
			valStart int
			valEnd   int
		)
		if tag[i] == '"' || tag[i] == '\'' {
			quote = tag[i]
			valStart = i + 1
			end := strings.IndexByte(tag[valStart:], quote)
			if end < 0 {
				break
			}
			valEnd = valStart + end
			i = valEnd + 1
		} else {
			valStart = i
			for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' {
				i++
			}
			valEnd = i
		}

		kind, ok := directiveKind(name)
		if !ok {
			continue
		}
		exprs = append(exprs, Expression{
			Kind:  kind,
			Start: offset + valStart,
			End:   offset + valEnd,
			Src:   tag[valStart:valEnd],
			Quote: quote,
		})
	}
	return exprs
}

// interpolations returns the closed {{ }} spans of a text run. open is the
// body position just past a trailing unclosed {{, or -1.
func interpolations(text string, offset int) (exprs []Expression, open int) {
	pos := 0
	for {
		i := strings.Index(text[pos:], "{{")
		if i < 0 {
			return exprs, -1
		}
		start := pos + i + 2
		end := strings.Index(text[start:], "}}")
		if end < 0 {
			return exprs, offset + start
		}
		if e, ok := interpolation(text[start:start+end], offset+start); ok {
			exprs = append(exprs, e)
		}
		pos = start + end + 2
	}
}

func interpolation(inner string, start int) (Expression, bool) {
	lead := len(inner) - len(strings.TrimLeft(inner, " \t\r\n"))
	trimmed := strings.TrimSpace(inner)
	if trimmed == "" {
		return Expression{}, false
	}
	return Expression{
		Kind:  KindInterpolation,
		Start: start + lead,
		End:   start + lead + len(trimmed),
		Src:   trimmed,
	}, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

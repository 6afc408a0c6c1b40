package transpile

import (
	"errors"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

var errNotParams = errors.New("not a parameter list")

// Expression transpiles a standalone typed expression such as a template
// binding. The source is wrapped in parentheses so object literals and
// type assertions parse as one expression; esbuild's statement terminator is
// removed from the result.
func Expression(src string) (string, error) {
	res := api.Transform("("+src+")", api.TransformOptions{
		Loader:   api.LoaderTS,
		LogLevel: api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return "", newError("expression", res.Errors)
	}

	out := strings.TrimSpace(string(res.Code))
	out = strings.TrimSuffix(out, ";")
	if !strings.HasPrefix(strings.TrimSpace(src), "(") && enclosed(out) {
		out = out[1 : len(out)-1]
	}
	return out, nil
}

// enclosed reports whether s is wrapped in one pair of matching parentheses.
func enclosed(s string) bool {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	depth := 0
	var quote byte
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
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// Params transpiles a typed parameter list such as a slot scope or v-for
// alias, e.g. "{ item }: { item: Item }" becomes "{ item }".
func Params(src string) (string, error) {
	res := api.Transform("(("+src+") => 0)", api.TransformOptions{
		Loader:   api.LoaderTS,
		LogLevel: api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return "", newError("params", res.Errors)
	}

	out := strings.TrimSpace(string(res.Code))
	out = strings.TrimSuffix(out, ";")
	out = strings.TrimSpace(out)
	if !strings.HasSuffix(out, "=> 0") {
		return "", errNotParams
	}
	out = strings.TrimSpace(strings.TrimSuffix(out, "=> 0"))
	if strings.HasPrefix(out, "(") && strings.HasSuffix(out, ")") {
		out = out[1 : len(out)-1]
	}
	return strings.TrimSpace(out), nil
}

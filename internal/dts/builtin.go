package dts

import (
	"context"
	"fmt"
	"path"
	"strings"

	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/tsast"
)

// BuiltinBackend derives declarations from the syntax tree alone. Types
// that are not written in the source are emitted as any, so its output is
// coarser than the compiler's.
type BuiltinBackend struct{}

func (BuiltinBackend) Name() string { return "builtin" }

func (BuiltinBackend) Emit(ctx context.Context, vfs VFS, files []string, _ Options) ([]*oerrors.PositionError, error) {
	var diags []*oerrors.PositionError
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, ok := vfs.Read(f)
		if !ok {
			return nil, fmt.Errorf("declaration source %s is not in the file set", f)
		}
		ext := path.Ext(f)
		decl, ds, err := EmitDeclaration(ctx, text, ext == ".tsx" || ext == ".jsx")
		if err != nil {
			return nil, err
		}
		for _, d := range ds {
			d.File = f
		}
		diags = append(diags, ds...)
		vfs.Write(DeclarationPath(f), decl)
	}
	return diags, nil
}

// EmitDeclaration returns the declaration text of one module. Syntax errors
// are reported as diagnostics without a file name.
func EmitDeclaration(ctx context.Context, src string, tsx bool) (string, []*oerrors.PositionError, error) {
	tree, err := tsast.Parse(ctx, src, tsx)
	if err != nil {
		return "", nil, err
	}
	defer tree.Close()

	root := tree.Root()
	var diags []*oerrors.PositionError
	if e, ok := root.FindError(); ok {
		line, col := e.Line()
		diags = append(diags, &oerrors.PositionError{
			Line:    line,
			Column:  col,
			Code:    "TS1005",
			Message: fmt.Sprintf("syntax error near %q", firstLine(e.Text())),
		})
	}

	em := &emitter{reexported: localExports(root)}
	for _, stmt := range root.Named() {
		em.statement(stmt)
	}
	if !em.module {
		em.line("export {};")
	}
	return em.b.String(), diags, nil
}

type emitter struct {
	b      strings.Builder
	module bool
	// reexported holds local names referenced by `export { ... }` without
	// a source, or by `export default <identifier>`.
	reexported map[string]bool
}

// localExports collects the local bindings a module exports after
// declaring them.
func localExports(root tsast.Node) map[string]bool {
	names := map[string]bool{}
	for _, stmt := range root.Named() {
		if stmt.Type() != "export_statement" || !stmt.Field("declaration").IsNil() || !stmt.Field("source").IsNil() {
			continue
		}
		if value := stmt.Field("value"); stmt.Has("default") && value.Type() == "identifier" {
			names[value.Text()] = true
			continue
		}
		for _, spec := range stmt.Child("export_clause").Named() {
			if spec.Type() == "export_specifier" {
				names[spec.Field("name").Text()] = true
			}
		}
	}
	return names
}

func (e *emitter) line(s string) {
	e.b.WriteString(s)
	e.b.WriteString("\n")
}

func (e *emitter) statement(stmt tsast.Node) {
	switch stmt.Type() {
	case "import_statement":
		e.module = true
		e.line(withSemicolon(stmt.Text()))
	case "interface_declaration", "type_alias_declaration":
		e.line(withSemicolonIfAlias(stmt))
	case "ambient_declaration":
		e.line(stmt.Text())
	case "export_statement":
		e.module = true
		e.export(stmt)
	case "function_declaration", "generator_function_declaration":
		if e.reexported[stmt.Field("name").Text()] {
			e.line("declare " + functionSignature(stmt) + ";")
		}
	case "class_declaration", "abstract_class_declaration":
		if e.reexported[stmt.Field("name").Text()] {
			e.class("declare ", stmt)
		}
	case "lexical_declaration", "variable_declaration":
		e.variables("declare ", stmt, func(name string) bool { return e.reexported[name] })
	case "enum_declaration":
		if e.reexported[stmt.Field("name").Text()] {
			e.line("declare " + stmt.Text())
		}
	}
}

// variables emits one line per declarator whose name passes keep.
func (e *emitter) variables(prefix string, decl tsast.Node, keep func(string) bool) {
	kind := decl.Children()[0].Text()
	for _, d := range decl.Named() {
		if d.Type() != "variable_declarator" {
			continue
		}
		name := d.Field("name").Text()
		if keep != nil && !keep(name) {
			continue
		}
		e.line(prefix + kind + " " + name + ": " + declaratorType(d, kind == "const") + ";")
	}
}

func (e *emitter) export(stmt tsast.Node) {
	isDefault := stmt.Has("default")
	decl := stmt.Field("declaration")

	if decl.IsNil() {
		if value := stmt.Field("value"); isDefault && !value.IsNil() {
			e.line("declare const _default: " + valueType(value, true) + ";")
			e.line("export default _default;")
			return
		}
		// export { a } / export * from / export =
		e.line(withSemicolon(stmt.Text()))
		return
	}

	prefix := "export declare "
	if isDefault {
		prefix = "export default "
	}

	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		e.line(prefix + functionSignature(decl) + ";")
	case "function_signature":
		e.line(prefix + withSemicolon(decl.Text()))
	case "class_declaration", "abstract_class_declaration":
		e.class(prefix, decl)
	case "lexical_declaration", "variable_declaration":
		e.variables(prefix, decl, nil)
	case "enum_declaration":
		e.line(prefix + decl.Text())
	case "interface_declaration":
		e.line("export " + decl.Text())
	case "type_alias_declaration":
		e.line("export " + withSemicolon(decl.Text()))
	default:
		e.line("export " + withSemicolon(decl.Text()))
	}
}

func (e *emitter) class(prefix string, decl tsast.Node) {
	var head strings.Builder
	head.WriteString(prefix)
	if decl.Type() == "abstract_class_declaration" {
		head.WriteString("abstract ")
	}
	head.WriteString("class")
	if name := decl.Field("name"); !name.IsNil() {
		head.WriteString(" " + name.Text())
	}
	head.WriteString(decl.Field("type_parameters").Text())
	if h := decl.Child("class_heritage"); !h.IsNil() {
		head.WriteString(" " + h.Text())
	}
	head.WriteString(" {")
	e.line(head.String())

	for _, m := range decl.Field("body").Named() {
		if sig := memberSignature(m); sig != "" {
			e.line("    " + sig)
		}
	}
	e.line("}")
}

func memberSignature(m tsast.Node) string {
	var mods []string
	private := false
	for _, c := range m.Children() {
		switch c.Type() {
		case "accessibility_modifier":
			if c.Text() == "private" {
				private = true
			}
			mods = append(mods, c.Text())
		case "static", "readonly", "abstract", "override":
			mods = append(mods, c.Type())
		}
	}
	prefix := strings.Join(mods, " ")
	if prefix != "" {
		prefix += " "
	}

	switch m.Type() {
	case "public_field_definition":
		name := m.Field("name").Text()
		if private || strings.HasPrefix(name, "#") {
			return prefix + name + ";"
		}
		opt := ""
		if m.Has("?") {
			opt = "?"
		}
		return prefix + name + opt + ": " + declaratorType(m, m.Has("readonly")) + ";"

	case "method_definition":
		name := m.Field("name").Text()
		if strings.HasPrefix(name, "#") {
			return ""
		}
		if private {
			return prefix + name + ";"
		}
		params := parameters(m.Field("parameters"))
		if name == "constructor" {
			return "constructor(" + params + ");"
		}
		accessor := ""
		for _, c := range m.Children() {
			if c.Type() == "get" || c.Type() == "set" {
				accessor = c.Type() + " "
			}
		}
		if accessor == "set " {
			return prefix + accessor + name + "(" + params + ");"
		}
		return prefix + accessor + name + "(" + params + "): " + returnType(m) + ";"

	case "method_signature", "abstract_method_signature", "index_signature":
		return withSemicolon(m.Text())
	}
	return ""
}

func functionSignature(fn tsast.Node) string {
	var b strings.Builder
	b.WriteString("function")
	if fn.Type() == "generator_function_declaration" {
		b.WriteString("*")
	}
	b.WriteString(" " + fn.Field("name").Text())
	b.WriteString(fn.Field("type_parameters").Text())
	b.WriteString("(" + parameters(fn.Field("parameters")) + "): " + returnType(fn))
	return b.String()
}

// parameters renders a formal parameter list without default values.
func parameters(list tsast.Node) string {
	var out []string
	for _, p := range list.Named() {
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			pattern := p.Field("pattern")
			opt := ""
			if p.Type() == "optional_parameter" || !p.Field("value").IsNil() {
				opt = "?"
			}
			typ := strings.TrimSpace(strings.TrimPrefix(p.Field("type").Text(), ":"))
			if typ == "" {
				typ = "any"
				if pattern.Type() == "rest_pattern" {
					typ = "any[]"
				}
			}
			if pattern.Type() == "rest_pattern" {
				opt = ""
			}
			name := pattern.Text()
			if pattern.Type() == "object_pattern" || pattern.Type() == "array_pattern" {
				name = "_" + fmt.Sprint(len(out))
			}
			mods := ""
			if acc := p.Child("accessibility_modifier"); !acc.IsNil() {
				mods = acc.Text() + " "
			}
			out = append(out, mods+name+opt+": "+typ)
		case "identifier":
			out = append(out, p.Text()+": any")
		}
	}
	return strings.Join(out, ", ")
}

func returnType(fn tsast.Node) string {
	if rt := fn.Field("return_type"); !rt.IsNil() {
		return strings.TrimSpace(strings.TrimPrefix(rt.Text(), ":"))
	}
	async := fn.Has("async")
	body := fn.Field("body")
	ret := "void"
	if strings.Contains(body.Text(), "return ") {
		ret = "any"
	}
	if async {
		return "Promise<" + ret + ">"
	}
	return ret
}

func declaratorType(d tsast.Node, literal bool) string {
	if t := d.Field("type"); !t.IsNil() {
		return strings.TrimSpace(strings.TrimPrefix(t.Text(), ":"))
	}
	return valueType(d.Field("value"), literal)
}

// valueType infers a declaration type from an initializer. literal keeps
// literal types for const bindings.
func valueType(v tsast.Node, literal bool) string {
	switch v.Type() {
	case "number":
		if literal {
			return v.Text()
		}
		return "number"
	case "unary_expression":
		if literal && v.Field("argument").Type() == "number" {
			return v.Text()
		}
		return "number"
	case "string":
		if literal {
			return v.Text()
		}
		return "string"
	case "template_string":
		return "string"
	case "true", "false":
		if literal {
			return v.Text()
		}
		return "boolean"
	case "null":
		return "null"
	case "undefined":
		return "undefined"
	case "regex":
		return "RegExp"
	case "arrow_function", "function_expression", "function":
		return "(" + parameters(v.Field("parameters")) + ") => " + returnType(v)
	case "new_expression":
		return v.Field("constructor").Text()
	case "as_expression", "satisfies_expression":
		named := v.Named()
		if v.Type() == "as_expression" && len(named) == 2 {
			if t := named[1].Text(); t != "const" {
				return t
			}
		}
		return valueType(v.FirstNamed(), true)
	case "parenthesized_expression":
		return valueType(v.FirstNamed(), literal)
	case "identifier":
		return "typeof " + v.Text()
	case "array":
		return "any[]"
	case "object":
		return objectType(v)
	}
	return "any"
}

func objectType(obj tsast.Node) string {
	var fields []string
	for _, c := range obj.Named() {
		switch c.Type() {
		case "pair":
			fields = append(fields, c.Field("key").Text()+": "+valueType(c.Field("value"), false))
		case "shorthand_property_identifier":
			fields = append(fields, c.Text()+": typeof "+c.Text())
		case "method_definition":
			fields = append(fields, c.Field("name").Text()+"("+parameters(c.Field("parameters"))+"): "+returnType(c))
		default:
			return "any"
		}
	}
	if len(fields) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(fields, "; ") + " }"
}

func withSemicolon(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ";") || strings.HasSuffix(s, "}") {
		return s
	}
	return s + ";"
}

func withSemicolonIfAlias(n tsast.Node) string {
	if n.Type() == "type_alias_declaration" {
		return withSemicolon(n.Text())
	}
	return n.Text()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

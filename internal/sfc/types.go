package sfc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/opmodel/mkdist/internal/tsast"
)

const maxTypeDepth = 16

// typeIndex holds the type declarations visible to a script setup block.
type typeIndex struct {
	interfaces map[string][]tsast.Node
	aliases    map[string]tsast.Node
	enums      map[string]tsast.Node
}

func indexTypes(roots ...tsast.Node) *typeIndex {
	ix := &typeIndex{
		interfaces: map[string][]tsast.Node{},
		aliases:    map[string]tsast.Node{},
		enums:      map[string]tsast.Node{},
	}
	for _, root := range roots {
		for _, stmt := range root.Named() {
			decl := stmt
			if stmt.Type() == "export_statement" {
				decl = stmt.Field("declaration")
			}
			name := decl.Field("name").Text()
			switch decl.Type() {
			case "interface_declaration":
				ix.interfaces[name] = append(ix.interfaces[name], decl)
			case "type_alias_declaration":
				ix.aliases[name] = decl.Field("value")
			case "enum_declaration":
				ix.enums[name] = decl.Field("body")
			}
		}
	}
	return ix
}

// runtimeTypes returns the constructors a value of type n can be checked
// against at runtime. unknown is set when no check is possible.
func (ix *typeIndex) runtimeTypes(n tsast.Node, depth int) (types []string, unknown bool) {
	if n.IsNil() || depth > maxTypeDepth {
		return nil, true
	}

	switch n.Type() {
	case "predefined_type":
		switch n.Text() {
		case "string":
			return []string{"String"}, false
		case "number":
			return []string{"Number"}, false
		case "boolean":
			return []string{"Boolean"}, false
		case "symbol":
			return []string{"Symbol"}, false
		case "bigint":
			return []string{"BigInt"}, false
		case "object":
			return []string{"Object"}, false
		case "void", "never", "undefined", "null":
			return nil, false
		}
		return nil, true

	case "literal_type":
		switch n.FirstNamed().Type() {
		case "string":
			return []string{"String"}, false
		case "number", "unary_expression":
			return []string{"Number"}, false
		case "true", "false":
			return []string{"Boolean"}, false
		case "null", "undefined":
			return nil, false
		}
		return nil, true

	case "template_literal_type":
		return []string{"String"}, false
	case "array_type", "tuple_type":
		return []string{"Array"}, false
	case "function_type", "constructor_type":
		return []string{"Function"}, false
	case "object_type", "intersection_type", "nested_type_identifier":
		return []string{"Object"}, false
	case "parenthesized_type", "readonly_type":
		return ix.runtimeTypes(n.FirstNamed(), depth+1)

	case "union_type":
		var all []string
		for _, member := range n.Named() {
			t, unk := ix.runtimeTypes(member, depth+1)
			if unk {
				return nil, true
			}
			all = append(all, t...)
		}
		return dedupe(all), false

	case "type_identifier":
		return ix.resolveName(n.Text(), depth)

	case "generic_type":
		name := n.Field("name").Text()
		switch name {
		case "Array", "ReadonlyArray":
			return []string{"Array"}, false
		case "Record", "Partial", "Required", "Readonly", "Pick", "Omit":
			return []string{"Object"}, false
		}
		return ix.resolveName(name, depth)
	}
	return nil, true
}

var builtinConstructors = map[string]bool{
	"String": true, "Number": true, "Boolean": true, "Function": true,
	"Object": true, "Array": true, "Date": true, "RegExp": true,
	"Symbol": true, "Map": true, "Set": true, "WeakMap": true,
	"WeakSet": true, "Promise": true, "Error": true,
}

func (ix *typeIndex) resolveName(name string, depth int) ([]string, bool) {
	if builtinConstructors[name] {
		return []string{name}, false
	}
	if _, ok := ix.interfaces[name]; ok {
		return []string{"Object"}, false
	}
	if v, ok := ix.aliases[name]; ok {
		return ix.runtimeTypes(v, depth+1)
	}
	if body, ok := ix.enums[name]; ok {
		return enumTypes(body), false
	}
	return []string{"Object"}, false
}

func enumTypes(body tsast.Node) []string {
	var types []string
	for _, m := range body.Named() {
		if m.Type() == "enum_assignment" {
			switch m.Field("value").Type() {
			case "string", "template_string":
				types = append(types, "String")
				continue
			}
		}
		types = append(types, "Number")
	}
	if len(types) == 0 {
		return []string{"Number"}
	}
	return dedupe(types)
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// renderType formats runtime types as a props "type" value.
func renderType(types []string, unknown bool) string {
	switch {
	case unknown || len(types) == 0:
		return "null"
	case len(types) == 1:
		return types[0]
	}
	return "[" + strings.Join(types, ", ") + "]"
}

// member is one property of an object-like type.
type member struct {
	key      string
	optional bool
	method   bool
	typ      tsast.Node
}

// members flattens an object-like type into its properties. ok is false
// when the type cannot be resolved from local declarations.
func (ix *typeIndex) members(n tsast.Node, depth int) ([]member, bool) {
	if n.IsNil() || depth > maxTypeDepth {
		return nil, false
	}

	switch n.Type() {
	case "object_type", "interface_body":
		var out []member
		for _, c := range n.Named() {
			switch c.Type() {
			case "property_signature":
				key, ok := propertyKey(c.Field("name"))
				if !ok {
					return nil, false
				}
				out = append(out, member{
					key:      key,
					optional: c.Has("?"),
					typ:      c.Field("type").FirstNamed(),
				})
			case "method_signature":
				key, ok := propertyKey(c.Field("name"))
				if !ok {
					return nil, false
				}
				out = append(out, member{key: key, optional: c.Has("?"), method: true})
			case "index_signature":
				return nil, false
			}
		}
		return out, true

	case "parenthesized_type":
		return ix.members(n.FirstNamed(), depth+1)

	case "intersection_type":
		var out []member
		for _, part := range n.Named() {
			ms, ok := ix.members(part, depth+1)
			if !ok {
				return nil, false
			}
			out = mergeMembers(out, ms)
		}
		return out, true

	case "type_identifier":
		name := n.Text()
		if decls, ok := ix.interfaces[name]; ok {
			var out []member
			for _, decl := range decls {
				for _, c := range decl.Children() {
					if c.Type() != "extends_type_clause" {
						continue
					}
					for _, base := range c.Named() {
						ms, ok := ix.members(base, depth+1)
						if !ok {
							return nil, false
						}
						out = mergeMembers(out, ms)
					}
				}
				ms, ok := ix.members(decl.Field("body"), depth+1)
				if !ok {
					return nil, false
				}
				out = mergeMembers(out, ms)
			}
			return out, true
		}
		if v, ok := ix.aliases[name]; ok {
			return ix.members(v, depth+1)
		}
	}
	return nil, false
}

func mergeMembers(into, from []member) []member {
	for _, m := range from {
		replaced := false
		for i := range into {
			if into[i].key == m.key {
				into[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			into = append(into, m)
		}
	}
	return into
}

// eventNames lists the event names declared by an emits type, either as
// call signatures `(e: 'change', id: number): void` or as property keys.
func (ix *typeIndex) eventNames(n tsast.Node, depth int) ([]string, bool) {
	if n.IsNil() || depth > maxTypeDepth {
		return nil, false
	}

	switch n.Type() {
	case "object_type", "interface_body":
		var names []string
		for _, c := range n.Named() {
			switch c.Type() {
			case "call_signature":
				ev, ok := ix.firstParamLiterals(c, depth)
				if !ok {
					return nil, false
				}
				names = append(names, ev...)
			case "property_signature", "method_signature":
				key, ok := propertyKey(c.Field("name"))
				if !ok {
					return nil, false
				}
				names = append(names, key)
			}
		}
		return dedupe(names), true

	case "function_type":
		return ix.firstParamLiterals(n, depth)

	case "parenthesized_type":
		return ix.eventNames(n.FirstNamed(), depth+1)

	case "intersection_type":
		var names []string
		for _, part := range n.Named() {
			ev, ok := ix.eventNames(part, depth+1)
			if !ok {
				return nil, false
			}
			names = append(names, ev...)
		}
		return dedupe(names), true

	case "type_identifier":
		name := n.Text()
		if decls, ok := ix.interfaces[name]; ok {
			var names []string
			for _, decl := range decls {
				ev, ok := ix.eventNames(decl.Field("body"), depth+1)
				if !ok {
					return nil, false
				}
				names = append(names, ev...)
			}
			return dedupe(names), true
		}
		if v, ok := ix.aliases[name]; ok {
			return ix.eventNames(v, depth+1)
		}
	}
	return nil, false
}

func (ix *typeIndex) firstParamLiterals(sig tsast.Node, depth int) ([]string, bool) {
	first := sig.Field("parameters").FirstNamed()
	if first.IsNil() {
		return nil, false
	}
	return ix.stringLiterals(first.Field("type").FirstNamed(), depth+1)
}

func (ix *typeIndex) stringLiterals(n tsast.Node, depth int) ([]string, bool) {
	if n.IsNil() || depth > maxTypeDepth {
		return nil, false
	}
	switch n.Type() {
	case "literal_type":
		lit := n.FirstNamed()
		if lit.Type() != "string" {
			return nil, false
		}
		return []string{unquote(lit.Text())}, true
	case "union_type":
		var out []string
		for _, m := range n.Named() {
			s, ok := ix.stringLiterals(m, depth+1)
			if !ok {
				return nil, false
			}
			out = append(out, s...)
		}
		return out, true
	case "parenthesized_type":
		return ix.stringLiterals(n.FirstNamed(), depth+1)
	case "type_identifier":
		if v, ok := ix.aliases[n.Text()]; ok {
			return ix.stringLiterals(v, depth+1)
		}
	}
	return nil, false
}

func propertyKey(n tsast.Node) (string, bool) {
	switch n.Type() {
	case "property_identifier", "number":
		return n.Text(), true
	case "string":
		return unquote(n.Text()), true
	}
	return "", false
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func renderKey(key string) string {
	if identRe.MatchString(key) {
		return key
	}
	return strconv.Quote(key)
}

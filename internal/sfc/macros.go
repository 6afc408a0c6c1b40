package sfc

import (
	"context"
	"fmt"
	"strings"

	"github.com/opmodel/mkdist/internal/tsast"
)

// BypassError reports a script setup block whose macros depend on type
// information that is not declared in the component.
type BypassError struct {
	Macro  string
	Reason string
}

func (e *BypassError) Error() string {
	return fmt.Sprintf("cannot expand %s: %s", e.Macro, e.Reason)
}

// ExpandMacros rewrites the type-only forms of defineProps, withDefaults,
// defineEmits and defineModel in a script setup block into their runtime
// forms. script is the component's plain script block, consulted for type
// declarations only. tsx selects the TSX grammar.
func ExpandMacros(ctx context.Context, setup, script string, tsx bool) (string, error) {
	setupTree, err := tsast.Parse(ctx, setup, tsx)
	if err != nil {
		return "", err
	}
	defer setupTree.Close()

	roots := []tsast.Node{setupTree.Root()}
	if strings.TrimSpace(script) != "" {
		scriptTree, err := tsast.Parse(ctx, script, tsx)
		if err != nil {
			return "", err
		}
		defer scriptTree.Close()
		roots = append(roots, scriptTree.Root())
	}

	ix := indexTypes(roots...)
	var edits []Edit
	for _, call := range macroCalls(setupTree.Root()) {
		text, ok, err := ix.expand(call)
		if err != nil {
			return "", err
		}
		if ok {
			edits = append(edits, Edit{Start: call.Start(), End: call.End(), Text: text})
		}
	}
	return Splice(setup, 0, edits), nil
}

// macroCalls returns the top-level call expressions of a setup block, both
// bare statements and variable initializers.
func macroCalls(root tsast.Node) []tsast.Node {
	var calls []tsast.Node
	for _, stmt := range root.Named() {
		switch stmt.Type() {
		case "expression_statement":
			if e := stmt.FirstNamed(); e.Type() == "call_expression" {
				calls = append(calls, e)
			}
		case "lexical_declaration", "variable_declaration":
			for _, d := range stmt.Named() {
				if d.Type() != "variable_declarator" {
					continue
				}
				if v := d.Field("value"); v.Type() == "call_expression" {
					calls = append(calls, v)
				}
			}
		}
	}
	return calls
}

func (ix *typeIndex) expand(call tsast.Node) (string, bool, error) {
	switch call.Field("function").Text() {
	case "defineProps":
		typeArg := firstTypeArg(call)
		if typeArg.IsNil() {
			return "", false, nil
		}
		text, err := ix.expandProps(typeArg, nil)
		return text, err == nil, err

	case "withDefaults":
		args := call.Field("arguments").Named()
		if len(args) == 0 || args[0].Type() != "call_expression" || args[0].Field("function").Text() != "defineProps" {
			return "", false, nil
		}
		typeArg := firstTypeArg(args[0])
		if typeArg.IsNil() {
			return "", false, nil
		}
		var defaults map[string]string
		if len(args) > 1 {
			d, err := defaultValues(args[1])
			if err != nil {
				return "", false, err
			}
			defaults = d
		}
		text, err := ix.expandProps(typeArg, defaults)
		return text, err == nil, err

	case "defineEmits":
		typeArg := firstTypeArg(call)
		if typeArg.IsNil() {
			return "", false, nil
		}
		names, ok := ix.eventNames(typeArg, 0)
		if !ok {
			return "", false, &BypassError{Macro: "defineEmits", Reason: fmt.Sprintf("type %s is not declared in the component", typeArg.Text())}
		}
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = fmt.Sprintf("%q", n)
		}
		return "defineEmits([" + strings.Join(quoted, ", ") + "])", true, nil

	case "defineModel":
		typeArg := firstTypeArg(call)
		if typeArg.IsNil() {
			return "", false, nil
		}
		types, unknown := ix.runtimeTypes(typeArg, 0)
		if unknown || len(types) == 0 {
			return "", false, nil
		}
		return expandModel(call, renderType(types, false)), true, nil
	}
	return "", false, nil
}

func firstTypeArg(call tsast.Node) tsast.Node {
	return call.Field("type_arguments").FirstNamed()
}

func (ix *typeIndex) expandProps(typeArg tsast.Node, defaults map[string]string) (string, error) {
	members, ok := ix.members(typeArg, 0)
	if !ok {
		return "", &BypassError{Macro: "defineProps", Reason: fmt.Sprintf("type %s is not declared in the component", typeArg.Text())}
	}
	if len(members) == 0 {
		return "defineProps({})", nil
	}

	lines := make([]string, 0, len(members))
	for _, m := range members {
		typ := "Function"
		if !m.method {
			typ = renderType(ix.runtimeTypes(m.typ, 0))
		}
		opts := fmt.Sprintf("type: %s, required: %t", typ, !m.optional)
		if d, ok := defaults[m.key]; ok {
			opts += ", default: " + d
		}
		lines = append(lines, "  "+renderKey(m.key)+": { "+opts+" }")
	}
	return "defineProps({\n" + strings.Join(lines, ",\n") + "\n})", nil
}

// defaultValues reads the defaults object passed to withDefaults.
func defaultValues(obj tsast.Node) (map[string]string, error) {
	if obj.Type() != "object" {
		return nil, &BypassError{Macro: "withDefaults", Reason: "defaults must be an object literal"}
	}
	out := map[string]string{}
	for _, c := range obj.Named() {
		switch c.Type() {
		case "pair":
			key, ok := propertyKey(c.Field("key"))
			if !ok {
				return nil, &BypassError{Macro: "withDefaults", Reason: "computed default key " + c.Field("key").Text()}
			}
			out[key] = c.Field("value").Text()
		case "shorthand_property_identifier":
			out[c.Text()] = c.Text()
		case "comment":
		default:
			return nil, &BypassError{Macro: "withDefaults", Reason: "unsupported default " + c.Text()}
		}
	}
	return out, nil
}

func expandModel(call tsast.Node, typ string) string {
	var name, opts string
	for _, a := range call.Field("arguments").Named() {
		switch a.Type() {
		case "string":
			if name == "" {
				name = a.Text()
			}
		case "object":
			opts = a.Text()
		}
	}

	body := `{ "type": ` + typ
	if opts != "" {
		body += ", ..." + opts
	}
	body += " }"
	if name != "" {
		return "defineModel(" + name + ", " + body + ")"
	}
	return "defineModel(" + body + ")"
}

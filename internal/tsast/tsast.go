// Package tsast wraps tree-sitter's TypeScript grammars with a small node
// API bound to its source text.
package tsast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Tree is a parsed source file.
type Tree struct {
	tree *sitter.Tree
	src  []byte
}

// Parse parses src with the TypeScript grammar, or the TSX grammar when tsx is set.
func Parse(ctx context.Context, src string, tsxSyntax bool) (*Tree, error) {
	parser := sitter.NewParser()
	if tsxSyntax {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(typescript.GetLanguage())
	}

	b := []byte(src)
	tree, err := parser.ParseCtx(ctx, nil, b)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	return &Tree{tree: tree, src: b}, nil
}

// Root returns the program node.
func (t *Tree) Root() Node {
	return Node{n: t.tree.RootNode(), src: t.src}
}

// Close releases the underlying tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// Node is a syntax node together with the text it was parsed from. The zero
// Node is nil and all accessors on it return zero values.
type Node struct {
	n   *sitter.Node
	src []byte
}

func (n Node) IsNil() bool { return n.n == nil }

func (n Node) Type() string {
	if n.n == nil {
		return ""
	}
	return n.n.Type()
}

// Text returns the source text covered by the node.
func (n Node) Text() string {
	if n.n == nil {
		return ""
	}
	return n.n.Content(n.src)
}

func (n Node) Start() int { return int(n.n.StartByte()) }
func (n Node) End() int   { return int(n.n.EndByte()) }

// Line returns the 1-based line and column of the node start.
func (n Node) Line() (int, int) {
	p := n.n.StartPoint()
	return int(p.Row) + 1, int(p.Column) + 1
}

func (n Node) HasError() bool {
	return n.n != nil && n.n.HasError()
}

// Field returns the child stored under a grammar field name.
func (n Node) Field(name string) Node {
	if n.n == nil {
		return Node{}
	}
	return Node{n: n.n.ChildByFieldName(name), src: n.src}
}

// Named returns the named children.
func (n Node) Named() []Node {
	if n.n == nil {
		return nil
	}
	count := int(n.n.NamedChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Node{n: n.n.NamedChild(i), src: n.src})
	}
	return out
}

// Children returns all children, anonymous tokens included.
func (n Node) Children() []Node {
	if n.n == nil {
		return nil
	}
	count := int(n.n.ChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Node{n: n.n.Child(i), src: n.src})
	}
	return out
}

// FirstNamed returns the first named child, or a nil Node.
func (n Node) FirstNamed() Node {
	if n.n == nil || n.n.NamedChildCount() == 0 {
		return Node{}
	}
	return Node{n: n.n.NamedChild(0), src: n.src}
}

// Child returns the first child of the given type, or a nil Node.
func (n Node) Child(typ string) Node {
	for _, c := range n.Children() {
		if c.Type() == typ {
			return c
		}
	}
	return Node{}
}

// Has reports whether the node has a direct child of the given type.
func (n Node) Has(typ string) bool {
	return !n.Child(typ).IsNil()
}

// FindError returns the first error or missing node in the subtree.
func (n Node) FindError() (Node, bool) {
	if n.n == nil || !n.n.HasError() {
		return Node{}, false
	}
	if n.n.Type() == "ERROR" || n.n.IsMissing() {
		return n, true
	}
	for _, c := range n.Children() {
		if e, ok := c.FindError(); ok {
			return e, true
		}
	}
	return n, true
}

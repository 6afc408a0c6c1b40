// Package sfc splits single-file components into blocks and rewrites the
// typed parts of their script setup and template blocks.
package sfc

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Block is one top-level element of a component file.
type Block struct {
	// Type is the lowercased tag name: template, script, style or a custom block name.
	Type string

	// Attrs holds the parsed attributes in source order.
	Attrs []Attr

	// RawAttrs is the attribute text of the start tag, leading whitespace included.
	RawAttrs string

	// Content is the text between the start and end tags.
	Content string

	// Start and End delimit the whole element in the file.
	Start, End int

	// ContentStart and ContentEnd delimit Content in the file.
	ContentStart, ContentEnd int
}

// Attr is a block attribute.
type Attr struct {
	Key      string
	Val      string
	HasValue bool
}

// Attr returns the value of key and whether it is present.
func (b *Block) Attr(key string) (string, bool) {
	for _, a := range b.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Lang returns the lang attribute, empty when absent.
func (b *Block) Lang() string {
	v, _ := b.Attr("lang")
	return v
}

// Setup reports whether the block is a script setup block.
func (b *Block) Setup() bool {
	_, ok := b.Attr("setup")
	return b.Type == "script" && ok
}

var langAttrRe = regexp.MustCompile(`\s+lang\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)

// AttrsWithoutLang returns RawAttrs with the lang attribute removed.
func (b *Block) AttrsWithoutLang() string {
	return langAttrRe.ReplaceAllString(b.RawAttrs, "")
}

// Descriptor is a parsed component file.
type Descriptor struct {
	Source string
	Blocks []*Block
}

// Scripts returns the plain and setup script blocks (either may be nil).
func (d *Descriptor) Scripts() (script, setup *Block) {
	for _, b := range d.Blocks {
		if b.Type != "script" {
			continue
		}
		if b.Setup() {
			if setup == nil {
				setup = b
			}
		} else if script == nil {
			script = b
		}
	}
	return script, setup
}

// Template returns the first template block, or nil.
func (d *Descriptor) Template() *Block {
	for _, b := range d.Blocks {
		if b.Type == "template" {
			return b
		}
	}
	return nil
}

// Parse splits src into top-level blocks. Text between blocks is not kept.
func Parse(src string) (*Descriptor, error) {
	z := html.NewTokenizer(strings.NewReader(src))
	desc := &Descriptor{Source: src}

	var (
		cur    *Block
		depth  int
		offset int
	)

	for {
		tt := z.Next()
		n := len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				if cur != nil {
					return nil, fmt.Errorf("element <%s> is missing its end tag", cur.Type)
				}
				return desc, nil
			}
			return nil, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if cur != nil {
				if tt == html.StartTagToken && string(name) == cur.Type {
					depth++
				}
				break
			}
			b := &Block{Type: string(name), Start: offset}
			b.RawAttrs = rawAttrs(src[offset:offset+n], len(name))
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				b.Attrs = append(b.Attrs, Attr{Key: string(key), Val: string(val), HasValue: len(val) > 0})
			}
			if tt == html.SelfClosingTagToken {
				b.ContentStart, b.ContentEnd, b.End = offset+n, offset+n, offset+n
				desc.Blocks = append(desc.Blocks, b)
				break
			}
			b.ContentStart = offset + n
			cur, depth = b, 1

		case html.EndTagToken:
			if cur == nil {
				break
			}
			name, _ := z.TagName()
			if string(name) != cur.Type {
				break
			}
			depth--
			if depth == 0 {
				cur.ContentEnd = offset
				cur.End = offset + n
				cur.Content = src[cur.ContentStart:cur.ContentEnd]
				desc.Blocks = append(desc.Blocks, cur)
				cur = nil
			}
		}

		offset += n
	}
}

// rawAttrs extracts the attribute text from a raw start tag such as
// `<script setup lang="ts">`.
func rawAttrs(tag string, nameLen int) string {
	s := tag[1+nameLen:]
	s = strings.TrimSuffix(s, ">")
	s = strings.TrimSuffix(s, "/")
	return strings.TrimRight(s, " \t\r\n")
}

// Assemble serializes blocks in order. Each block is written as
// `<tag attrs>\n<body>\n</tag>\n` and blocks are separated by a blank line.
func Assemble(blocks []AssembledBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, "<"+b.Tag+b.Attrs+">\n"+strings.Trim(b.Body, "\r\n")+"\n</"+b.Tag+">\n")
	}
	return strings.Join(parts, "\n")
}

// AssembledBlock is a block ready to be written back out.
type AssembledBlock struct {
	Tag   string
	Attrs string
	Body  string
}

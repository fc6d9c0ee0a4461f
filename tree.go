package rml

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// ParseError reports a problem at a specific line of the RML source.
type ParseError struct {
	Line    int
	Element string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("rml: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("rml: line %d: <%s>: %v", e.Line, e.Element, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrEmptyDocument is returned when the input holds no root element.
var ErrEmptyDocument = errors.New("no root element")

type node struct {
	name  string
	line  int
	attrs map[string]string
	items []item
}

// item is either a child element or a run of character data.
type item struct {
	node *node
	text string
}

func (n *node) attr(key string) string {
	return n.attrs[key]
}

func (n *node) has(key string) bool {
	_, ok := n.attrs[key]
	return ok
}

// firstAttr returns the value of the first present key.
func (n *node) firstAttr(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := n.attrs[k]; ok {
			return v, true
		}
	}
	return "", false
}

func (n *node) children() []*node {
	out := make([]*node, 0, len(n.items))
	for _, it := range n.items {
		if it.node != nil {
			out = append(out, it.node)
		}
	}
	return out
}

func (n *node) text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *node) writeText(b *strings.Builder) {
	for _, it := range n.items {
		if it.node != nil {
			it.node.writeText(b)
			continue
		}
		b.WriteString(it.text)
	}
}

func readTree(r io.Reader) (*node, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	dec := xml.NewDecoder(br)
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charsetReader
	var (
		root  *node
		stack []*node
	)
	for {
		line, _ := dec.InputPos()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var syn *xml.SyntaxError
			if errors.As(err, &syn) {
				return nil, &ParseError{Line: syn.Line, Err: errors.New(syn.Msg)}
			}
			return nil, &ParseError{Line: line, Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, line: line, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &ParseError{Line: line, Element: n.name, Err: errors.New("multiple root elements")}
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.items = append(parent.items, item{node: n})
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			if last := len(parent.items) - 1; last >= 0 && parent.items[last].node == nil {
				parent.items[last].text += string(t)
				continue
			}
			parent.items = append(parent.items, item{text: string(t)})
		}
	}
	if root == nil {
		return nil, &ParseError{Line: 1, Err: ErrEmptyDocument}
	}
	return root, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

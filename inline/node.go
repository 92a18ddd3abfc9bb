// Package inline scans text for single-character markers and applies the
// highest-priority matching extension handler, producing typed nodes plus
// consumed length.
package inline

import (
	"html"
	"io"
	"strings"
)

// Node is the tagged union produced by handlers: plain text, an element
// with attributes and children, or raw pre-rendered markup.
type Node interface {
	node()
}

type Text struct {
	Value string
}

type Raw struct {
	Value string
}

type Attribute struct {
	Name  string
	Value string
}

type Element struct {
	Name     string
	Attrs    []Attribute
	Children []Node
}

func (Text) node()    {}
func (Raw) node()     {}
func (Element) node() {}

// WriteHTML serializes nodes. Text is escaped, Raw passes through.
func WriteHTML(w io.Writer, nodes ...Node) error {
	for _, n := range nodes {
		switch t := n.(type) {
		case Text:
			if _, err := io.WriteString(w, html.EscapeString(t.Value)); err != nil {
				return err
			}
		case Raw:
			if _, err := io.WriteString(w, t.Value); err != nil {
				return err
			}
		case Element:
			var b strings.Builder
			b.WriteByte('<')
			b.WriteString(t.Name)
			for _, a := range t.Attrs {
				b.WriteByte(' ')
				b.WriteString(a.Name)
				b.WriteString(`="`)
				b.WriteString(html.EscapeString(a.Value))
				b.WriteByte('"')
			}
			b.WriteByte('>')
			if _, err := io.WriteString(w, b.String()); err != nil {
				return err
			}
			if err := WriteHTML(w, t.Children...); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "</"+t.Name+">"); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderHTML is WriteHTML into a string.
func RenderHTML(nodes ...Node) string {
	var b strings.Builder
	_ = WriteHTML(&b, nodes...)
	return b.String()
}

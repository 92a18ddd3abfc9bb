// Package toc assembles a table of contents from the headings accepted
// during one document render.
package toc

import (
	"fmt"
	"html"
	"strings"
)

// Entry is one accepted heading, in document order.
type Entry struct {
	Text  string
	ID    string
	Level int
}

// Depths maps heading levels to list depths: max(1, level-(first-1)),
// where first is the level of the first entry. The shallowest heading
// level seen becomes the visual top regardless of its absolute level.
func Depths(entries []Entry) []int {
	if len(entries) == 0 {
		return nil
	}
	first := entries[0].Level
	out := make([]int, len(entries))
	for i, e := range entries {
		d := e.Level - (first - 1)
		if d < 1 {
			d = 1
		}
		out[i] = d
	}
	return out
}

// Render serializes the entries as a nested list wrapped in a nav element.
// The parallel ordered-record form is the entries slice itself.
func Render(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	depths := Depths(entries)
	var b strings.Builder
	b.WriteString("<nav class=\"toc\">\n")
	depth := 0
	for i, e := range entries {
		for depth < depths[i] {
			b.WriteString(indent(depth))
			b.WriteString("<ul>\n")
			depth++
		}
		for depth > depths[i] {
			depth--
			b.WriteString(indent(depth))
			b.WriteString("</ul>\n")
		}
		b.WriteString(indent(depth))
		fmt.Fprintf(&b, "<li><a href=\"#%s\">%s</a></li>\n", e.ID, html.EscapeString(e.Text))
	}
	for depth > 0 {
		depth--
		b.WriteString(indent(depth))
		b.WriteString("</ul>\n")
	}
	b.WriteString("</nav>\n")
	return b.String()
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

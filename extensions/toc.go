package extensions

import (
	"slices"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"vellum.pub/vellum/config"
	"vellum.pub/vellum/toc"
)

var tocResultKey = parser.NewContextKey()

// tocTransformer collects every accepted heading into the parser context,
// so the TOC state lives and dies with one render call.
type tocTransformer struct {
	cfg *config.Config
}

func (t *tocTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	if !t.cfg.Enabled("toc") {
		return
	}
	levels := t.cfg.GetIntSlice("toc.levels")
	var entries []toc.Entry
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		h := n.(*ast.Heading)
		if !slices.Contains(levels, h.Level) {
			return ast.WalkSkipChildren, nil
		}
		entries = append(entries, toc.Entry{
			Text:  string(n.Text(reader.Source())),
			ID:    headingID(h),
			Level: h.Level,
		})
		return ast.WalkSkipChildren, nil
	})
	pc.Set(tocResultKey, entries)
}

func headingID(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}

// TocEntries returns the headings collected during the render that owns pc.
func TocEntries(pc parser.Context) []toc.Entry {
	entries, _ := pc.Get(tocResultKey).([]toc.Entry)
	return entries
}

type tocExtension struct {
	cfg *config.Config
}

func (e *tocExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(
			util.Prioritized(&tocTransformer{cfg: e.cfg}, priorityTocTransformer),
		),
	)
}

// TocExtension records accepted headings for table-of-contents assembly.
func TocExtension(cfg *config.Config) goldmark.Extender {
	return &tocExtension{cfg: cfg}
}

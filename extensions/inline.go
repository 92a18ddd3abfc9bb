package extensions

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"vellum.pub/vellum/inline"
)

type spanNode struct {
	ast.BaseInline
	n inline.Node
}

var KindSpan = ast.NewNodeKind("Span")

func (n *spanNode) Kind() ast.NodeKind {
	return KindSpan
}

// Dump implements Node.Dump.
func (n *spanNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// dispatchParser hands every registered marker character to the inline
// dispatcher, which resolves handler priority itself.
type dispatchParser struct {
	d *inline.Dispatcher
}

func (p *dispatchParser) Trigger() []byte {
	return p.d.Markers()
}

func (p *dispatchParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	src := block.Source()
	rem := string(line)
	full := rem
	offset := 0
	if seg.Start > 0 {
		// Give the dispatcher one character of context before the marker.
		full = string(src[seg.Start-1 : seg.Stop])
		offset = 1
	}
	m, ok := p.d.Apply(full, offset, nil)
	if !ok {
		return nil
	}
	block.Advance(m.Extent)
	return &spanNode{n: m.Node}
}

// SpanHTMLRenderer serializes dispatcher nodes.
type SpanHTMLRenderer struct{}

func NewSpanHTMLRenderer() renderer.NodeRenderer {
	return &SpanHTMLRenderer{}
}

func (r *SpanHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindSpan, r.renderSpan)
}

func (r *SpanHTMLRenderer) renderSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n, ok := node.(*spanNode)
	if !ok {
		return ast.WalkContinue, nil
	}
	if err := inline.WriteHTML(w, n.n); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkContinue, nil
}

type dispatchExtension struct {
	d *inline.Dispatcher
}

func (e *dispatchExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(&dispatchParser{d: e.d}, priorityDispatchParser),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewSpanHTMLRenderer(), prioritySpanRenderer),
		),
	)
}

// DispatchExtension registers the inline marker dispatcher with the host
// parser.
func DispatchExtension(d *inline.Dispatcher) goldmark.Extender {
	return &dispatchExtension{d: d}
}

package extensions

import (
	stdhtml "html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"vellum.pub/vellum/blockext"
	"vellum.pub/vellum/config"
)

type mathBlockNode struct {
	ast.BaseBlock
	blk *blockext.MathBlock
}

var KindMathBlock = ast.NewNodeKind("MathBlock")

func (n *mathBlockNode) Kind() ast.NodeKind {
	return KindMathBlock
}

// IsRaw reports true so the body never goes through inline parsing.
func (n *mathBlockNode) IsRaw() bool {
	return true
}

// Dump implements Node.Dump.
func (n *mathBlockNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Raw": n.blk.Raw()}, nil)
}

type mathBlockParser struct {
	cfg     *config.Config
	machine *blockext.MathMachine
}

func newMathBlockParser(cfg *config.Config) *mathBlockParser {
	return &mathBlockParser{
		cfg:     cfg,
		machine: blockext.NewMathMachine(blockext.DefaultMathDelimiters()),
	}
}

func (p *mathBlockParser) Trigger() []byte {
	return []byte{'$', '\\'}
}

func (p *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	if !p.cfg.Enabled("math") || !p.cfg.Enabled("math.block") {
		return nil, parser.NoChildren
	}
	line, seg := reader.PeekLine()
	b := p.machine.Begin(blockext.Line{Text: trimEOL(line), Segment: seg})
	if b == nil {
		return nil, parser.NoChildren
	}
	reader.Advance(seg.Len() - 1)
	return &mathBlockNode{blk: b.(*blockext.MathBlock)}, parser.NoChildren
}

func (p *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*mathBlockNode)
	line, seg := reader.PeekLine()
	if p.machine.Continue(blockext.Line{Text: trimEOL(line), Segment: seg}, n.blk) == nil {
		return parser.Close
	}
	reader.Advance(seg.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (p *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	n := node.(*mathBlockNode)
	p.machine.Complete(n.blk)
}

func (p *mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (p *mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}

// MathBlockHTMLRenderer emits the captured source verbatim, escaped, for a
// client-side math renderer to pick up.
type MathBlockHTMLRenderer struct{}

func NewMathBlockHTMLRenderer() renderer.NodeRenderer {
	return &MathBlockHTMLRenderer{}
}

func (r *MathBlockHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathBlock, r.renderMathBlock)
}

func (r *MathBlockHTMLRenderer) renderMathBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n, ok := node.(*mathBlockNode)
	if !ok {
		return ast.WalkContinue, nil
	}
	if entering {
		_, _ = w.WriteString(`<div class="math">`)
		_, _ = w.WriteString(stdhtml.EscapeString(n.blk.Raw()))
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return ast.WalkContinue, nil
}

type mathExtension struct {
	cfg *config.Config
}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(newMathBlockParser(e.cfg), priorityMathBlockParser),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewMathBlockHTMLRenderer(), priorityMathRenderer),
		),
	)
}

// MathExtension recognizes display math blocks ($$ ... $$ and \[ ... \]).
// Inline math is handled by the dispatcher extension.
func MathExtension(cfg *config.Config) goldmark.Extender {
	return &mathExtension{cfg: cfg}
}

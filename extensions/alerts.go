package extensions

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"vellum.pub/vellum/blockext"
	"vellum.pub/vellum/config"
)

type alertNode struct {
	ast.BaseBlock
	AlertType string

	blk     *blockext.AlertBlock
	machine *blockext.AlertMachine
}

var KindAlert = ast.NewNodeKind("Alert")

func (n *alertNode) Kind() ast.NodeKind {
	return KindAlert
}

// Dump implements Node.Dump.
func (n *alertNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"AlertType": n.AlertType}, nil)
}

type alertParser struct {
	cfg *config.Config
}

func newAlertParser(cfg *config.Config) *alertParser {
	return &alertParser{cfg: cfg}
}

func (p *alertParser) Trigger() []byte {
	return []byte{'>'}
}

func (p *alertParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	if !p.cfg.Enabled("alert") {
		return nil, parser.NoChildren
	}
	machine := blockext.NewAlertMachine(p.cfg.GetStringSlice("alert.types"))
	line, seg := reader.PeekLine()
	b := machine.Begin(blockext.Line{Text: trimEOL(line), Segment: seg})
	if b == nil {
		return nil, parser.NoChildren
	}
	ab := b.(*blockext.AlertBlock)
	reader.Advance(seg.Len() - 1)
	return &alertNode{AlertType: ab.Type, blk: ab, machine: machine}, parser.NoChildren
}

func (p *alertParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*alertNode)
	line, seg := reader.PeekLine()
	if n.machine.Continue(blockext.Line{Text: trimEOL(line), Segment: seg}, n.blk) == nil {
		return parser.Close
	}
	reader.Advance(seg.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (p *alertParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	n := node.(*alertNode)
	blk := n.machine.Complete(n.blk).(*blockext.AlertBlock)
	for _, para := range blk.Paragraphs {
		pnode := ast.NewParagraph()
		for _, ln := range para.Lines {
			pnode.Lines().Append(ln.Segment)
		}
		if l := pnode.Lines().Len(); l > 0 {
			seg := pnode.Lines().At(l - 1)
			pnode.Lines().Set(l-1, seg.TrimRightSpace(reader.Source()))
		}
		node.AppendChild(node, pnode)
	}
}

func (p *alertParser) CanInterruptParagraph() bool {
	return true
}

func (p *alertParser) CanAcceptIndentedLine() bool {
	return false
}

// AlertHTMLRenderer renders callout containers with a generated title
// paragraph.
type AlertHTMLRenderer struct{}

func NewAlertHTMLRenderer() renderer.NodeRenderer {
	return &AlertHTMLRenderer{}
}

func (r *AlertHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAlert, r.renderAlert)
}

func (r *AlertHTMLRenderer) renderAlert(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n, ok := node.(*alertNode)
	if !ok {
		return ast.WalkContinue, nil
	}
	if entering {
		lower := strings.ToLower(n.AlertType)
		_, _ = w.WriteString(`<div class="alert alert-` + lower + "\">\n")
		_, _ = w.WriteString(`<p class="alert-title">` + titleCase(lower) + "</p>\n")
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return ast.WalkContinue, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func trimEOL(line []byte) string {
	return strings.TrimRight(string(line), "\r\n")
}

type alertExtension struct {
	cfg *config.Config
}

func (e *alertExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(newAlertParser(e.cfg), priorityAlertBlockParser),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewAlertHTMLRenderer(), priorityAlertRenderer),
		),
	)
}

// AlertExtension recognizes "> [!NOTE]"-style callouts for the configured
// type set.
func AlertExtension(cfg *config.Config) goldmark.Extender {
	return &alertExtension{cfg: cfg}
}

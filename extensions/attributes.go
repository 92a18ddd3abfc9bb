package extensions

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"vellum.pub/vellum/config"
)

// attribListParser recognizes {:.class #id} attribute lists.
type attribListParser struct {
	cfg *config.Config
}

func newAttribListParser(cfg *config.Config) *attribListParser {
	return &attribListParser{cfg: cfg}
}

var (
	attrOpen  = []byte("{:")
	attrClose = []byte("}")
)

func (p *attribListParser) Trigger() []byte {
	return []byte{'{'}
}

type attrNode struct {
	ast.BaseInline
}

var KindAttrList = ast.NewNodeKind("AttrList")

func (n *attrNode) Kind() ast.NodeKind {
	return KindAttrList
}

func (n *attrNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

func parseAttrList(attrstr []byte) *attrNode {
	result := &attrNode{}
	classes := make([]string, 0)
	ids := make([]string, 0)
	for _, field := range strings.Fields(string(attrstr)) {
		switch field[0] {
		case '.':
			if len(field) > 1 {
				classes = append(classes, field[1:])
			}
		case '#':
			if len(field) > 1 {
				ids = append(ids, field[1:])
			}
		}
	}
	if len(classes) > 0 {
		result.SetAttribute([]byte("class"), strings.Join(classes, " "))
	}
	if len(ids) > 0 {
		result.SetAttribute([]byte("id"), strings.Join(ids, " "))
	}
	return result
}

func (p *attribListParser) Parse(parent ast.Node, block text.Reader, _ parser.Context) ast.Node {
	if !p.cfg.Enabled("attributes") {
		return nil
	}
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, attrOpen) {
		return nil
	}
	stop := bytes.Index(line, attrClose)
	if stop < 0 {
		return nil
	}
	node := parseAttrList(line[len(attrOpen):stop])
	block.Advance(stop + 1)
	return node
}

// attribListTransformer moves attributes onto the previous sibling, or
// onto the enclosing block when the list stands alone. That lets table
// cells carry attributes for the span merger to propagate.
type attribListTransformer struct{}

func (r attribListTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	var lists []ast.Node
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == KindAttrList {
			lists = append(lists, n)
		}
		return ast.WalkContinue, nil
	})
	for _, n := range lists {
		target := n.PreviousSibling()
		if target == nil {
			target = n.Parent()
		}
		if target != nil {
			for _, attr := range n.Attributes() {
				target.SetAttribute(attr.Name, attr.Value)
			}
		}
		n.Parent().RemoveChild(n.Parent(), n)
	}
}

type attribList struct {
	cfg *config.Config
}

func (e *attribList) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(newAttribListParser(e.cfg), priorityAttrListParser),
		),
		parser.WithASTTransformers(
			util.Prioritized(attribListTransformer{}, priorityAttrListTransformer),
		),
	)
}

// AttributeList lets spans and cells carry {:.class #id} attribute lists.
func AttributeList(cfg *config.Config) goldmark.Extender {
	return &attribList{cfg: cfg}
}

package extensions

import (
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"vellum.pub/vellum/config"
)

// spanTransformer merges table cells marked ">" (colspan) and "^"
// (rowspan). The colspan pass must fully resolve before the rowspan pass
// runs, because rowspan matching depends on post-colspan column indices.
type spanTransformer struct {
	cfg *config.Config
}

func (t spanTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	if !t.cfg.Enabled("table") || !t.cfg.GetBool("table.span") {
		return
	}
	src := reader.Source()
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() != east.KindTable {
			return ast.WalkContinue, nil
		}
		mergeColspans(n, src)
		mergeRowspans(n, src)
		return ast.WalkSkipChildren, nil
	})
}

func rowCells(row ast.Node) []ast.Node {
	cells := make([]ast.Node, 0, row.ChildCount())
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cells = append(cells, c)
	}
	return cells
}

func cellText(c ast.Node, src []byte) string {
	return string(c.Text(src))
}

func spanOf(c ast.Node, name string) int {
	v, ok := c.AttributeString(name)
	if !ok {
		return 1
	}
	switch t := v.(type) {
	case []byte:
		if n, err := strconv.Atoi(string(t)); err == nil {
			return n
		}
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	case int:
		return t
	}
	return 1
}

func setSpan(c ast.Node, name string, n int) {
	c.SetAttribute([]byte(name), []byte(strconv.Itoa(n)))
}

// mergeColspans scans each row right to left. A ">" cell merges into the
// nearest unmerged cell to its left; spans accumulate so chains collapse
// into one wide cell. Attributes travel rightward only when the absorbed
// cell had some and the survivor had none. Merged cells are deleted once
// the whole row is resolved.
func mergeColspans(table ast.Node, src []byte) {
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		cells := rowCells(row)
		spans := make([]int, len(cells))
		merged := make([]bool, len(cells))
		for i := range cells {
			spans[i] = 1
		}
		for i := len(cells) - 1; i >= 1; i-- {
			if cellText(cells[i], src) != ">" {
				continue
			}
			j := i - 1
			for j >= 0 && merged[j] {
				j--
			}
			if j < 0 {
				continue
			}
			spans[j] += spans[i]
			merged[i] = true
			if cells[i].Attributes() != nil && cells[j].Attributes() == nil {
				for _, attr := range cells[i].Attributes() {
					cells[j].SetAttribute(attr.Name, attr.Value)
				}
			}
		}
		for i, c := range cells {
			if merged[i] {
				row.RemoveChild(row, c)
				continue
			}
			if spans[i] > 1 {
				setSpan(c, "colspan", spans[i])
			}
		}
	}
}

// mergeRowspans walks rows top to bottom tracking, per column index, the
// most recent real cell. A "^" cell whose column index and effective
// colspan match the tracked cell directly above extends that cell's
// rowspan and is deleted; the tracked cell stays in place so chains keep
// extending the same survivor.
func mergeRowspans(table ast.Node, src []byte) {
	above := make(map[int]ast.Node)
	aboveSpan := make(map[int]int)
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		col := 0
		for _, c := range rowCells(row) {
			span := spanOf(c, "colspan")
			if cellText(c, src) == "^" {
				if up, ok := above[col]; ok && aboveSpan[col] == span {
					setSpan(up, "rowspan", spanOf(up, "rowspan")+1)
					row.RemoveChild(row, c)
					col += span
					continue
				}
			}
			above[col] = c
			aboveSpan[col] = span
			// A wide cell shadows every column it covers; stale entries
			// from earlier rows must not match through it.
			for k := col + 1; k < col+span; k++ {
				delete(above, k)
				delete(aboveSpan, k)
			}
			col += span
		}
	}
}

type tableSpan struct {
	cfg *config.Config
}

func (e *tableSpan) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(
			util.Prioritized(spanTransformer{cfg: e.cfg}, prioritySpanTransformer),
		),
	)
}

// TableSpanExtension enables ">"/"^" span-merge markers in tables.
func TableSpanExtension(cfg *config.Config) goldmark.Extender {
	return &tableSpan{cfg: cfg}
}

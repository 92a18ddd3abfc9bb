package extensions

/*
Default Block Parsers
=====================
SetextHeadingParser     100
ThematicBreakParser     200
ListParser              300
ListItemParser          400
CodeBlockParser         500
ATXHeadingParser        600
FencedCodeBlockParser   700
BlockquoteParser        800
HTMLBlockParser         900
ParagraphParser         1000

Default Inline Parsers
======================
CodeSpanParser   100
LinkParser       200
AutoLinkParser   300
RawHTMLParser    400
EmphasisParser   500

extension.Table
===============
tableASTTransformer      0
TableHTMLRenderer        500
*/

const (
	priorityMathBlockParser  = 450 // before CodeBlockParser
	priorityAlertBlockParser = 750 // before BlockquoteParser

	priorityDispatchParser = 150 // before links; the dispatcher resolves its own priorities
	priorityAttrListParser = 2000

	priorityAttrListTransformer = 300 // before the span merger so cells carry their attributes
	prioritySpanTransformer     = 500 // after tableASTTransformer has built the tables
	priorityTocTransformer      = 900

	priorityAlertRenderer = 500
	priorityMathRenderer  = 500
	prioritySpanRenderer  = 500
)

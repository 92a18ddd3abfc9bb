// Package blockext holds the multi-line block state machines shared by the
// goldmark block-parser adapters. A machine is fed logical lines and owns
// no parser state itself; everything lives in the Block it returns.
package blockext

import "github.com/yuin/goldmark/text"

// Line is one logical input line: its text without the trailing newline,
// plus the source segment it came from so adapters can hand content back
// to the host parser for inline processing.
type Line struct {
	Text    string
	Segment text.Segment
}

// Block is an in-progress multi-line construct.
type Block interface {
	Kind() string
	Interrupted() bool
	Done() bool
}

// Machine is the begin/continue/complete contract. Begin returns nil when
// the line does not open a block. Continue returns nil when the block
// ended before the given line, which must then be reprocessed by the
// caller. Complete always succeeds and finalizes the block, including the
// unterminated-at-end-of-input case.
type Machine interface {
	Begin(line Line) Block
	Continue(line Line, b Block) Block
	Complete(b Block) Block
}

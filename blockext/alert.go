package blockext

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/text"
)

var alertStart = regexp.MustCompile(`^> ?\[!([A-Za-z]+)\][ \t]*$`)

// Paragraph is one body paragraph of an alert. A paragraph with no lines
// is a deliberate spacing paragraph.
type Paragraph struct {
	Lines []Line
}

// AlertBlock accumulates the body of one callout.
type AlertBlock struct {
	Type       string
	Paragraphs []*Paragraph

	interrupted bool
	pendingPara bool
	done        bool
}

func (b *AlertBlock) Kind() string      { return "alert" }
func (b *AlertBlock) Interrupted() bool { return b.interrupted }
func (b *AlertBlock) Done() bool        { return b.done }

func (b *AlertBlock) appendLine(l Line) {
	if b.pendingPara || len(b.Paragraphs) == 0 {
		b.Paragraphs = append(b.Paragraphs, &Paragraph{})
		b.pendingPara = false
	}
	p := b.Paragraphs[len(b.Paragraphs)-1]
	p.Lines = append(p.Lines, l)
}

// AlertMachine recognizes "> [!TYPE]" callouts for a case-insensitive set
// of type names.
type AlertMachine struct {
	types map[string]bool
}

func NewAlertMachine(types []string) *AlertMachine {
	m := &AlertMachine{types: make(map[string]bool, len(types))}
	for _, t := range types {
		m.types[strings.ToUpper(t)] = true
	}
	return m
}

func (m *AlertMachine) startType(line string) (string, bool) {
	sub := alertStart.FindStringSubmatch(line)
	if sub == nil {
		return "", false
	}
	t := strings.ToUpper(sub[1])
	return t, m.types[t]
}

func (m *AlertMachine) Begin(line Line) Block {
	t, ok := m.startType(line.Text)
	if !ok {
		return nil
	}
	return &AlertBlock{Type: t, pendingPara: true}
}

// Continue feeds one line into the block. A new alert start terminates the
// current block. A ">"-prefixed line appends its remainder; if the block
// was interrupted, one spacing paragraph is inserted first and the
// remainder starts a fresh paragraph. A bare line is absorbed only while
// not interrupted: a blank one marks the interruption, a non-blank one is
// lazy continuation of the current paragraph.
func (m *AlertMachine) Continue(line Line, blk Block) Block {
	b := blk.(*AlertBlock)
	if b.done {
		return nil
	}
	txt := line.Text
	if _, ok := m.startType(txt); ok {
		return nil
	}
	if strings.HasPrefix(txt, ">") {
		off := 1
		if len(txt) > 1 && txt[1] == ' ' {
			off = 2
		}
		if b.interrupted {
			b.Paragraphs = append(b.Paragraphs, &Paragraph{})
			b.pendingPara = true
			b.interrupted = false
		}
		rest := txt[off:]
		if strings.TrimSpace(rest) == "" {
			b.pendingPara = true
			return b
		}
		b.appendLine(subLine(line, off))
		return b
	}
	if b.interrupted {
		return nil
	}
	if strings.TrimSpace(txt) == "" {
		b.interrupted = true
		return b
	}
	b.appendLine(line)
	return b
}

func (m *AlertMachine) Complete(blk Block) Block {
	b := blk.(*AlertBlock)
	b.done = true
	return b
}

// subLine slices a Line at a byte offset, keeping text and segment in step.
func subLine(l Line, off int) Line {
	if off > len(l.Text) {
		off = len(l.Text)
	}
	seg := l.Segment
	start := seg.Start + off
	if start > seg.Stop {
		start = seg.Stop
	}
	return Line{Text: l.Text[off:], Segment: text.NewSegment(start, seg.Stop)}
}

package blockext

import "strings"

// Delimiter is one opening/closing pair a math block can use.
type Delimiter struct {
	Open  string
	Close string
}

// DefaultMathDelimiters returns the delimiter candidates in match order.
func DefaultMathDelimiters() []Delimiter {
	return []Delimiter{
		{Open: "$$", Close: "$$"},
		{Open: `\[`, Close: `\]`},
	}
}

// MathBlock accumulates the verbatim source of one display-math block:
// opener, body, closer and any trailing text, exactly as written.
type MathBlock struct {
	Delim Delimiter

	raw           strings.Builder
	pendingBlanks int
	done          bool
}

func (b *MathBlock) Kind() string      { return "math" }
func (b *MathBlock) Interrupted() bool { return b.pendingBlanks > 0 }
func (b *MathBlock) Done() bool        { return b.done }

// Raw returns the accumulated block source.
func (b *MathBlock) Raw() string { return b.raw.String() }

// MathMachine recognizes display math fenced by an ordered list of
// delimiter candidates.
type MathMachine struct {
	Delims []Delimiter
}

func NewMathMachine(delims []Delimiter) *MathMachine {
	if len(delims) == 0 {
		delims = DefaultMathDelimiters()
	}
	return &MathMachine{Delims: delims}
}

// Begin matches the first delimiter candidate that opens at line start and
// captures same-line content up to a same-line closing delimiter or end of
// line.
func (m *MathMachine) Begin(line Line) Block {
	for _, d := range m.Delims {
		if !strings.HasPrefix(line.Text, d.Open) {
			continue
		}
		b := &MathBlock{Delim: d}
		rest := line.Text[len(d.Open):]
		if i := findCloser(rest, d.Close); i >= 0 {
			b.raw.WriteString(d.Open)
			b.raw.WriteString(rest[:i])
			b.raw.WriteString(d.Close)
			b.raw.WriteString(rest[i+len(d.Close):])
			b.done = true
		} else {
			b.raw.WriteString(d.Open)
			b.raw.WriteString(rest)
		}
		return b
	}
	return nil
}

// Continue refuses a line once the block is complete. Pending blank lines
// are replayed into the body before the new line is considered. A line
// starting with the matching closing delimiter completes the block,
// keeping any trailing text; any other line is appended verbatim.
func (m *MathMachine) Continue(line Line, blk Block) Block {
	b := blk.(*MathBlock)
	if b.done {
		return nil
	}
	txt := line.Text
	if strings.TrimSpace(txt) == "" {
		b.pendingBlanks++
		return b
	}
	for b.pendingBlanks > 0 {
		b.raw.WriteByte('\n')
		b.pendingBlanks--
	}
	if strings.HasPrefix(txt, b.Delim.Close) {
		b.raw.WriteByte('\n')
		b.raw.WriteString(b.Delim.Close)
		b.raw.WriteString(txt[len(b.Delim.Close):])
		b.done = true
		return b
	}
	b.raw.WriteByte('\n')
	b.raw.WriteString(txt)
	return b
}

// Complete finalizes the block. An unterminated block simply ends at input
// end; that is a recovery case, never an error.
func (m *MathMachine) Complete(blk Block) Block {
	b := blk.(*MathBlock)
	b.done = true
	return b
}

// findCloser returns the index of the first occurrence of closer in s that
// is not preceded by an escaping backslash, or -1.
func findCloser(s, closer string) int {
	from := 0
	for {
		i := strings.Index(s[from:], closer)
		if i < 0 {
			return -1
		}
		i += from
		if i == 0 || s[i-1] != '\\' {
			return i
		}
		from = i + 1
	}
}

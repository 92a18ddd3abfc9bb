package inline

import (
	"fmt"
	"sort"
	"strings"

	"vellum.pub/vellum/config"
)

// Match is a successful handler application. Extent is the number of input
// bytes the node consumes. Position is the absolute offset the node starts
// at; -1 means "the marker's own offset". A handler may move Position left
// of the marker to claim a lookbehind window, but a Position or Extent
// that falls outside the input is a defect in the handler, not something
// the scanner guards against.
type Match struct {
	Node     Node
	Extent   int
	Position int
}

// Context is what a handler sees: the text from the marker onward, the
// character immediately before it, and the full original input.
type Context struct {
	Remaining string
	Before    byte
	Source    string
	Offset    int
	Config    *config.Config

	d *Dispatcher
}

// LiveMarker reports whether b is a registered marker character.
func (c *Context) LiveMarker(b byte) bool {
	return c.d.live(b)
}

// HandlerFunc inspects the context and either claims a span or declines.
// A handler whose feature is disabled must decline exactly as if it never
// matched.
type HandlerFunc func(ctx *Context) (Match, bool)

type handlerSpec struct {
	marker   byte
	priority int
	fn       HandlerFunc
}

type namedHandler struct {
	name string
	fn   HandlerFunc
}

// Dispatcher owns the marker table: one ordered handler list per marker
// character, built once at construction and immutable afterwards. The
// literal-escape handler is always appended last for every marker,
// regardless of registration order.
type Dispatcher struct {
	cfg     *config.Config
	table   map[byte][]namedHandler
	markers string
}

// NewDispatcher resolves handler identifiers to functions and builds the
// marker table. With no identifiers, DefaultHandlers is used. Unknown
// identifiers are a programming error and fail construction.
func NewDispatcher(cfg *config.Config, names ...string) (*Dispatcher, error) {
	if len(names) == 0 {
		names = DefaultHandlers()
	}
	d := &Dispatcher{cfg: cfg, table: make(map[byte][]namedHandler)}

	type cand struct {
		name string
		spec handlerSpec
	}
	perMarker := make(map[byte][]cand)
	hasEscape := false
	for _, n := range names {
		sp, ok := registry[n]
		if !ok {
			return nil, fmt.Errorf("inline: unknown handler %q", n)
		}
		if n == HandlerEscape {
			hasEscape = true
			continue
		}
		perMarker[sp.marker] = append(perMarker[sp.marker], cand{n, sp})
	}
	if hasEscape {
		if _, ok := perMarker['\\']; !ok {
			perMarker['\\'] = nil
		}
	}

	markers := make([]byte, 0, len(perMarker))
	for m, cands := range perMarker {
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].spec.priority < cands[j].spec.priority
		})
		for _, c := range cands {
			d.table[m] = append(d.table[m], namedHandler{c.name, c.spec.fn})
		}
		markers = append(markers, m)
	}
	if hasEscape {
		esc := registry[HandlerEscape]
		for m := range perMarker {
			d.table[m] = append(d.table[m], namedHandler{HandlerEscape, esc.fn})
		}
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i] < markers[j] })
	d.markers = string(markers)
	return d, nil
}

// Markers returns the registered marker characters in ascending order.
func (d *Dispatcher) Markers() []byte {
	return []byte(d.markers)
}

func (d *Dispatcher) live(b byte) bool {
	return strings.IndexByte(d.markers, b) >= 0
}

// Apply tries the handlers registered for the marker at source[offset],
// strictly in priority order, skipping any identifier in skip. The first
// success wins.
func (d *Dispatcher) Apply(source string, offset int, skip map[string]bool) (Match, bool) {
	rem := source[offset:]
	var before byte
	if offset > 0 {
		before = source[offset-1]
	}
	for _, h := range d.table[rem[0]] {
		if skip[h.name] {
			continue
		}
		ctx := &Context{
			Remaining: rem,
			Before:    before,
			Source:    source,
			Offset:    offset,
			Config:    d.cfg,
			d:         d,
		}
		if m, ok := h.fn(ctx); ok {
			if m.Position < 0 {
				m.Position = offset
			}
			return m, true
		}
	}
	return Match{}, false
}

// Scan covers source exactly once, left to right. Text before a matched
// position is emitted as plain Text; scanning resumes after the consumed
// span. When no handler matches a marker, the single marker character is
// emitted literally and the scan advances one character, which bounds the
// number of steps by the input length. Identifiers in nonNestable are
// skipped for the whole scan.
func (d *Dispatcher) Scan(source string, nonNestable ...string) []Node {
	var skip map[string]bool
	if len(nonNestable) > 0 {
		skip = make(map[string]bool, len(nonNestable))
		for _, n := range nonNestable {
			skip[n] = true
		}
	}
	var out []Node
	pos, emitted := 0, 0
	for pos < len(source) {
		idx := strings.IndexAny(source[pos:], d.markers)
		if idx < 0 {
			break
		}
		off := pos + idx
		m, ok := d.Apply(source, off, skip)
		if !ok {
			pos = off + 1
			continue
		}
		if m.Position > emitted {
			out = append(out, Text{Value: source[emitted:m.Position]})
		}
		out = append(out, m.Node)
		pos = m.Position + m.Extent
		emitted = pos
	}
	if emitted < len(source) {
		out = append(out, Text{Value: source[emitted:]})
	}
	return out
}

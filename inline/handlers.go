package inline

import (
	"strings"

	emojidata "github.com/kyokomi/emoji/v2"
)

// Handler identifiers. The registry is a closed enumeration: identifiers
// are resolved to functions when the marker table is built, never at
// dispatch time.
const (
	HandlerMath      = "math"
	HandlerMathParen = "mathParen"
	HandlerEmoji     = "emoji"
	HandlerEscape    = "escape"
)

// DefaultHandlers returns every shipped handler identifier.
func DefaultHandlers() []string {
	return []string{HandlerMath, HandlerMathParen, HandlerEmoji, HandlerEscape}
}

var registry = map[string]handlerSpec{
	HandlerMath:      {marker: '$', priority: 100, fn: matchDollarMath},
	HandlerMathParen: {marker: '\\', priority: 100, fn: matchParenMath},
	HandlerEmoji:     {marker: ':', priority: 200, fn: matchEmoji},
	HandlerEscape:    {marker: '\\', priority: 10000, fn: matchEscape},
}

func match(n Node, extent int) (Match, bool) {
	return Match{Node: n, Extent: extent, Position: -1}, true
}

func mathSpan(body string) Node {
	return Element{
		Name:     "span",
		Attrs:    []Attribute{{Name: "class", Value: "math inline"}},
		Children: []Node{Text{Value: `\(` + body + `\)`}},
	}
}

// matchDollarMath claims $...$ spans. The opening dollar must not start a
// display block ($$), the body must stay on one line, may not be empty and
// may not begin or end with a space, and the closing dollar must not be
// escaped.
func matchDollarMath(ctx *Context) (Match, bool) {
	if !ctx.Config.Enabled("math") || !ctx.Config.Enabled("math.inline") {
		return Match{}, false
	}
	rem := ctx.Remaining
	if len(rem) < 3 || rem[1] == '$' {
		return Match{}, false
	}
	for i := 1; i < len(rem); i++ {
		switch rem[i] {
		case '\n':
			return Match{}, false
		case '$':
			if rem[i-1] == '\\' {
				continue
			}
			body := rem[1:i]
			if body[0] == ' ' || body[len(body)-1] == ' ' {
				return Match{}, false
			}
			return match(mathSpan(body), i+1)
		}
	}
	return Match{}, false
}

// matchParenMath claims \(...\) spans.
func matchParenMath(ctx *Context) (Match, bool) {
	if !ctx.Config.Enabled("math") || !ctx.Config.Enabled("math.inline") {
		return Match{}, false
	}
	rem := ctx.Remaining
	if !strings.HasPrefix(rem, `\(`) {
		return Match{}, false
	}
	end := strings.Index(rem[2:], `\)`)
	if end < 0 {
		return Match{}, false
	}
	body := rem[2 : 2+end]
	if strings.ContainsRune(body, '\n') {
		return Match{}, false
	}
	return match(mathSpan(body), 2+end+2)
}

var emojiCodes = emojidata.CodeMap()

// matchEmoji replaces :name: with its glyph when the name is known.
func matchEmoji(ctx *Context) (Match, bool) {
	if !ctx.Config.Enabled("emoji") {
		return Match{}, false
	}
	rem := ctx.Remaining
	end := -1
	for i := 1; i < len(rem) && i < 64; i++ {
		c := rem[i]
		if c == ':' {
			end = i
			break
		}
		if !(c == '_' || c == '-' || c == '+' ||
			c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return Match{}, false
		}
	}
	if end <= 1 {
		return Match{}, false
	}
	glyph, ok := emojiCodes[rem[:end+1]]
	if !ok {
		return Match{}, false
	}
	return match(Text{Value: glyph}, end+1)
}

// matchEscape turns a backslash followed by a live marker into a
// two-character literal. It defers when math is enabled and the window
// could instead open a math delimiter, because those delimiters start with
// a backslash themselves. The deferral applies to opening delimiters only;
// closers are handled by whatever construct opened them.
func matchEscape(ctx *Context) (Match, bool) {
	rem := ctx.Remaining
	if len(rem) < 2 || rem[0] != '\\' {
		return Match{}, false
	}
	if ctx.Config.Enabled("math") &&
		(strings.HasPrefix(rem, `\(`) || strings.HasPrefix(rem, `\[`)) {
		return Match{}, false
	}
	next := rem[1]
	if !ctx.LiveMarker(next) {
		return Match{}, false
	}
	return match(Text{Value: string(next)}, 2)
}

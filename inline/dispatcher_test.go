package inline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum.pub/vellum/config"
)

func newInlineConfig(t *testing.T, overrides map[string]any) *config.Config {
	t.Helper()
	s, err := config.Compile(map[string]any{
		"emoji": true,
		"math": map[string]any{
			"enabled": true,
			"inline":  true,
			"block":   true,
		},
	})
	require.NoError(t, err)
	cfg := s.New()
	if overrides != nil {
		require.NoError(t, cfg.Apply(overrides))
	}
	return cfg
}

func newTestDispatcher(t *testing.T, overrides map[string]any) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(newInlineConfig(t, overrides))
	require.NoError(t, err)
	return d
}

func scanHTML(d *Dispatcher, source string) string {
	return RenderHTML(d.Scan(source)...)
}

func Test_NewDispatcher(t *testing.T) {
	t.Run("should register markers in ascending order", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		assert.Equal(t, []byte{'$', ':', '\\'}, d.Markers())
	})

	t.Run("should fail on an unknown handler identifier", func(t *testing.T) {
		_, err := NewDispatcher(newInlineConfig(t, nil), "math", "sparkles")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sparkles")
	})

	t.Run("should keep the backslash marker live for escape alone", func(t *testing.T) {
		d, err := NewDispatcher(newInlineConfig(t, nil), HandlerEscape)
		require.NoError(t, err)
		assert.Equal(t, []byte{'\\'}, d.Markers())
	})
}

func Test_Dispatcher_Scan(t *testing.T) {
	t.Run("should cover the input exactly once", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		nodes := d.Scan("before $x^2$ after")
		require.Len(t, nodes, 3)
		assert.Equal(t, Text{Value: "before "}, nodes[0])
		assert.Equal(t, Text{Value: " after"}, nodes[2])
		el, ok := nodes[1].(Element)
		require.True(t, ok)
		assert.Equal(t, "span", el.Name)
	})

	t.Run("should emit an unmatched marker literally and keep going", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		assert.Equal(t, "price is $5 today", scanHTML(d, "price is $5 today"))
	})

	t.Run("should terminate on marker-dense input", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		src := strings.Repeat("$", 500)
		assert.Equal(t, src, scanHTML(d, src))
	})

	t.Run("should render inline dollar math as a span", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		out := scanHTML(d, "$e=mc^2$")
		assert.Equal(t, `<span class="math inline">\(e=mc^2\)</span>`, out)
	})

	t.Run("should reject dollar math with space-bounded body", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		assert.Equal(t, "$ not math $", scanHTML(d, "$ not math $"))
	})

	t.Run("should reject dollar math across lines", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		assert.Equal(t, "$a\nb$", scanHTML(d, "$a\nb$"))
	})

	t.Run("should render paren math as a span", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		out := scanHTML(d, `\(a+b\)`)
		assert.Equal(t, `<span class="math inline">\(a+b\)</span>`, out)
	})

	t.Run("should replace known emoji codes", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		out := scanHTML(d, "ship it :rocket:")
		assert.NotContains(t, out, ":rocket:")
		assert.True(t, strings.HasPrefix(out, "ship it "))
	})

	t.Run("should leave unknown emoji codes alone", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		assert.Equal(t, "a :definitelynotanemoji: b", scanHTML(d, "a :definitelynotanemoji: b"))
	})

	t.Run("should treat disabled features as plain text", func(t *testing.T) {
		d := newTestDispatcher(t, map[string]any{
			"math":  map[string]any{"inline": false},
			"emoji": false,
		})
		assert.Equal(t, "$x$ and :rocket:", scanHTML(d, "$x$ and :rocket:"))
	})

	t.Run("should skip handlers named as non-nestable", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		nodes := d.Scan("$x$", HandlerMath)
		require.Len(t, nodes, 1)
		assert.Equal(t, Text{Value: "$x$"}, nodes[0])
	})
}

func Test_Escape(t *testing.T) {
	t.Run("should collapse an escaped marker to its literal", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		assert.Equal(t, "a $ b", scanHTML(d, `a \$ b`))
	})

	t.Run("should not escape a non-marker character", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		assert.Equal(t, `a \b c`, scanHTML(d, `a \b c`))
	})

	t.Run("should yield the math opener when math is enabled", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		out := scanHTML(d, `\(x\)`)
		assert.Equal(t, `<span class="math inline">\(x\)</span>`, out)
	})

	t.Run("should leave the paren sequence literal when math is disabled", func(t *testing.T) {
		d := newTestDispatcher(t, map[string]any{"math": map[string]any{"enabled": false}})
		assert.Equal(t, `\(x\)`, scanHTML(d, `\(x\)`))
	})

	t.Run("should leave a trailing backslash literal", func(t *testing.T) {
		d := newTestDispatcher(t, nil)
		assert.Equal(t, `tail\`, scanHTML(d, `tail\`))
	})
}

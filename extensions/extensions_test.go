package extensions

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"vellum.pub/vellum/config"
	"vellum.pub/vellum/toc"
)

func newExtConfig(t *testing.T, overrides map[string]any) *config.Config {
	t.Helper()
	s, err := config.Compile(map[string]any{
		"math": map[string]any{
			"enabled": true,
			"inline":  true,
			"block":   true,
		},
		"alert": map[string]any{
			"enabled": true,
			"types":   []string{"note", "tip", "important", "warning", "caution"},
		},
		"table": map[string]any{
			"enabled": true,
			"span":    true,
		},
		"toc": map[string]any{
			"enabled":       true,
			"placeholder":   "[TOC]",
			"levels":        []int{1, 2, 3, 4, 5, 6},
			"lowercase":     true,
			"transliterate": true,
			"delimiter":     "-",
			"blacklist":     []string{},
			"replacements":  []string{},
		},
		"attributes": true,
	})
	require.NoError(t, err)
	cfg := s.New()
	if overrides != nil {
		require.NoError(t, cfg.Apply(overrides))
	}
	return cfg
}

func convert(t *testing.T, md goldmark.Markdown, source string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte(source), &buf))
	return buf.String()
}

func Test_TableSpanExtension(t *testing.T) {
	cfg := newExtConfig(t, nil)
	md := goldmark.New(goldmark.WithExtensions(extension.Table, TableSpanExtension(cfg)))

	t.Run("should merge continuation cells into a colspan", func(t *testing.T) {
		out := convert(t, md, "| A | > |\n|---|---|\n| a | b |\n")
		assert.Contains(t, out, `colspan="2"`)
		assert.NotContains(t, out, "&gt;</th>")
	})

	t.Run("should collapse a continuation chain into one wide cell", func(t *testing.T) {
		out := convert(t, md, "| A | > | > |\n|---|---|---|\n| a | b | c |\n")
		assert.Contains(t, out, `colspan="3"`)
	})

	t.Run("should extend rowspans column by column after colspans settle", func(t *testing.T) {
		out := convert(t, md, "| A | > |\n|---|---|\n| 1 | ^ |\n| 1 | ^ |\n")
		assert.Contains(t, out, `colspan="2"`)
		assert.Contains(t, out, `rowspan="2"`)
	})

	t.Run("should not merge a caret whose colspan differs from the cell above", func(t *testing.T) {
		out := convert(t, md, "| A | B |\n|---|---|\n| x | > |\n| y | ^ |\n")
		assert.NotContains(t, out, "rowspan")
	})

	t.Run("should leave tables alone when span merging is off", func(t *testing.T) {
		plain := newExtConfig(t, map[string]any{"table": map[string]any{"span": false}})
		mdPlain := goldmark.New(goldmark.WithExtensions(extension.Table, TableSpanExtension(plain)))
		out := convert(t, mdPlain, "| A | > |\n|---|---|\n| a | b |\n")
		assert.NotContains(t, out, "colspan")
		assert.Contains(t, out, "&gt;")
	})
}

func Test_AnchorIDs(t *testing.T) {
	gen := func(f parser.IDs, s string) string {
		return string(f.Generate([]byte(s), ast.KindHeading))
	}

	t.Run("should lowercase and delimit", func(t *testing.T) {
		f := NewAnchorIDs(newExtConfig(t, nil), nil)
		assert.Equal(t, "hello-world", gen(f, "Hello, World!"))
	})

	t.Run("should collapse delimiter runs and trim the ends", func(t *testing.T) {
		f := NewAnchorIDs(newExtConfig(t, nil), nil)
		assert.Equal(t, "a-b", gen(f, "  a --- b  "))
	})

	t.Run("should uniquify repeats with the smallest free suffix", func(t *testing.T) {
		f := NewAnchorIDs(newExtConfig(t, nil), nil)
		assert.Equal(t, "title", gen(f, "Title"))
		assert.Equal(t, "title-1", gen(f, "Title"))
		assert.Equal(t, "title-2", gen(f, "Title"))
	})

	t.Run("should never hand out a blacklisted id", func(t *testing.T) {
		cfg := newExtConfig(t, map[string]any{
			"toc": map[string]any{"blacklist": []string{"index", "index-1"}},
		})
		f := NewAnchorIDs(cfg, nil)
		assert.Equal(t, "index-2", gen(f, "Index"))
	})

	t.Run("should apply literal replacements before sanitizing", func(t *testing.T) {
		cfg := newExtConfig(t, map[string]any{
			"toc": map[string]any{"replacements": []string{"c++", "cpp", "&", "and"}},
		})
		f := NewAnchorIDs(cfg, nil)
		assert.Equal(t, "cpp-and-go", gen(f, "C++ & Go"))
	})

	t.Run("should drop a trailing unpaired replacement", func(t *testing.T) {
		cfg := newExtConfig(t, map[string]any{
			"toc": map[string]any{"replacements": []string{"&", "and", "orphan"}},
		})
		f := NewAnchorIDs(cfg, nil)
		assert.Equal(t, "a-and-b-orphan", gen(f, "a & b orphan"))
	})

	t.Run("should transliterate beyond ASCII", func(t *testing.T) {
		f := NewAnchorIDs(newExtConfig(t, nil), nil)
		assert.Equal(t, "cafe-privet", gen(f, "Café Привет"))
	})

	t.Run("should fall back when nothing survives sanitizing", func(t *testing.T) {
		f := NewAnchorIDs(newExtConfig(t, nil), nil)
		assert.Equal(t, "heading", gen(f, "!!!"))
		assert.Equal(t, "heading-1", gen(f, "???"))
	})

	t.Run("should respect ids reserved through Put", func(t *testing.T) {
		f := NewAnchorIDs(newExtConfig(t, nil), nil)
		f.Put([]byte("setup"))
		assert.Equal(t, "setup-1", gen(f, "Setup"))
	})

	t.Run("should hand the whole pipeline to a provider", func(t *testing.T) {
		provider := func(text string, cfg *config.Config) string {
			return "custom:" + text
		}
		f := NewAnchorIDs(newExtConfig(t, nil), provider)
		assert.Equal(t, "custom:Hello World", gen(f, "Hello World"))
	})
}

func Test_Transliterate(t *testing.T) {
	t.Run("should strip Latin diacritics", func(t *testing.T) {
		assert.Equal(t, "Dvorak", Transliterate("Dvořák"))
		assert.Equal(t, "Zazolc gesla jazn", Transliterate("Zażółć gęślą jaźń"))
		assert.Equal(t, "Istanbul", Transliterate("İstanbul"))
	})

	t.Run("should map Greek letters", func(t *testing.T) {
		assert.Equal(t, "alfa", Transliterate("αλφα"))
	})

	t.Run("should map Cyrillic including Ukrainian extras", func(t *testing.T) {
		assert.Equal(t, "privet", Transliterate("привет"))
		assert.Equal(t, "kiyiv", Transliterate("київ"))
	})

	t.Run("should uppercase mapped letters by position", func(t *testing.T) {
		assert.Equal(t, "Lodz", Transliterate("Łódź"))
	})

	t.Run("should drop runes it cannot express", func(t *testing.T) {
		assert.Equal(t, "ab", Transliterate("a☃b"))
	})
}

func Test_TocTransformer(t *testing.T) {
	newTocMarkdown := func(cfg *config.Config) goldmark.Markdown {
		return goldmark.New(
			goldmark.WithExtensions(TocExtension(cfg)),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		)
	}
	render := func(t *testing.T, cfg *config.Config, source string) []toc.Entry {
		t.Helper()
		md := newTocMarkdown(cfg)
		pc := parser.NewContext(parser.WithIDs(NewAnchorIDs(cfg, nil)))
		var buf bytes.Buffer
		require.NoError(t, md.Convert([]byte(source), &buf, parser.WithContext(pc)))
		return TocEntries(pc)
	}

	t.Run("should collect accepted headings in document order", func(t *testing.T) {
		cfg := newExtConfig(t, nil)
		entries := render(t, cfg, "# One\n\ntext\n\n## Two\n\n# Three\n")
		require.Len(t, entries, 3)
		assert.Equal(t, toc.Entry{Text: "One", ID: "one", Level: 1}, entries[0])
		assert.Equal(t, toc.Entry{Text: "Two", ID: "two", Level: 2}, entries[1])
		assert.Equal(t, toc.Entry{Text: "Three", ID: "three", Level: 1}, entries[2])
	})

	t.Run("should skip headings outside the configured levels", func(t *testing.T) {
		cfg := newExtConfig(t, map[string]any{
			"toc": map[string]any{"levels": []int{2, 3}},
		})
		entries := render(t, cfg, "# One\n\n## Two\n\n### Three\n")
		require.Len(t, entries, 2)
		assert.Equal(t, "Two", entries[0].Text)
	})

	t.Run("should collect nothing when the feature is off", func(t *testing.T) {
		cfg := newExtConfig(t, map[string]any{"toc": map[string]any{"enabled": false}})
		entries := render(t, cfg, "# One\n")
		assert.Empty(t, entries)
	})
}

// Package vellum renders an extended Markdown dialect to HTML. The base
// CommonMark grammar and serializer come from goldmark; vellum registers
// its own inline handlers, block state machines and tree transforms into
// it and post-processes the result.
package vellum

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/mitchellh/hashstructure"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"vellum.pub/vellum/config"
	"vellum.pub/vellum/extensions"
	"vellum.pub/vellum/inline"
	"vellum.pub/vellum/toc"
)

// Engine renders documents with one configuration. Renders are blocking
// and must not overlap; the per-render state (anchor registry, TOC
// accumulator) is created fresh inside every call.
type Engine struct {
	cfg      *config.Config
	md       goldmark.Markdown
	anchorFn extensions.AnchorProvider
}

type settings struct {
	overrides []override
	anchorFn  extensions.AnchorProvider
}

type override struct {
	tree map[string]any
	raw  []byte
}

// Option configures a new Engine.
type Option func(*settings)

// WithOptions overrides defaults from a nested mapping mirroring the
// default tree's shape. Unknown paths fail New with the offending path.
func WithOptions(tree map[string]any) Option {
	return func(s *settings) {
		s.overrides = append(s.overrides, override{tree: tree})
	}
}

// WithOptionsYAML is WithOptions for a YAML document.
func WithOptionsYAML(doc []byte) Option {
	return func(s *settings) {
		s.overrides = append(s.overrides, override{raw: doc})
	}
}

// WithAnchorProvider installs a custom anchor-id function, bypassing the
// built-in pipeline entirely.
func WithAnchorProvider(fn extensions.AnchorProvider) Option {
	return func(s *settings) {
		s.anchorFn = fn
	}
}

// New compiles the configuration and assembles the renderer. This is the
// only place errors surface; a successfully constructed Engine renders
// best-effort HTML for any input.
func New(opts ...Option) (*Engine, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	cfg := sch.New()
	for _, o := range s.overrides {
		tree := o.tree
		if o.raw != nil {
			tree, err = config.FromYAML(o.raw)
			if err != nil {
				return nil, err
			}
		}
		if err := cfg.Apply(tree); err != nil {
			return nil, err
		}
	}
	d, err := inline.NewDispatcher(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		md:       buildMarkdown(cfg, d),
		anchorFn: s.anchorFn,
	}, nil
}

func buildMarkdown(cfg *config.Config, d *inline.Dispatcher) goldmark.Markdown {
	exts := []goldmark.Extender{
		extensions.DispatchExtension(d),
		extensions.MathExtension(cfg),
		extensions.AlertExtension(cfg),
		extensions.AttributeList(cfg),
		extensions.TocExtension(cfg),
	}
	if cfg.Enabled("table") {
		exts = append(exts, extension.Table, extensions.TableSpanExtension(cfg))
	}
	if cfg.Enabled("highlight") {
		hopts := []highlighting.Option{
			highlighting.WithStyle(cfg.GetString("highlight.style")),
		}
		if cfg.GetBool("highlight.linenumbers") {
			hopts = append(hopts, highlighting.WithFormatOptions(chromahtml.WithLineNumbers(true)))
		}
		exts = append(exts, highlighting.NewHighlighting(hopts...))
	}
	ropts := []renderer.Option{}
	if cfg.GetBool("unsafe") {
		ropts = append(ropts, html.WithUnsafe())
	}
	if cfg.GetBool("hardwraps") {
		ropts = append(ropts, html.WithHardWraps())
	}
	if cfg.GetBool("xhtml") {
		ropts = append(ropts, html.WithXHTML())
	}
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(ropts...),
	)
}

// Config returns the engine's live option handle.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// tocSalt keeps the placeholder token unpredictable, so ordinary paragraph
// rendering cannot mangle or collide with it.
var tocSalt = rand.Uint64()

func placeholderMark(token string) string {
	h, err := hashstructure.Hash(struct {
		Salt  uint64
		Token string
	}{tocSalt, token}, nil)
	if err != nil {
		h = tocSalt
	}
	return fmt.Sprintf("vellumtoc%016x", h)
}

// Render converts one full document. Malformed or unterminated constructs
// degrade to best-effort output; they never fail the call.
func (e *Engine) Render(source string) (string, error) {
	out, _, err := e.RenderWithToc(source)
	return out, err
}

// RenderWithToc is Render plus the ordered table-of-contents records
// collected from the document's accepted headings.
func (e *Engine) RenderWithToc(source string) (string, []toc.Entry, error) {
	token := e.cfg.GetString("toc.placeholder")
	substitute := e.cfg.Enabled("toc") && token != "" && strings.Contains(source, token)
	work := source
	var mark string
	if substitute {
		mark = placeholderMark(token)
		work = strings.ReplaceAll(source, token, mark)
	}

	pc := parser.NewContext(parser.WithIDs(extensions.NewAnchorIDs(e.cfg, e.anchorFn)))
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(work), &buf, parser.WithContext(pc)); err != nil {
		return "", nil, err
	}
	out := buf.String()
	entries := extensions.TocEntries(pc)
	if substitute {
		rendered := toc.Render(entries)
		out = strings.ReplaceAll(out, "<p>"+mark+"</p>\n", rendered)
		out = strings.ReplaceAll(out, mark, rendered)
	}
	return out, entries, nil
}

// RenderInline converts a single line with no block-level constructs and
// strips the paragraph wrapper.
func (e *Engine) RenderInline(source string) (string, error) {
	source = strings.ReplaceAll(source, "\n", " ")
	pc := parser.NewContext(parser.WithIDs(extensions.NewAnchorIDs(e.cfg, e.anchorFn)))
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(source), &buf, parser.WithContext(pc)); err != nil {
		return "", err
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	out = strings.TrimPrefix(out, "<p>")
	out = strings.TrimSuffix(out, "</p>")
	return out, nil
}

package extensions

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/text/unicode/norm"

	"vellum.pub/vellum/config"
)

// AnchorProvider overrides the whole built-in anchor pipeline. When set it
// takes total precedence: no lowercasing, transliteration, sanitizing or
// uniquifying happens around it.
type AnchorProvider func(text string, cfg *config.Config) string

// idFactory derives unique heading anchors for one document render. The
// registry resets with every render because a fresh factory is attached to
// each parser context.
type idFactory struct {
	cfg       *config.Config
	provider  AnchorProvider
	used      map[string]struct{}
	blacklist map[string]struct{}
	delim     string
	replacer  *strings.Replacer
	lowercase bool
	translit  bool
}

// NewAnchorIDs builds the parser.IDs factory for a single render call.
func NewAnchorIDs(cfg *config.Config, provider AnchorProvider) parser.IDs {
	f := &idFactory{
		cfg:       cfg,
		provider:  provider,
		used:      make(map[string]struct{}),
		blacklist: make(map[string]struct{}),
		lowercase: cfg.GetBool("toc.lowercase"),
		translit:  cfg.GetBool("toc.transliterate"),
	}
	f.delim = cfg.GetString("toc.delimiter")
	if f.delim == "" {
		f.delim = "-"
	}
	for _, b := range cfg.GetStringSlice("toc.blacklist") {
		f.blacklist[b] = struct{}{}
	}
	pairs := cfg.GetStringSlice("toc.replacements")
	if len(pairs)%2 != 0 {
		pairs = pairs[:len(pairs)-1]
	}
	f.replacer = strings.NewReplacer(pairs...)
	return f
}

func (f *idFactory) Generate(value []byte, kind ast.NodeKind) []byte {
	if f.provider != nil {
		id := f.provider(string(value), f.cfg)
		f.used[id] = struct{}{}
		return []byte(id)
	}
	s := string(value)
	if f.lowercase {
		s = strings.ToLower(s)
	}
	s = f.replacer.Replace(s)
	s = norm.NFC.String(s)
	if f.translit {
		s = Transliterate(s)
	}
	s = f.sanitize(s)
	if s == "" {
		if kind == ast.KindHeading {
			s = "heading"
		} else {
			s = "id"
		}
	}
	return []byte(f.unique(s))
}

func (f *idFactory) Put(value []byte) {
	f.used[string(value)] = struct{}{}
}

// sanitize replaces every run of non-letter, non-digit characters with one
// delimiter and trims delimiters from both ends.
func (f *idFactory) sanitize(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteString(f.delim)
			}
			pending = false
			b.WriteRune(r)
		} else {
			pending = true
		}
	}
	return b.String()
}

// unique keeps the base string for its first occurrence unless it is
// blacklisted; otherwise it appends "-N" for the smallest unused,
// non-blacklisted N.
func (f *idFactory) unique(base string) string {
	if _, black := f.blacklist[base]; !black {
		if _, taken := f.used[base]; !taken {
			f.used[base] = struct{}{}
			return base
		}
	}
	for n := 1; ; n++ {
		cand := base + "-" + strconv.Itoa(n)
		if _, black := f.blacklist[cand]; black {
			continue
		}
		if _, taken := f.used[cand]; taken {
			continue
		}
		f.used[cand] = struct{}{}
		return cand
	}
}

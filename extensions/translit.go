package extensions

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// translitTable maps runes that survive combining-mark stripping to ASCII.
// Greek and Cyrillic letters, the Ukrainian extras, and the handful of
// Latin letters that are not base+diacritic compositions (ł, ı, ß, ...).
var translitTable = map[rune]string{
	'ß': "ss", 'æ': "ae", 'œ': "oe", 'ø': "o", 'đ': "d", 'ð': "d",
	'þ': "th", 'ħ': "h", 'ł': "l", 'ı': "i",

	'α': "a", 'β': "b", 'γ': "g", 'δ': "d", 'ε': "e", 'ζ': "z",
	'η': "i", 'θ': "th", 'ι': "i", 'κ': "k", 'λ': "l", 'μ': "m",
	'ν': "n", 'ξ': "x", 'ο': "o", 'π': "p", 'ρ': "r", 'σ': "s",
	'ς': "s", 'τ': "t", 'υ': "u", 'φ': "f", 'χ': "ch", 'ψ': "ps",
	'ω': "o",

	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l",
	'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s",
	'т': "t", 'у': "u", 'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "", 'э': "e",
	'ю': "yu", 'я': "ya",

	'є': "ye", 'і': "i", 'ї': "yi", 'ґ': "g",
}

var accentStripperPool = &sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

func stripAccents(s string) string {
	t := accentStripperPool.Get().(transform.Transformer)
	out, _, err := transform.String(t, s)
	t.Reset()
	accentStripperPool.Put(t)
	if err != nil {
		return s
	}
	return out
}

// Transliterate converts extended characters to ASCII: accented Latin,
// Czech, Polish, Latvian and Turkish letters lose their diacritics, Greek
// and Cyrillic (including Ukrainian) letters go through the table, and
// anything still outside ASCII is dropped.
func Transliterate(s string) string {
	s = stripAccents(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
			continue
		}
		if repl, ok := translitTable[r]; ok {
			b.WriteString(repl)
			continue
		}
		if repl, ok := translitTable[unicode.ToLower(r)]; ok {
			b.WriteString(titleCase(repl))
		}
	}
	return b.String()
}

package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// emojiTable covers emoticons, symbols and pictographs, transport and map
// symbols, and regional indicator (flag) code points.
var emojiTable = &unicode.RangeTable{
	R32: []unicode.Range32{
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
	},
}

var doubledSymbols = []string{"__", "..", "++", "--"}

func containsEmoji(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.Is(emojiTable, r)
	}) >= 0
}

func containsDoubledSymbol(s string) bool {
	for _, seq := range doubledSymbols {
		if strings.Contains(s, seq) {
			return true
		}
	}
	return false
}

// stripTags drops every tag, comment and doctype from s and keeps the raw
// text between them, entities included.
func stripTags(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

func containsMarkup(s string) bool {
	return stripTags(s) != s
}

// titleCase upper-cases the first letter of every word and lower-cases the
// rest. A Caser is stateful, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }

func containsASCIIAlnum(s string) bool {
	return strings.IndexFunc(s, isASCIIAlnum) >= 0
}

// hasCharRun reports whether any character other than a newline repeats n
// or more times in a row.
func hasCharRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == '\n' {
			run = 0
			continue
		}
		if run > 0 && r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

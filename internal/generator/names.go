package generator

import (
	"strings"
	"unicode"
)

var initialisms = map[string]bool{
	"api":  true,
	"http": true,
	"id":   true,
	"json": true,
	"url":  true,
	"uuid": true,
	"ws":   true,
}

// GoName turns an OpenAPI identifier (snake_case, camelCase, SHOUTING) into an
// exported Go identifier, upper-casing common initialisms.
func GoName(s string) string {
	var b strings.Builder
	for _, w := range splitWords(s) {
		lower := strings.ToLower(w)
		if initialisms[lower] {
			b.WriteString(strings.ToUpper(w))
			continue
		}
		if w == strings.ToUpper(w) {
			w = lower
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	out := b.String()
	if out == "" {
		return "X"
	}
	if unicode.IsDigit([]rune(out)[0]) {
		return "X" + out
	}
	return out
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	runes := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

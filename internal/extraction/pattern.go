package extraction

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// nameRun matches one to many capitalized words starting at the current
// position. Start-of-sentence checks are done by the caller because RE2
// has no look-behind.
var nameRun = regexp.MustCompile(`^[A-Z][a-z]+(?:\s[A-Z][a-z]+)*\b`)

const (
	maxNameWords = 3
	minNameLen   = 3
)

// capitalizedNames returns probable person names: runs of capitalized words
// that do not open the text, a line or a sentence.
func capitalizedNames(text string) []string {
	var names []string

	for p := 0; p < len(text); {
		if !startsName(text, p) {
			p++
			continue
		}
		m := nameRun.FindString(text[p:])
		if m == "" {
			p++
			continue
		}
		if len(strings.Fields(m)) <= maxNameWords && len(m) >= minNameLen {
			names = append(names, m)
		}
		p += len(m)
	}
	return names
}

func startsName(text string, p int) bool {
	c := text[p]
	if c < 'A' || c > 'Z' || p == 0 {
		return false
	}

	prev, size := utf8.DecodeLastRuneInString(text[:p])
	if prev == '\n' || isWordRune(prev) {
		return false
	}
	if unicode.IsSpace(prev) && strings.HasSuffix(text[:p-size], ".") {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

package severity

import (
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Scanner finds crisis phrases in a single pass over the text.
type Scanner struct {
	// Matcher.Match mutates per-node counters, so calls are serialized.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
	phrases []string
}

// NewScanner builds the automaton over the folded, de-duplicated phrases.
func NewScanner(phrases []string) *Scanner {
	seen := make(map[string]struct{}, len(phrases))
	folded := make([]string, 0, len(phrases))
	for _, p := range phrases {
		f := Fold(p)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		folded = append(folded, f)
	}

	s := &Scanner{phrases: folded}
	if len(folded) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(folded)
	}
	return s
}

// Scan returns the phrases found in text, in dictionary order.
func (s *Scanner) Scan(text string) []string {
	if s.matcher == nil || text == "" {
		return nil
	}

	folded := Fold(text)

	s.mu.Lock()
	hits := s.matcher.Match([]byte(folded))
	s.mu.Unlock()

	if len(hits) == 0 {
		return nil
	}
	found := make([]string, 0, len(hits))
	for _, idx := range hits {
		found = append(found, s.phrases[idx])
	}
	return found
}

// Contains reports whether text holds any phrase.
func (s *Scanner) Contains(text string) bool {
	return len(s.Scan(text)) > 0
}

// Len is the number of distinct phrases.
func (s *Scanner) Len() int {
	return len(s.phrases)
}

// Fold lower-cases text and drops apostrophes so "Can't" and "cant" match
// the same phrase.
func Fold(text string) string {
	t := transform.Chain(runes.Remove(runes.Predicate(isApostrophe)), cases.Lower(language.Und))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '‘', '’', 'ʼ', '`':
		return true
	}
	return false
}

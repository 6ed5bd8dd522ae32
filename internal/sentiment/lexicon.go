package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/jonreiter/govader"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

// LexiconScorer scores text with the VADER valence lexicon and its
// negation, booster and capitalization rules. It needs no model and never
// fails.
type LexiconScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewLexiconScorer loads the VADER lexicon.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (l *LexiconScorer) Score(_ context.Context, text string) (domain.SentimentScores, error) {
	if !strings.ContainsFunc(text, isWordRune) {
		return domain.NeutralSentiment, nil
	}

	s := l.analyzer.PolarityScores(text)
	if s.Positive+s.Negative+s.Neutral == 0 {
		return domain.NeutralSentiment, nil
	}
	return domain.SentimentScores{
		Compound: round3(s.Compound),
		Positive: round3(s.Positive),
		Negative: round3(s.Negative),
		Neutral:  round3(s.Neutral),
	}, nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

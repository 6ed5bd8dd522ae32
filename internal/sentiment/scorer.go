// Package sentiment scores message polarity, either through the ML sidecar
// or with the in-process valence lexicon.
package sentiment

import (
	"context"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

// Scorer maps text to a compound polarity and pos/neg/neu proportions.
type Scorer interface {
	Score(ctx context.Context, text string) (domain.SentimentScores, error)
}

// FallbackError reports that the primary scorer failed and the scores
// came from the fallback.
type FallbackError struct {
	Err error
}

func (e *FallbackError) Error() string {
	return "sentiment fallback: " + e.Err.Error()
}

func (e *FallbackError) Unwrap() error { return e.Err }

// FallbackScorer tries primary and, on any error, answers from fallback.
// A fallback answer comes back with usable scores and a *FallbackError.
type FallbackScorer struct {
	primary  Scorer
	fallback Scorer
	log      logger.Logger
}

// NewFallbackScorer chains primary to fallback.
func NewFallbackScorer(primary, fallback Scorer, log logger.Logger) *FallbackScorer {
	return &FallbackScorer{primary: primary, fallback: fallback, log: log}
}

func (f *FallbackScorer) Score(ctx context.Context, text string) (domain.SentimentScores, error) {
	scores, err := f.primary.Score(ctx, text)
	if err == nil {
		return scores, nil
	}

	f.log.Warn("Sentiment model unavailable, using lexicon scorer",
		logger.String("model", "sentiment"),
		logger.Error(err),
	)
	scores, fbErr := f.fallback.Score(ctx, text)
	if fbErr != nil {
		return domain.SentimentScores{}, fbErr
	}
	return scores, &FallbackError{Err: err}
}

// Tone buckets a compound score into a human-readable label.
func Tone(compound float64) string {
	switch {
	case compound <= -0.7:
		return "severely distressed"
	case compound <= -0.3:
		return "moderately distressed"
	case compound <= 0.1:
		return "neutral"
	case compound <= 0.5:
		return "moderately positive"
	default:
		return "very positive"
	}
}

// Package concern assigns a canonical mental-health concern to a message
// using a zero-shot text classifier.
package concern

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

// DefaultThreshold is the confidence gate. A top score at or below it is
// reported as safe.
const DefaultThreshold = 0.5

// ErrNoModel is returned by NullZeroShot.
var ErrNoModel = errors.New("no zero-shot model configured")

// Score is one candidate label's score.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ZeroShotClassifier scores text against arbitrary candidate labels and
// returns them ranked, best first.
type ZeroShotClassifier interface {
	ClassifyZeroShot(ctx context.Context, text string, labels []string) ([]Score, error)
}

// NullZeroShot stands in when no model is deployed.
type NullZeroShot struct{}

func (NullZeroShot) ClassifyZeroShot(context.Context, string, []string) ([]Score, error) {
	return nil, ErrNoModel
}

// Result is a classification plus diagnostics.
type Result struct {
	domain.Concern
	// ModelLabel is the fine-grained winner, empty when nothing was scored.
	ModelLabel string
	// Gated is set when a concern was downgraded to safe by the threshold.
	Gated bool
	// Degraded is set when the model failed and the fallback was used.
	Degraded bool
}

// Classifier wraps a ZeroShotClassifier with the canonical mapping and the
// confidence gate.
type Classifier struct {
	model     ZeroShotClassifier
	threshold float64
	log       logger.Logger
}

// New returns a Classifier. A nil model behaves like NullZeroShot and a
// threshold outside [0,1] falls back to DefaultThreshold.
func New(model ZeroShotClassifier, threshold float64, log logger.Logger) *Classifier {
	if model == nil {
		model = NullZeroShot{}
	}
	if threshold < 0 || threshold > 1 || math.IsNaN(threshold) {
		threshold = DefaultThreshold
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Classifier{model: model, threshold: threshold, log: log}
}

// Classify never fails. Empty text and an unavailable model both yield
// (safe, 0).
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Concern: domain.NoConcern}
	}

	scores, err := c.model.ClassifyZeroShot(ctx, text, CandidateLabels)
	if err != nil {
		if errors.Is(err, ErrNoModel) {
			return Result{Concern: domain.NoConcern}
		}
		c.log.Warn("Concern classification unavailable, using safe",
			logger.String("model", "zero_shot"),
			logger.Error(err),
		)
		return Result{Concern: domain.NoConcern, Degraded: true}
	}

	top, ok := best(scores)
	if !ok {
		return Result{Concern: domain.NoConcern}
	}

	confidence := clamp01(top.Score)
	label := Canonical(top.Label)
	res := Result{Concern: domain.Concern{Label: label, Confidence: confidence}, ModelLabel: top.Label}
	if confidence <= c.threshold && label != domain.ConcernSafe {
		res.Label = domain.ConcernSafe
		res.Gated = true
	}
	return res
}

// best picks the highest score, keeping the earlier entry on ties so a
// ranked response is honored as-is.
func best(scores []Score) (Score, bool) {
	if len(scores) == 0 {
		return Score{}, false
	}
	top := scores[0]
	for _, s := range scores[1:] {
		if s.Score > top.Score {
			top = s
		}
	}
	return top, true
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

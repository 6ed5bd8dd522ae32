// Package trend summarizes a user's polarity history for the mood timeline.
package trend

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

// Mood directions.
const (
	Improving = "improving"
	Declining = "declining"
	Stable    = "stable"
)

const (
	// SlopeThreshold is the per-message polarity change beyond which the
	// mood is considered to be moving.
	SlopeThreshold = 0.05
	previewRunes   = 50
)

// Point is one message on the timeline.
type Point struct {
	Index          int             `json:"index"`
	Polarity       float64         `json:"polarity"`
	Severity       domain.Severity `json:"severity"`
	MessagePreview string          `json:"message_preview"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Summary describes the whole series.
type Summary struct {
	TotalMessages int     `json:"total_messages"`
	CurrentMood   float64 `json:"current_mood"`
	MoodTrend     string  `json:"mood_trend"`
	MoodSlope     float64 `json:"mood_slope"`
}

// Report is the timeline payload. Summary is nil when there is no data.
type Report struct {
	Trend   []Point  `json:"trend"`
	Summary *Summary `json:"summary"`
}

// Build turns history, oldest first, into a Report.
func Build(history []domain.PolarityPoint) Report {
	r := Report{Trend: make([]Point, len(history))}
	if len(history) == 0 {
		return r
	}

	ys := make([]float64, len(history))
	for i, h := range history {
		ys[i] = h.Polarity
		r.Trend[i] = Point{
			Index:          i,
			Polarity:       Round3(h.Polarity),
			Severity:       h.Severity,
			MessagePreview: Preview(h.Text),
			CreatedAt:      h.CreatedAt,
		}
	}

	slope := Slope(ys)
	r.Summary = &Summary{
		TotalMessages: len(history),
		CurrentMood:   Round3(ys[len(ys)-1]),
		MoodTrend:     Direction(slope),
		MoodSlope:     Round3(slope),
	}
	return r
}

// Slope is the least-squares slope of ys against their index. Fewer than
// two points have no slope.
func Slope(ys []float64) float64 {
	if len(ys) < 2 {
		return 0
	}

	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}

// Direction classifies a slope.
func Direction(slope float64) string {
	switch {
	case slope > SlopeThreshold:
		return Improving
	case slope < -SlopeThreshold:
		return Declining
	default:
		return Stable
	}
}

// Preview keeps the first 50 characters, adding "..." when text is longer.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}

// Round3 rounds to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

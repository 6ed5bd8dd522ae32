// Package mlclient calls the model sidecar that hosts the sentiment,
// named-entity and zero-shot models. One Client serves all three scoring
// interfaces through a shared circuit breaker.
package mlclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/circuitbreaker"
	infrahttp "github.com/jonesrussell/north-cloud/triage/infrastructure/http"
	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/concern"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/extraction"
	"github.com/jonesrussell/north-cloud/triage/internal/mltransport"
)

// ErrUnavailable wraps every failure to get a usable answer from the sidecar.
var ErrUnavailable = errors.New("ml sidecar unavailable")

const (
	pathSentiment = "/sentiment"
	pathNER       = "/ner"
	pathZeroShot  = "/zero-shot"
)

// Config configures the sidecar client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker circuitbreaker.Config
}

// Client is safe for concurrent use.
type Client struct {
	transport *mltransport.Transport
	breaker   *circuitbreaker.Breaker
	log       logger.Logger
}

type textRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

type nerResponse struct {
	Entities []extraction.RawEntity `json:"entities"`
}

type zeroShotRequest struct {
	Text            string   `json:"text"`
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// New returns a Client for cfg.BaseURL.
func New(cfg Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(logger.String("component", "mlclient"))

	breakerCfg := cfg.Breaker
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(from, to circuitbreaker.State) {
			log.Warn("ML sidecar circuit changed state",
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}
	}

	httpClient := infrahttp.NewClient(infrahttp.ClientConfig{Timeout: cfg.Timeout})
	return &Client{
		transport: mltransport.New(cfg.BaseURL, httpClient),
		breaker:   circuitbreaker.New(breakerCfg),
		log:       log,
	}
}

// Score implements sentiment.Scorer.
func (c *Client) Score(ctx context.Context, text string) (domain.SentimentScores, error) {
	var resp sentimentResponse
	if err := c.post(ctx, pathSentiment, textRequest{Text: text}, &resp); err != nil {
		return domain.SentimentScores{}, err
	}
	return domain.SentimentScores{
		Compound: resp.Compound,
		Positive: resp.Positive,
		Negative: resp.Negative,
		Neutral:  resp.Neutral,
	}, nil
}

// Recognize implements extraction.Recognizer.
func (c *Client) Recognize(ctx context.Context, text string) ([]extraction.RawEntity, error) {
	var resp nerResponse
	if err := c.post(ctx, pathNER, textRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

// ClassifyZeroShot implements concern.ZeroShotClassifier. The sidecar
// returns parallel label and score arrays, ranked best first.
func (c *Client) ClassifyZeroShot(ctx context.Context, text string, labels []string) ([]concern.Score, error) {
	var resp zeroShotResponse
	req := zeroShotRequest{Text: text, CandidateLabels: labels}
	if err := c.post(ctx, pathZeroShot, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Labels) != len(resp.Scores) {
		return nil, fmt.Errorf("%w: %s: %d labels but %d scores",
			ErrUnavailable, pathZeroShot, len(resp.Labels), len(resp.Scores))
	}

	scores := make([]concern.Score, len(resp.Labels))
	for i, label := range resp.Labels {
		scores[i] = concern.Score{Label: label, Score: resp.Scores[i]}
	}
	return scores, nil
}

// Health probes the sidecar without going through the breaker.
func (c *Client) Health(ctx context.Context) (mltransport.Health, error) {
	h, err := c.transport.DoHealth(ctx)
	if err != nil {
		return h, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return h, nil
}

// Ping adapts Health to a plain error for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}

// BreakerState reports the circuit position.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

func (c *Client) post(ctx context.Context, path string, req, respPtr any) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.transport.PostJSON(ctx, path, req, respPtr)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, path, err)
	}
	return nil
}

// Package pipeline turns one message into an analysis and a reply, and
// stores the exchange.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/concern"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/extraction"
	"github.com/jonesrussell/north-cloud/triage/internal/reply"
	"github.com/jonesrussell/north-cloud/triage/internal/sentiment"
	"github.com/jonesrussell/north-cloud/triage/internal/severity"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

// DefaultModelTimeout bounds each scoring call.
const DefaultModelTimeout = 5 * time.Second

// Names reported in Analysis.Degraded.
const (
	DegradedSentiment = "sentiment"
	DegradedZeroShot  = "zero_shot"
)

// Deps are the collaborators of a Pipeline. Nil components get their
// model-free defaults; Store may be nil when only Analyze is used.
type Deps struct {
	Scorer     sentiment.Scorer
	Extractor  *extraction.Extractor
	Classifier *concern.Classifier
	Resolver   *severity.Resolver
	Replies    *reply.Synthesizer
	Store      Store
	Telemetry  *telemetry.Provider
	Logger     logger.Logger
}

// Config tunes the pipeline.
type Config struct {
	ModelTimeout time.Duration
}

// Pipeline is safe for concurrent use. It holds no per-message state.
type Pipeline struct {
	scorer     sentiment.Scorer
	extractor  *extraction.Extractor
	classifier *concern.Classifier
	resolver   *severity.Resolver
	replies    *reply.Synthesizer
	store      Store
	telemetry  *telemetry.Provider
	tracer     trace.Tracer
	log        logger.Logger
	timeout    time.Duration
}

// New wires a Pipeline.
func New(cfg Config, deps Deps) *Pipeline {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(logger.String("component", "pipeline"))

	p := &Pipeline{
		scorer:     deps.Scorer,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		resolver:   deps.Resolver,
		replies:    deps.Replies,
		store:      deps.Store,
		telemetry:  deps.Telemetry,
		log:        log,
		timeout:    cfg.ModelTimeout,
	}
	if p.scorer == nil {
		p.scorer = sentiment.NewLexiconScorer()
	}
	if p.extractor == nil {
		p.extractor = extraction.New(nil, log)
	}
	if p.classifier == nil {
		p.classifier = concern.New(nil, concern.DefaultThreshold, log)
	}
	if p.resolver == nil {
		p.resolver = severity.NewResolver()
	}
	if p.replies == nil {
		p.replies = reply.New()
	}
	if p.timeout <= 0 {
		p.timeout = DefaultModelTimeout
	}
	if p.telemetry != nil {
		p.tracer = p.telemetry.Tracer
	} else {
		p.tracer = otel.Tracer("triage/pipeline")
	}
	return p
}

// Analyze runs the scoring stages concurrently, then resolves severity and
// picks the reply. It never fails: unavailable models degrade to their
// neutral outputs and are listed in Analysis.Degraded.
func (p *Pipeline) Analyze(ctx context.Context, text string) domain.Analysis {
	start := time.Now()
	text = norm.NFC.String(text)

	ctx, span := p.tracer.Start(ctx, "pipeline.analyze")
	defer span.End()

	var (
		scores    = domain.NeutralSentiment
		extracted extraction.Result
		concerned concern.Result
		sentErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if isBlank(text) {
			return nil
		}
		sctx, cancel := p.stage(gctx, "pipeline.sentiment")
		defer cancel()
		s, err := p.scorer.Score(sctx, text)
		var fallback *sentiment.FallbackError
		if errors.As(err, &fallback) {
			scores = s
		}
		sentErr = err
		return nil
	})
	g.Go(func() error {
		ectx, cancel := p.stage(gctx, "pipeline.extract")
		defer cancel()
		extracted = p.extractor.Extract(ectx, text)
		return nil
	})
	g.Go(func() error {
		cctx, cancel := p.stage(gctx, "pipeline.concern")
		defer cancel()
		concerned = p.classifier.Classify(cctx, text)
		return nil
	})
	_ = g.Wait()

	var degraded []string
	if sentErr != nil {
		var fallback *sentiment.FallbackError
		if !errors.As(sentErr, &fallback) {
			p.log.Warn("Sentiment unavailable, using neutral scores",
				logger.String("model", DegradedSentiment),
				logger.Error(sentErr),
			)
		}
		degraded = append(degraded, DegradedSentiment)
	}
	degraded = append(degraded, extracted.Degraded...)
	if concerned.Degraded {
		degraded = append(degraded, DegradedZeroShot)
	}

	sev := p.resolver.Decide(severity.Input{
		Text:     text,
		Polarity: scores.Compound,
		Concern:  concerned.Label,
	})
	answer := p.replies.Decide(reply.Input{
		Text:     text,
		Severity: sev.Severity,
		Concern:  concerned.Concern,
		Entities: extracted.Entities,
	})

	a := domain.Analysis{
		Text:          text,
		Sentiment:     scores,
		EmotionalTone: sentiment.Tone(scores.Compound),
		Severity:      sev.Severity,
		Concern:       concerned.Concern,
		Entities:      extracted.Entities,
		Reply:         answer.Text,
		ReplyRule:     answer.Rule,
		Degraded:      degraded,
	}
	if a.Entities == nil {
		a.Entities = []domain.Entity{}
	}

	span.SetAttributes(
		attribute.String("triage.severity", a.Severity.String()),
		attribute.String("triage.severity_rule", sev.Rule),
		attribute.String("triage.concern", string(a.Concern.Label)),
		attribute.String("triage.reply_rule", a.ReplyRule),
		attribute.Int("triage.entities", len(a.Entities)),
	)

	if p.telemetry != nil {
		for _, model := range degraded {
			p.telemetry.RecordFallback(model)
		}
		p.telemetry.RecordMessage(ctx, a.Severity.String(), string(a.Concern.Label), a.ReplyRule, time.Since(start))
	}
	return a
}

// stage opens a child span and a per-call deadline.
func (p *Pipeline) stage(ctx context.Context, name string) (context.Context, context.CancelFunc) {
	ctx, span := p.tracer.Start(ctx, name)
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	return ctx, func() {
		cancel()
		span.End()
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

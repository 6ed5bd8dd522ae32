package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/triage/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/triage/internal/concern"
	"github.com/jonesrussell/north-cloud/triage/internal/config"
	"github.com/jonesrussell/north-cloud/triage/internal/extraction"
	"github.com/jonesrussell/north-cloud/triage/internal/mlclient"
	"github.com/jonesrussell/north-cloud/triage/internal/sentiment"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

// Models holds the model adapters the pipeline runs.
type Models struct {
	Scorer     sentiment.Scorer
	Extractor  *extraction.Extractor
	Classifier *concern.Classifier
	// ML is nil when the sidecar is disabled.
	ML *mlclient.Client
}

// SetupRedis connects when redis is enabled. A failed connection is logged
// and the service runs without the cache.
func SetupRedis(ctx context.Context, cfg *config.Config, logger infralogger.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	rdb, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, zero-shot cache disabled",
			infralogger.String("address", cfg.Redis.Address),
			infralogger.Error(err),
		)
		return nil
	}
	logger.Info("Redis connected", infralogger.String("address", cfg.Redis.Address))
	return rdb
}

// SetupModels builds the sentiment, extraction and concern adapters. rdb
// and tel may be nil.
func SetupModels(cfg *config.Config, rdb *redis.Client, tel *telemetry.Provider, logger infralogger.Logger) (*Models, error) {
	m := &Models{}

	if cfg.ML.Enabled {
		m.ML = mlclient.New(mlclient.Config{
			BaseURL: cfg.ML.BaseURL,
			Timeout: cfg.ML.Timeout,
			Breaker: circuitbreaker.Config{
				FailureThreshold: cfg.ML.Breaker.FailureThreshold,
				SuccessThreshold: cfg.ML.Breaker.SuccessThreshold,
				OpenTimeout:      cfg.ML.Breaker.OpenTimeout,
				OnStateChange:    breakerHook(tel, logger),
			},
		}, logger)
	}

	m.Scorer = newScorer(cfg, m.ML, logger)

	var recognizer extraction.Recognizer = extraction.NullRecognizer{}
	if m.ML != nil {
		recognizer = m.ML
	}
	m.Extractor = extraction.New(recognizer, logger)

	zeroShot, err := newZeroShot(cfg, m.ML)
	if err != nil {
		return nil, err
	}
	if rdb != nil && cfg.Concern.Provider != config.ConcernNone {
		zeroShot = concern.NewCachedZeroShot(zeroShot, rdb, cfg.Concern.CacheTTL, logger)
	}
	m.Classifier = concern.New(zeroShot, cfg.Concern.Threshold, logger)

	logger.Info("Models configured",
		infralogger.Bool("ml_enabled", cfg.ML.Enabled),
		infralogger.String("sentiment_source", cfg.ML.SentimentSource),
		infralogger.String("concern_provider", cfg.Concern.Provider),
		infralogger.Bool("zero_shot_cache", rdb != nil),
	)
	return m, nil
}

func newScorer(cfg *config.Config, ml *mlclient.Client, logger infralogger.Logger) sentiment.Scorer {
	lexicon := sentiment.NewLexiconScorer()
	if ml == nil || cfg.ML.SentimentSource == config.SentimentLexicon {
		return lexicon
	}
	return sentiment.NewFallbackScorer(ml, lexicon, logger)
}

func newZeroShot(cfg *config.Config, ml *mlclient.Client) (concern.ZeroShotClassifier, error) {
	switch cfg.Concern.Provider {
	case config.ConcernSidecar:
		if ml == nil {
			return nil, fmt.Errorf("concern provider %q requires ml.enabled", cfg.Concern.Provider)
		}
		return ml, nil
	case config.ConcernOpenAI:
		return concern.NewOpenAIZeroShot(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil
	default:
		return concern.NullZeroShot{}, nil
	}
}

func breakerHook(tel *telemetry.Provider, logger infralogger.Logger) func(from, to circuitbreaker.State) {
	return func(from, to circuitbreaker.State) {
		logger.Warn("ML sidecar circuit changed state",
			infralogger.String("from", from.String()),
			infralogger.String("to", to.String()),
		)
		if tel != nil {
			tel.SetCircuitState(int(to))
		}
	}
}

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/concern"
	"github.com/jonesrussell/north-cloud/triage/internal/config"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/pipeline"
	"github.com/jonesrussell/north-cloud/triage/internal/sentiment"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("concern:\n  provider: bert\n"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concern.provider")
}

func TestSetupModels_WithoutML(t *testing.T) {
	cfg := loadDefaults(t)

	models, err := SetupModels(cfg, nil, nil, infralogger.NewNop())
	require.NoError(t, err)

	assert.Nil(t, models.ML)
	assert.IsType(t, &sentiment.LexiconScorer{}, models.Scorer)

	res := models.Classifier.Classify(context.Background(), "I can't sleep before exams")
	assert.Equal(t, domain.ConcernSafe, res.Label)
}

func TestSetupModels_SidecarFallsBackToLexicon(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.ML.Enabled = true
	cfg.ML.BaseURL = "http://127.0.0.1:1"
	cfg.Concern.Provider = config.ConcernSidecar
	tel := telemetry.NewProvider(prometheus.NewRegistry())

	models, err := SetupModels(cfg, nil, tel, infralogger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, models.ML)
	assert.IsType(t, &sentiment.FallbackScorer{}, models.Scorer)

	a := SetupPipeline(cfg, models, nil, tel, infralogger.NewNop()).Analyze(context.Background(), "I feel great today")
	assert.Positive(t, a.Sentiment.Compound)
	assert.Contains(t, a.Degraded, pipeline.DegradedSentiment)
	assert.InDelta(t, 1, testutil.ToFloat64(tel.Metrics.ModelFallbacks.WithLabelValues(pipeline.DegradedSentiment)), 0)
}

func TestSetupModels_LexiconSource(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.ML.Enabled = true
	cfg.ML.SentimentSource = config.SentimentLexicon

	models, err := SetupModels(cfg, nil, nil, infralogger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &sentiment.LexiconScorer{}, models.Scorer)
}

func TestNewZeroShot(t *testing.T) {
	cfg := loadDefaults(t)

	cfg.Concern.Provider = config.ConcernSidecar
	_, err := newZeroShot(cfg, nil)
	require.Error(t, err)

	cfg.Concern.Provider = config.ConcernOpenAI
	cfg.OpenAI.APIKey = "sk-test"
	zs, err := newZeroShot(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &concern.OpenAIZeroShot{}, zs)

	cfg.Concern.Provider = config.ConcernNone
	zs, err = newZeroShot(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, concern.NullZeroShot{}, zs)
}

func TestBreakerHook_SetsCircuitGauge(t *testing.T) {
	tel := telemetry.NewProvider(prometheus.NewRegistry())

	breakerHook(tel, infralogger.NewNop())(circuitbreaker.StateClosed, circuitbreaker.StateOpen)

	assert.InDelta(t, float64(circuitbreaker.StateOpen), testutil.ToFloat64(tel.Metrics.CircuitState), 0)
}

func TestSetupPipeline_AnalyzeWithoutStore(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Reply.CrisisMessage = "Call your local crisis line now."

	models, err := SetupModels(cfg, nil, nil, infralogger.NewNop())
	require.NoError(t, err)
	p := SetupPipeline(cfg, models, nil, nil, infralogger.NewNop())

	analysis := p.Analyze(context.Background(), "I want to end my life")
	assert.Equal(t, domain.SeverityImminent, analysis.Severity)
	assert.Equal(t, "Call your local crisis line now.", analysis.Reply)
}

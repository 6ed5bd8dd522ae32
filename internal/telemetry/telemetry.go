// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the triage service.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/metrics"
)

const serviceName = "triage"

// Metrics holds all triage Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	MessagesProcessed  *prometheus.CounterVec
	ConcernsClassified *prometheus.CounterVec
	ReplyRules         *prometheus.CounterVec
	PipelineDuration   prometheus.Histogram

	// Degradation metrics
	ModelFallbacks  *prometheus.CounterVec
	StorageFailures prometheus.Counter
	CircuitState    prometheus.Gauge

	// API metrics
	RateLimited prometheus.Counter
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
	HTTP    *metrics.HTTP

	gatherer prometheus.Gatherer
}

// NewProvider registers the metrics with reg. A nil reg uses the default
// Prometheus registry; tests pass prometheus.NewRegistry().
func NewProvider(reg *prometheus.Registry) *Provider {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}

	factory := promauto.With(registerer)
	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(factory),
		HTTP:     metrics.NewHTTP(factory, serviceName),
		gatherer: gatherer,
	}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func initMetrics(f promauto.Factory) *Metrics {
	m := &Metrics{}
	initPipelineMetrics(f, m)
	initDegradationMetrics(f, m)

	m.RateLimited = f.NewCounter(prometheus.CounterOpts{
		Name: "triage_rate_limited_total",
		Help: "Message submissions rejected by the per-user rate limit",
	})
	return m
}

func initPipelineMetrics(f promauto.Factory, m *Metrics) {
	m.MessagesProcessed = f.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_messages_processed_total",
		Help: "Messages analyzed, by severity tier",
	}, []string{"severity"})

	m.ConcernsClassified = f.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_concerns_total",
		Help: "Messages by canonical concern label",
	}, []string{"label"})

	m.ReplyRules = f.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_reply_rules_total",
		Help: "Replies by the cascade rule that produced them",
	}, []string{"rule"})

	m.PipelineDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "triage_pipeline_duration_seconds",
		Help:    "Time to analyze one message, model calls included",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	})
}

func initDegradationMetrics(f promauto.Factory, m *Metrics) {
	m.ModelFallbacks = f.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_model_fallbacks_total",
		Help: "Times a model was unavailable and its fallback was used",
	}, []string{"model"})

	m.StorageFailures = f.NewCounter(prometheus.CounterOpts{
		Name: "triage_storage_failures_total",
		Help: "Analyzed messages that could not be stored",
	})

	m.CircuitState = f.NewGauge(prometheus.GaugeOpts{
		Name: "triage_ml_circuit_state",
		Help: "ML sidecar circuit breaker state (0 closed, 1 open, 2 half-open)",
	})
}

// RecordMessage records the outcome of one analyzed message
func (p *Provider) RecordMessage(_ context.Context, severity, concern, replyRule string, duration time.Duration) {
	p.Metrics.MessagesProcessed.WithLabelValues(severity).Inc()
	p.Metrics.ConcernsClassified.WithLabelValues(concern).Inc()
	p.Metrics.ReplyRules.WithLabelValues(replyRule).Inc()
	p.Metrics.PipelineDuration.Observe(duration.Seconds())
}

// RecordFallback counts a degraded model call
func (p *Provider) RecordFallback(model string) {
	p.Metrics.ModelFallbacks.WithLabelValues(model).Inc()
}

// RecordStorageFailure counts a message that was analyzed but not stored
func (p *Provider) RecordStorageFailure() {
	p.Metrics.StorageFailures.Inc()
}

// RecordRateLimited counts a rejected submission
func (p *Provider) RecordRateLimited() {
	p.Metrics.RateLimited.Inc()
}

// SetCircuitState publishes the breaker position
func (p *Provider) SetCircuitState(state int) {
	p.Metrics.CircuitState.Set(float64(state))
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

package mlclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/circuitbreaker"
	"github.com/jonesrussell/north-cloud/triage/internal/concern"
	"github.com/jonesrussell/north-cloud/triage/internal/extraction"
	"github.com/jonesrussell/north-cloud/triage/internal/mlclient"
	"github.com/jonesrussell/north-cloud/triage/internal/sentiment"
)

var (
	_ sentiment.Scorer           = (*mlclient.Client)(nil)
	_ extraction.Recognizer      = (*mlclient.Client)(nil)
	_ concern.ZeroShotClassifier = (*mlclient.Client)(nil)
)

func sidecar(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sentiment", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"compound":-0.8,"positive":0.0,"negative":0.7,"neutral":0.3}`))
	})
	mux.HandleFunc("POST /ner", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"entities":[{"text":"Sam","type":"PERSON"},{"text":"3","type":"CARDINAL"}]}`))
	})
	mux.HandleFunc("POST /zero-shot", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text            string   `json:"text"`
			CandidateLabels []string `json:"candidate_labels"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, []string{"work stress", "grief"}, req.CandidateLabels)
		_, _ = w.Write([]byte(`{"labels":["work stress","grief"],"scores":[0.83,0.17]}`))
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","model_version":"v3"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Score(t *testing.T) {
	t.Parallel()

	c := mlclient.New(mlclient.Config{BaseURL: sidecar(t).URL}, nil)
	got, err := c.Score(context.Background(), "everything is awful")
	require.NoError(t, err)
	assert.InDelta(t, -0.8, got.Compound, 1e-9)
	assert.InDelta(t, 0.7, got.Negative, 1e-9)
	assert.InDelta(t, 0.3, got.Neutral, 1e-9)
}

func TestClient_Recognize(t *testing.T) {
	t.Parallel()

	c := mlclient.New(mlclient.Config{BaseURL: sidecar(t).URL}, nil)
	got, err := c.Recognize(context.Background(), "Sam called 3 times")
	require.NoError(t, err)
	assert.Equal(t, []extraction.RawEntity{
		{Text: "Sam", Type: "PERSON"},
		{Text: "3", Type: "CARDINAL"},
	}, got)
}

func TestClient_ClassifyZeroShot(t *testing.T) {
	t.Parallel()

	c := mlclient.New(mlclient.Config{BaseURL: sidecar(t).URL}, nil)
	got, err := c.ClassifyZeroShot(context.Background(), "deadline tomorrow", []string{"work stress", "grief"})
	require.NoError(t, err)
	assert.Equal(t, []concern.Score{
		{Label: "work stress", Score: 0.83},
		{Label: "grief", Score: 0.17},
	}, got)
}

func TestClient_ClassifyZeroShot_MismatchedArrays(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"labels":["a","b"],"scores":[0.9]}`))
	}))
	defer srv.Close()

	_, err := mlclient.New(mlclient.Config{BaseURL: srv.URL}, nil).
		ClassifyZeroShot(context.Background(), "x", []string{"a", "b"})
	assert.ErrorIs(t, err, mlclient.ErrUnavailable)
}

func TestClient_Health(t *testing.T) {
	t.Parallel()

	c := mlclient.New(mlclient.Config{BaseURL: sidecar(t).URL}, nil)
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v3", h.ModelVersion)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestClient_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := mlclient.New(mlclient.Config{BaseURL: url, Timeout: time.Second}, nil)
	_, err := c.Score(context.Background(), "hello")
	assert.ErrorIs(t, err, mlclient.ErrUnavailable)
	assert.ErrorIs(t, c.Ping(context.Background()), mlclient.ErrUnavailable)
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := mlclient.New(mlclient.Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	_, err := c.Recognize(context.Background(), "hello")
	assert.ErrorIs(t, err, mlclient.ErrUnavailable)
}

func TestClient_BreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := mlclient.New(mlclient.Config{
		BaseURL: srv.URL,
		Breaker: circuitbreaker.Config{FailureThreshold: 2, OpenTimeout: time.Minute},
	}, nil)

	for range 2 {
		_, err := c.Score(context.Background(), "x")
		require.ErrorIs(t, err, mlclient.ErrUnavailable)
	}
	assert.Equal(t, circuitbreaker.StateOpen, c.BreakerState())

	_, err := c.Score(context.Background(), "x")
	assert.ErrorIs(t, err, mlclient.ErrUnavailable)
	assert.True(t, errors.Is(err, circuitbreaker.ErrCircuitOpen))
	assert.Equal(t, int32(2), calls.Load())
}

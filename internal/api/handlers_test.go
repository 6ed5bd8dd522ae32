package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/jwt"
	"github.com/jonesrussell/north-cloud/triage/internal/api"
	"github.com/jonesrussell/north-cloud/triage/internal/database"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/pipeline"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

const (
	testSecret   = "test-secret"
	testPassword = "letmein"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSubmitter struct {
	result domain.AnalysisResult
	err    error
	calls  int
}

func (f *fakeSubmitter) SubmitMessage(_ context.Context, userID int64, text string) (domain.AnalysisResult, error) {
	f.calls++
	res := f.result
	res.UserID = userID
	res.Text = text
	return res, f.err
}

type fakeStore struct {
	users       map[string]domain.User
	consentErr  error
	messages    []domain.Message
	history     []domain.PolarityPoint
	alerts      []domain.Alert
	gotLimit    int
	gotSeverity domain.Severity
	err         error
}

func (f *fakeStore) CreateUser(_ context.Context, email string) (domain.User, error) {
	if f.err != nil {
		return domain.User{}, f.err
	}
	if f.users == nil {
		f.users = map[string]domain.User{}
	}
	u, ok := f.users[email]
	if !ok {
		u = domain.User{ID: int64(len(f.users) + 1), Email: email}
		f.users[email] = u
	}
	return u, nil
}

func (f *fakeStore) RecordConsent(_ context.Context, userID int64, accepted bool, phone string) (domain.Consent, error) {
	if f.consentErr != nil {
		return domain.Consent{}, f.consentErr
	}
	return domain.Consent{UserID: userID, Accepted: accepted, EmergencyPhone: phone}, nil
}

func (f *fakeStore) RecentMessages(_ context.Context, _ int64, limit int) ([]domain.Message, error) {
	f.gotLimit = limit
	return f.messages, f.err
}

func (f *fakeStore) PolarityHistory(_ context.Context, _ int64, limit int) ([]domain.PolarityPoint, error) {
	f.gotLimit = limit
	return f.history, f.err
}

func (f *fakeStore) Alerts(_ context.Context, minSeverity domain.Severity, limit int) ([]domain.Alert, error) {
	f.gotSeverity = minSeverity
	f.gotLimit = limit
	return f.alerts, f.err
}

type denyAll struct{}

func (denyAll) Allow(int64) bool { return false }

type harness struct {
	router    *gin.Engine
	submitter *fakeSubmitter
	store     *fakeStore
	telemetry *telemetry.Provider
}

func newHarness(t *testing.T, cfg api.Config, limiter api.Limiter) *harness {
	t.Helper()

	h := &harness{
		submitter: &fakeSubmitter{result: crisisFreeResult()},
		store:     &fakeStore{},
		telemetry: telemetry.NewProvider(prometheus.NewRegistry()),
	}
	handler := api.NewHandler(cfg, api.Deps{
		Pipeline:  h.submitter,
		Store:     h.store,
		Limiter:   limiter,
		Telemetry: h.telemetry,
	})
	h.router = gin.New()
	api.SetupRoutes(h.router, handler)
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func crisisFreeResult() domain.AnalysisResult {
	return domain.AnalysisResult{
		Analysis: domain.Analysis{
			Sentiment:     domain.SentimentScores{Compound: -0.61234, Negative: 0.4, Neutral: 0.6},
			EmotionalTone: "negative",
			Severity:      domain.SeverityElevated,
			Concern:       domain.Concern{Label: domain.ConcernStress, Confidence: 0.65432},
			Entities:      []domain.Entity{{Text: "exams", Label: "School"}},
			Reply:         "Stress can feel heavy.",
		},
		UserMessageID: 11,
		BotMessageID:  12,
		Persisted:     true,
	}
}

func TestPing(t *testing.T) {
	h := newHarness(t, api.Config{}, nil)

	w := h.do(t, http.MethodGet, "/api/ping", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Backend is running!", decode(t, w)["message"])
}

func TestLogin(t *testing.T) {
	t.Run("missing email", func(t *testing.T) {
		h := newHarness(t, api.Config{}, nil)
		w := h.do(t, http.MethodPost, "/api/login", map[string]string{"email": "  "}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Email is required", decode(t, w)["error"])
	})

	t.Run("same email returns same user", func(t *testing.T) {
		h := newHarness(t, api.Config{}, nil)
		first := decode(t, h.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@example.com"}, ""))
		second := decode(t, h.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@example.com"}, ""))
		assert.Equal(t, first["user_id"], second["user_id"])
		assert.Equal(t, "Login successful", first["message"])
		assert.NotContains(t, first, "token")
	})

	t.Run("issues token when secret set", func(t *testing.T) {
		h := newHarness(t, api.Config{JWTSecret: testSecret}, nil)
		body := decode(t, h.do(t, http.MethodPost, "/api/login", map[string]string{"email": "b@example.com"}, ""))

		token, ok := body["token"].(string)
		require.True(t, ok)
		claims, err := jwt.NewManager(testSecret, time.Hour).Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "1", claims.Sub)
	})

	t.Run("store failure", func(t *testing.T) {
		h := newHarness(t, api.Config{}, nil)
		h.store.err = errors.New("db down")
		w := h.do(t, http.MethodPost, "/api/login", map[string]string{"email": "c@example.com"}, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", decode(t, w)["error"])
	})
}

func TestConsent(t *testing.T) {
	h := newHarness(t, api.Config{}, nil)

	w := h.do(t, http.MethodPost, "/api/consent", map[string]any{"emergency_phone": "555"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User ID is required", decode(t, w)["error"])

	w = h.do(t, http.MethodPost, "/api/consent", map[string]any{"user_id": 3, "emergency_phone": "555"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Consent recorded successfully", decode(t, w)["message"])

	h.store.consentErr = database.ErrNotFound
	w = h.do(t, http.MethodPost, "/api/consent", map[string]any{"user_id": 99}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMessage(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		h := newHarness(t, api.Config{}, nil)
		for _, body := range []map[string]any{
			{"message_text": "hello"},
			{"user_id": 1, "message_text": "   "},
		} {
			w := h.do(t, http.MethodPost, "/api/message", body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "User ID and message text are required", decode(t, w)["error"])
		}
		assert.Zero(t, h.submitter.calls)
	})

	t.Run("success payload", func(t *testing.T) {
		h := newHarness(t, api.Config{}, nil)
		w := h.do(t, http.MethodPost, "/api/message", map[string]any{"user_id": 1, "message_text": "exams are killing me"}, "")
		require.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, "Stress can feel heavy.", body["bot_reply"])
		assert.Equal(t, true, body["persisted"])
		assert.InDelta(t, 11, body["user_message_id"], 0)

		analysis, ok := body["analysis"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, -0.612, analysis["polarity"], 1e-9)
		assert.Equal(t, "ELEVATED", analysis["severity"])
		assert.Equal(t, "negative", analysis["emotional_tone"])
		concern, ok := analysis["concern"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "stress", concern["label"])
		assert.InDelta(t, 0.654, concern["confidence"], 1e-9)
		assert.Len(t, analysis["entities"], 1)
	})

	t.Run("pipeline rejects input", func(t *testing.T) {
		h := newHarness(t, api.Config{}, nil)
		h.submitter.err = pipeline.ErrInvalidInput
		w := h.do(t, http.MethodPost, "/api/message", map[string]any{"user_id": 1, "message_text": "hi"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		h := newHarness(t, api.Config{}, nil)
		h.submitter.result.Persisted = false
		h.submitter.err = errors.New("store exchange: boom")
		w := h.do(t, http.MethodPost, "/api/message", map[string]any{"user_id": 1, "message_text": "hi"}, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		h := newHarness(t, api.Config{}, nil)
		h.submitter.result.Persisted = false
		h.submitter.err = fmt.Errorf("store exchange: user 99: %w", database.ErrNotFound)
		w := h.do(t, http.MethodPost, "/api/message", map[string]any{"user_id": 99, "message_text": "hi"}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decode(t, w)["error"])
	})

	t.Run("crisis reply survives storage failure", func(t *testing.T) {
		h := newHarness(t, api.Config{}, nil)
		h.submitter.result = domain.AnalysisResult{Analysis: domain.Analysis{
			Severity: domain.SeverityImminent,
			Reply:    "Please call 988.",
		}}
		h.submitter.err = errors.New("store exchange: boom")

		w := h.do(t, http.MethodPost, "/api/message", map[string]any{"user_id": 1, "message_text": "i want to die"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Please call 988.", body["bot_reply"])
		assert.Equal(t, false, body["persisted"])
		assert.NotContains(t, body, "user_message_id")
	})

	t.Run("rate limited", func(t *testing.T) {
		h := newHarness(t, api.Config{}, denyAll{})
		w := h.do(t, http.MethodPost, "/api/message", map[string]any{"user_id": 1, "message_text": "hi"}, "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Zero(t, h.submitter.calls)
		assert.InDelta(t, 1, testutil.ToFloat64(h.telemetry.Metrics.RateLimited), 0)
	})
}

func TestMessages(t *testing.T) {
	h := newHarness(t, api.Config{}, nil)
	h.store.messages = []domain.Message{
		{ID: 2, UserID: 1, Text: "reply", IsBot: true},
		{ID: 1, UserID: 1, Text: "hello", Analysis: &domain.MessageAnalysis{Severity: domain.SeveritySafe}},
	}

	w := h.do(t, http.MethodGet, "/api/users/abc/messages", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/users/1/messages?limit=20", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, h.store.gotLimit)
	assert.Len(t, decode(t, w)["messages"], 2)

	h.do(t, http.MethodGet, "/api/users/1/messages?limit=lots", nil, "")
	assert.Zero(t, h.store.gotLimit)
}

func TestTrend(t *testing.T) {
	h := newHarness(t, api.Config{}, nil)

	w := h.do(t, http.MethodGet, "/api/trend/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Empty(t, body["trend"])
	assert.Nil(t, body["summary"])

	h.store.history = []domain.PolarityPoint{
		{MessageID: 1, Text: "bad", Polarity: -0.5, Severity: domain.SeverityElevated},
		{MessageID: 2, Text: "ok", Polarity: 0.1, Severity: domain.SeveritySafe},
		{MessageID: 3, Text: "good", Polarity: 0.6, Severity: domain.SeveritySafe},
	}
	body = decode(t, h.do(t, http.MethodGet, "/api/trend/1", nil, ""))
	assert.Len(t, body["trend"], 3)
	summary, ok := body["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "improving", summary["mood_trend"])
}

func TestTranscripts_RequireOwnerTokenWhenSecretSet(t *testing.T) {
	h := newHarness(t, api.Config{JWTSecret: testSecret}, nil)

	manager := jwt.NewManager(testSecret, time.Hour)
	ownerToken, err := manager.Issue("1")
	require.NoError(t, err)
	otherToken, err := manager.Issue("2")
	require.NoError(t, err)
	adminToken, err := manager.Issue(jwt.SubjectAdmin)
	require.NoError(t, err)

	for _, path := range []string{"/api/users/1/messages", "/api/trend/1"} {
		assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, path, nil, "").Code, path)
		assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodGet, path, nil, otherToken).Code, path)
		assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, path, nil, ownerToken).Code, path)
		assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, path, nil, adminToken).Code, path)
	}
}

func TestAdminLogin(t *testing.T) {
	t.Run("disabled without secret", func(t *testing.T) {
		h := newHarness(t, api.Config{AdminPassword: testPassword}, nil)
		w := h.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": testPassword}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	h := newHarness(t, api.Config{JWTSecret: testSecret, AdminPassword: testPassword}, nil)

	w := h.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token, ok := decode(t, w)["token"].(string)
	require.True(t, ok)
	claims, err := jwt.NewManager(testSecret, time.Hour).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, jwt.SubjectAdmin, claims.Sub)
}

func TestAlerts(t *testing.T) {
	h := newHarness(t, api.Config{JWTSecret: testSecret, AdminPassword: testPassword}, nil)
	h.store.alerts = []domain.Alert{{MessageID: 7, UserID: 1, Severity: domain.SeverityImminent}}

	manager := jwt.NewManager(testSecret, time.Hour)
	adminToken, err := manager.Issue(jwt.SubjectAdmin)
	require.NoError(t, err)
	userToken, err := manager.Issue("1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/api/admin/alerts", nil, "").Code)
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodGet, "/api/admin/alerts", nil, userToken).Code)

	w := h.do(t, http.MethodGet, "/api/admin/alerts", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.SeverityDistressed, h.store.gotSeverity)
	assert.InDelta(t, 1, decode(t, w)["total"], 0)

	w = h.do(t, http.MethodGet, "/api/admin/alerts?min_severity=imminent&limit=10", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.SeverityImminent, h.store.gotSeverity)
	assert.Equal(t, 10, h.store.gotLimit)

	w = h.do(t, http.MethodGet, "/api/admin/alerts?min_severity=panic", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlerts_NotRoutedWithoutSecret(t *testing.T) {
	h := newHarness(t, api.Config{}, nil)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/admin/alerts", nil, "").Code)
}

func TestMetricsRoute(t *testing.T) {
	h := newHarness(t, api.Config{}, nil)
	h.do(t, http.MethodGet, "/api/ping", nil, "")

	w := h.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `triage_http_requests_total{method="GET",route="/api/ping",status="200"} 1`)
}

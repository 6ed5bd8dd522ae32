package gin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	ginpkg "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infragin "github.com/jonesrussell/north-cloud/triage/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
)

func init() {
	ginpkg.SetMode(ginpkg.TestMode)
}

func healthRouter(checks map[string]infragin.HealthChecker) *ginpkg.Engine {
	router := ginpkg.New()
	infragin.RegisterHealthRoutes(router, "triage", "test", checks)
	return router
}

func getHealth(t *testing.T, router http.Handler) (int, infragin.HealthResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	var resp infragin.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealth_AllHealthy(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	code, resp := getHealth(t, healthRouter(map[string]infragin.HealthChecker{
		"database": infragin.PingChecker("database", true, ok),
		"redis":    infragin.PingChecker("redis", false, ok),
	}))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, infragin.HealthStatusHealthy, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestHealth_OptionalFailureDegrades(t *testing.T) {
	t.Parallel()

	code, resp := getHealth(t, healthRouter(map[string]infragin.HealthChecker{
		"database": infragin.PingChecker("database", true, func(context.Context) error { return nil }),
		"ml":       infragin.PingChecker("ml sidecar", false, func(context.Context) error { return errors.New("refused") }),
	}))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, infragin.HealthStatusDegraded, resp.Status)
	assert.Equal(t, infragin.HealthStatusDegraded, resp.Checks["ml"].Status)
}

func TestHealth_CriticalFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	code, resp := getHealth(t, healthRouter(map[string]infragin.HealthChecker{
		"database": infragin.PingChecker("database", true, func(context.Context) error { return errors.New("down") }),
	}))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, infragin.HealthStatusUnhealthy, resp.Status)
}

func TestCORSMiddleware_PreflightAndOrigins(t *testing.T) {
	t.Parallel()

	router := ginpkg.New()
	router.Use(infragin.CORSMiddleware(infragin.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"http://localhost:3000"},
	}))
	router.POST("/api/message", func(c *ginpkg.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/message", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/message", http.NoBody)
	req.Header.Set("Origin", "http://evil.example")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware_Returns500(t *testing.T) {
	t.Parallel()

	router := ginpkg.New()
	router.Use(infragin.RecoveryMiddleware(logger.NewNop()))
	router.GET("/boom", func(*ginpkg.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

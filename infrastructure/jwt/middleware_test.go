package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/jwt"
)

const testSecret = "test-secret-at-least-32-bytes-long!!"

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(subjects ...string) *gin.Engine {
	router := gin.New()
	router.GET("/admin", jwt.Middleware(testSecret, subjects...), func(c *gin.Context) {
		claims, ok := jwt.GetClaims(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.Sub)
	})
	return router
}

func call(router http.Handler, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestManager_IssueAndValidate(t *testing.T) {
	t.Parallel()

	m := jwt.NewManager(testSecret, time.Hour)
	token, err := m.Issue(jwt.SubjectAdmin)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, jwt.SubjectAdmin, claims.Sub)
}

func TestManager_RejectsWrongSecretAndExpiry(t *testing.T) {
	t.Parallel()

	token, err := jwt.NewManager(testSecret, time.Hour).Issue("42")
	require.NoError(t, err)

	_, err = jwt.NewManager("another-secret-another-secret-xx", time.Hour).Validate(token)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)

	expired, err := jwt.NewManager(testSecret, -time.Minute).Issue("42")
	require.NoError(t, err)
	_, err = jwt.NewManager(testSecret, time.Hour).Validate(expired)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestManager_IssueWithoutSecret(t *testing.T) {
	t.Parallel()

	_, err := jwt.NewManager("", time.Hour).Issue("admin")
	require.ErrorIs(t, err, jwt.ErrNoSecret)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	m := jwt.NewManager(testSecret, time.Hour)
	admin, err := m.Issue(jwt.SubjectAdmin)
	require.NoError(t, err)
	user, err := m.Issue("7")
	require.NoError(t, err)

	tests := []struct {
		name     string
		subjects []string
		token    string
		want     int
	}{
		{name: "missing token", token: "", want: http.StatusUnauthorized},
		{name: "garbage token", token: "not.a.jwt", want: http.StatusUnauthorized},
		{name: "admin allowed", subjects: []string{jwt.SubjectAdmin}, token: admin, want: http.StatusOK},
		{name: "user forbidden on admin route", subjects: []string{jwt.SubjectAdmin}, token: user, want: http.StatusForbidden},
		{name: "any subject when unrestricted", token: user, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := call(protectedRouter(tt.subjects...), tt.token)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestOwnerMiddleware(t *testing.T) {
	t.Parallel()

	m := jwt.NewManager(testSecret, time.Hour)
	admin, err := m.Issue(jwt.SubjectAdmin)
	require.NoError(t, err)
	owner, err := m.Issue("7")
	require.NoError(t, err)
	other, err := m.Issue("8")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/users/:user_id", jwt.OwnerMiddleware(testSecret, "user_id", jwt.SubjectAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "missing token", want: http.StatusUnauthorized},
		{name: "owner allowed", token: owner, want: http.StatusOK},
		{name: "other user forbidden", token: other, want: http.StatusForbidden},
		{name: "admin allowed", token: admin, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/users/7", http.NoBody)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

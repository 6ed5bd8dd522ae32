// Package jwt issues and verifies the HS256 bearer tokens used by the
// triage API.
package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SubjectAdmin is the subject of admin dashboard tokens.
const SubjectAdmin = "admin"

const claimsKey = "claims"

var (
	// ErrInvalidToken covers every parse, signature and expiry failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNoSecret is returned when issuing without a configured secret.
	ErrNoSecret = errors.New("jwt secret not configured")
)

// Claims carries the token subject: "admin" or a user id.
type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

// Manager signs and validates tokens with one shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a token manager. Tokens expire after ttl.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for subject.
func (m *Manager) Issue(subject string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}

	now := m.now()
	claims := &Claims{
		Sub: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its claims.
func (m *Manager) Validate(token string) (*Claims, error) {
	return parse(token, m.secret, jwt.WithTimeFunc(m.now))
}

func parse(token string, secret []byte, opts ...jwt.ParserOption) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrInvalidToken
	}

	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token. When subjects
// is non-empty the token subject must be one of them.
func Middleware(secret string, subjects ...string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		claims, ok := authenticate(c, key)
		if !ok {
			return
		}

		if len(subjects) > 0 && !slices.Contains(subjects, claims.Sub) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OwnerMiddleware rejects requests whose token subject differs from the
// named path parameter. Subjects in also are let through for any owner.
func OwnerMiddleware(secret, param string, also ...string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		claims, ok := authenticate(c, key)
		if !ok {
			return
		}

		if claims.Sub != c.Param(param) && !slices.Contains(also, claims.Sub) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func authenticate(c *gin.Context, key []byte) (*Claims, bool) {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return nil, false
	}

	claims, err := parse(raw, key)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return nil, false
	}
	return claims, true
}

// GetClaims returns the claims stored by Middleware.
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

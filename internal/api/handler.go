// Package api serves the chat front end and the admin dashboard over HTTP.
package api

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/jwt"
	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

// Submitter runs and stores one message exchange.
type Submitter interface {
	SubmitMessage(ctx context.Context, userID int64, text string) (domain.AnalysisResult, error)
}

// Store is the storage the handlers read and write directly.
type Store interface {
	CreateUser(ctx context.Context, email string) (domain.User, error)
	RecordConsent(ctx context.Context, userID int64, accepted bool, emergencyPhone string) (domain.Consent, error)
	RecentMessages(ctx context.Context, userID int64, limit int) ([]domain.Message, error)
	PolarityHistory(ctx context.Context, userID int64, limit int) ([]domain.PolarityPoint, error)
	Alerts(ctx context.Context, minSeverity domain.Severity, limit int) ([]domain.Alert, error)
}

// Limiter decides whether a user may submit another message now.
type Limiter interface {
	Allow(userID int64) bool
}

type allowAll struct{}

func (allowAll) Allow(int64) bool { return true }

// Config holds the auth settings. An empty JWTSecret disables tokens and
// the admin routes.
type Config struct {
	JWTSecret     string
	AdminPassword string
	TokenTTL      time.Duration
}

// Deps are the handler collaborators. Limiter and Telemetry are optional.
type Deps struct {
	Pipeline  Submitter
	Store     Store
	Limiter   Limiter
	Telemetry *telemetry.Provider
	Logger    logger.Logger
}

// Handler handles HTTP requests for the triage API
type Handler struct {
	pipeline      Submitter
	store         Store
	limiter       Limiter
	telemetry     *telemetry.Provider
	tokens        *jwt.Manager
	jwtSecret     string
	adminPassword string
	log           logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(cfg Config, deps Deps) *Handler {
	h := &Handler{
		pipeline:      deps.Pipeline,
		store:         deps.Store,
		limiter:       deps.Limiter,
		telemetry:     deps.Telemetry,
		jwtSecret:     cfg.JWTSecret,
		adminPassword: cfg.AdminPassword,
		log:           deps.Logger,
	}
	if h.limiter == nil {
		h.limiter = allowAll{}
	}
	if h.log == nil {
		h.log = logger.NewNop()
	}
	if cfg.JWTSecret != "" {
		ttl := cfg.TokenTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		h.tokens = jwt.NewManager(cfg.JWTSecret, ttl)
	}
	return h
}

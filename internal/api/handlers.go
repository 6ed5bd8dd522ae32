package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/jwt"
	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/database"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/pipeline"
	"github.com/jonesrussell/north-cloud/triage/internal/trend"
)

const (
	msgEmailRequired   = "Email is required"
	msgUserIDRequired  = "User ID is required"
	msgMessageRequired = "User ID and message text are required"
	msgInvalidUserID   = "Invalid user ID"
	msgUserNotFound    = "User not found"
	msgTooManyMessages = "Too many messages, please slow down"
	msgInternal        = "internal server error"
)

// Ping reports that the service is up.
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Backend is running!"})
}

// Login finds or creates the user for an email address.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	_ = c.ShouldBindJSON(&req)

	email := strings.TrimSpace(req.Email)
	if email == "" {
		badRequest(c, msgEmailRequired)
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), email)
	if err != nil {
		h.internalError(c, "Failed to create user", err)
		return
	}

	resp := LoginResponse{UserID: user.ID, Email: user.Email, Message: "Login successful"}
	if h.tokens != nil {
		token, tokenErr := h.tokens.Issue(strconv.FormatInt(user.ID, 10))
		if tokenErr != nil {
			h.internalError(c, "Failed to issue token", tokenErr)
			return
		}
		resp.Token = token
	}
	c.JSON(http.StatusOK, resp)
}

// Consent records the user's acceptance and emergency contact.
func (h *Handler) Consent(c *gin.Context) {
	var req ConsentRequest
	_ = c.ShouldBindJSON(&req)

	if req.UserID <= 0 {
		badRequest(c, msgUserIDRequired)
		return
	}
	accepted := true
	if req.Accepted != nil {
		accepted = *req.Accepted
	}

	_, err := h.store.RecordConsent(c.Request.Context(), req.UserID, accepted, strings.TrimSpace(req.EmergencyPhone))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgUserNotFound})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to record consent", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Consent recorded successfully", "user_id": req.UserID})
}

// Message analyzes a user message and returns the bot reply.
func (h *Handler) Message(c *gin.Context) {
	var req MessageRequest
	_ = c.ShouldBindJSON(&req)

	if req.UserID <= 0 || strings.TrimSpace(req.MessageText) == "" {
		badRequest(c, msgMessageRequired)
		return
	}

	if !h.limiter.Allow(req.UserID) {
		if h.telemetry != nil {
			h.telemetry.RecordRateLimited()
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": msgTooManyMessages})
		return
	}

	res, err := h.pipeline.SubmitMessage(c.Request.Context(), req.UserID, req.MessageText)
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput):
		badRequest(c, msgMessageRequired)
		return
	case err != nil && res.Severity == domain.SeverityImminent && res.Reply != "":
		// The crisis resources still reach the user when storage is down.
		logger.FromContext(c.Request.Context()).Error("Crisis reply returned without storage",
			logger.Int64("user_id", req.UserID),
			logger.Error(err),
		)
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgUserNotFound})
		return
	case err != nil:
		h.internalError(c, "Failed to process message", err)
		return
	}

	c.JSON(http.StatusOK, newMessageResponse(res))
}

// Messages returns the user's recent conversation, newest first.
func (h *Handler) Messages(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	messages, err := h.store.RecentMessages(c.Request.Context(), userID, queryInt(c, "limit"))
	if err != nil {
		h.internalError(c, "Failed to load messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "total": len(messages)})
}

// Trend returns the user's mood timeline.
func (h *Handler) Trend(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	history, err := h.store.PolarityHistory(c.Request.Context(), userID, queryInt(c, "limit"))
	if err != nil {
		h.internalError(c, "Failed to load polarity history", err)
		return
	}
	c.JSON(http.StatusOK, trend.Build(history))
}

// AdminLogin exchanges the admin password for an admin token.
func (h *Handler) AdminLogin(c *gin.Context) {
	if h.tokens == nil || h.adminPassword == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "admin login is not enabled"})
		return
	}

	var req AdminLoginRequest
	_ = c.ShouldBindJSON(&req)
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(jwt.SubjectAdmin)
	if err != nil {
		h.internalError(c, "Failed to issue admin token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Alerts lists flagged user messages for follow-up.
func (h *Handler) Alerts(c *gin.Context) {
	minSeverity := domain.SeverityDistressed
	if raw := c.Query("min_severity"); raw != "" {
		parsed, err := domain.ParseSeverity(raw)
		if err != nil {
			badRequest(c, "Invalid min_severity")
			return
		}
		minSeverity = parsed
	}

	alerts, err := h.store.Alerts(c.Request.Context(), minSeverity, queryInt(c, "limit"))
	if err != nil {
		h.internalError(c, "Failed to load alerts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "total": len(alerts), "min_severity": minSeverity})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	logger.FromContext(c.Request.Context()).Error(msg,
		logger.String("path", c.FullPath()),
		logger.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, msgInvalidUserID)
		return 0, false
	}
	return id, true
}

// queryInt returns 0 for a missing or malformed value so the store default
// applies.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

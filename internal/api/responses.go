package api

import (
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/trend"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email string `json:"email"`
}

// LoginResponse carries the user id and, when tokens are enabled, a token.
type LoginResponse struct {
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// ConsentRequest is the body of POST /api/consent. Accepted defaults to true.
type ConsentRequest struct {
	UserID         int64  `json:"user_id"`
	EmergencyPhone string `json:"emergency_phone"`
	Accepted       *bool  `json:"accepted"`
}

// MessageRequest is the body of POST /api/message.
type MessageRequest struct {
	UserID      int64  `json:"user_id"`
	MessageText string `json:"message_text"`
}

// AdminLoginRequest is the body of POST /api/admin/login.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// ConcernPayload is the concern with its confidence rounded for display.
type ConcernPayload struct {
	Label      domain.ConcernLabel `json:"label"`
	Confidence float64             `json:"confidence"`
}

// AnalysisPayload is the analysis block the chat front end renders.
type AnalysisPayload struct {
	Polarity        float64                `json:"polarity"`
	Severity        domain.Severity        `json:"severity"`
	SentimentScores domain.SentimentScores `json:"sentiment_scores"`
	Entities        []domain.Entity        `json:"entities"`
	Concern         ConcernPayload         `json:"concern"`
	EmotionalTone   string                 `json:"emotional_tone"`
}

// MessageResponse is the reply to POST /api/message.
type MessageResponse struct {
	BotReply      string          `json:"bot_reply"`
	Analysis      AnalysisPayload `json:"analysis"`
	UserMessageID int64           `json:"user_message_id,omitempty"`
	BotMessageID  int64           `json:"bot_message_id,omitempty"`
	Persisted     bool            `json:"persisted"`
}

func newMessageResponse(res domain.AnalysisResult) MessageResponse {
	entities := res.Entities
	if entities == nil {
		entities = []domain.Entity{}
	}
	return MessageResponse{
		BotReply: res.Reply,
		Analysis: AnalysisPayload{
			Polarity:        trend.Round3(res.Polarity()),
			Severity:        res.Severity,
			SentimentScores: res.Sentiment,
			Entities:        entities,
			Concern: ConcernPayload{
				Label:      res.Concern.Label,
				Confidence: trend.Round3(res.Concern.Confidence),
			},
			EmotionalTone: res.EmotionalTone,
		},
		UserMessageID: res.UserMessageID,
		BotMessageID:  res.BotMessageID,
		Persisted:     res.Persisted,
	}
}

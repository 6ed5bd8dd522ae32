package domain

// SentimentScores is the sentiment scorer output. Compound is in [-1,1];
// the proportions sum to roughly 1.
type SentimentScores struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"pos"`
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
}

// NeutralSentiment is used for empty text and scorer failures.
var NeutralSentiment = SentimentScores{Neutral: 1}

// Analysis is everything derived from one message's text.
type Analysis struct {
	Text          string          `json:"-"`
	Sentiment     SentimentScores `json:"sentiment_scores"`
	EmotionalTone string          `json:"emotional_tone"`
	Severity      Severity        `json:"severity"`
	Concern       Concern         `json:"concern"`
	Entities      []Entity        `json:"entities"`
	Reply         string          `json:"bot_reply"`
	ReplyRule     string          `json:"reply_rule"`
	Degraded      []string        `json:"degraded,omitempty"` // models that fell back
}

// Polarity is the compound sentiment score.
func (a Analysis) Polarity() float64 {
	return a.Sentiment.Compound
}

// AnalysisResult is a processed and stored submission.
type AnalysisResult struct {
	Analysis
	UserID        int64 `json:"user_id"`
	UserMessageID int64 `json:"user_message_id,omitempty"`
	BotMessageID  int64 `json:"bot_message_id,omitempty"`
	Persisted     bool  `json:"persisted"`
}

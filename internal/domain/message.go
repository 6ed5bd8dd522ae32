package domain

import "time"

// User is a chat participant identified by email.
type User struct {
	ID        int64     `db:"id"         json:"user_id"`
	Email     string    `db:"email"      json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Consent is a user's acceptance of the service terms plus an optional
// emergency contact.
type Consent struct {
	UserID         int64     `db:"user_id"         json:"user_id"`
	Accepted       bool      `db:"accepted"        json:"accepted"`
	EmergencyPhone string    `db:"emergency_phone" json:"emergency_phone"`
	AcceptedAt     time.Time `db:"accepted_at"     json:"accepted_at"`
}

// Message is one conversation turn. Analysis is nil for bot messages.
type Message struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Text      string           `json:"message_text"`
	IsBot     bool             `json:"is_bot"`
	CreatedAt time.Time        `json:"created_at"`
	Analysis  *MessageAnalysis `json:"analysis,omitempty"`
}

// MessageAnalysis holds the fields stored alongside a user message.
type MessageAnalysis struct {
	Polarity          float64      `json:"polarity"`
	Severity          Severity     `json:"severity"`
	ConcernLabel      ConcernLabel `json:"concern_label"`
	ConcernConfidence float64      `json:"concern_confidence"`
}

// PolarityPoint is one analyzed message in a user's mood history.
type PolarityPoint struct {
	MessageID int64
	Text      string
	Polarity  float64
	Severity  Severity
	CreatedAt time.Time
}

// Alert is a flagged user message with the contact details needed to follow up.
type Alert struct {
	MessageID         int64        `db:"message_id"         json:"message_id"`
	UserID            int64        `db:"user_id"            json:"user_id"`
	Email             string       `db:"email"              json:"email"`
	EmergencyPhone    string       `db:"emergency_phone"    json:"emergency_phone,omitempty"`
	Text              string       `db:"message_text"       json:"message_text"`
	Polarity          float64      `db:"polarity"           json:"polarity"`
	Severity          Severity     `db:"severity"           json:"severity"`
	ConcernLabel      ConcernLabel `db:"concern_label"      json:"concern_label"`
	ConcernConfidence float64      `db:"concern_confidence" json:"concern_confidence"`
	CreatedAt         time.Time    `db:"created_at"         json:"created_at"`
}

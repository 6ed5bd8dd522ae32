package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

const pqForeignKeyViolation = "23503"

const (
	DefaultRecentLimit  = 5
	DefaultHistoryLimit = 100
	DefaultAlertLimit   = 50
	MaxLimit            = 100
)

// MessageWriter inserts one conversation exchange inside a transaction.
type MessageWriter interface {
	InsertMessage(ctx context.Context, msg *domain.Message) (int64, error)
	InsertEntities(ctx context.Context, messageID int64, entities []domain.Entity) error
}

// Repository is safe for concurrent use.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository wraps an open connection.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser returns the user with email, creating it on first login.
func (r *Repository) CreateUser(ctx context.Context, email string) (domain.User, error) {
	query := r.db.Rebind(`
		INSERT INTO users (email, created_at) VALUES (?, ?)
		ON CONFLICT (email) DO UPDATE SET email = excluded.email
		RETURNING id, email, created_at`)

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email, r.now()); err != nil {
		return domain.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

// RecordConsent stores or replaces the user's consent.
func (r *Repository) RecordConsent(
	ctx context.Context, userID int64, accepted bool, emergencyPhone string,
) (domain.Consent, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT 1 FROM users WHERE id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Consent{}, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return domain.Consent{}, fmt.Errorf("look up user: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO consent (user_id, accepted, emergency_phone, accepted_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			accepted = excluded.accepted,
			emergency_phone = excluded.emergency_phone,
			accepted_at = excluded.accepted_at
		RETURNING user_id, accepted, emergency_phone, accepted_at`)

	var consent domain.Consent
	if err := r.db.GetContext(ctx, &consent, query, userID, accepted, emergencyPhone, r.now()); err != nil {
		return domain.Consent{}, fmt.Errorf("upsert consent: %w", err)
	}
	return consent, nil
}

// InTx runs fn in a transaction that commits only when fn returns nil.
func (r *Repository) InTx(ctx context.Context, fn func(MessageWriter) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if fnErr := fn(&txWriter{tx: tx, now: r.now}); fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(fnErr, fmt.Errorf("rollback: %w", rbErr))
		}
		return fnErr
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit transaction: %w", commitErr)
	}
	return nil
}

// RecentMessages returns the user's latest turns, newest first.
func (r *Repository) RecentMessages(ctx context.Context, userID int64, limit int) ([]domain.Message, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, message_text, is_bot, polarity, severity,
		       concern_label, concern_confidence, created_at
		FROM messages
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, clampLimit(limit, DefaultRecentLimit)); err != nil {
		return nil, fmt.Errorf("select recent messages: %w", err)
	}

	out := make([]domain.Message, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// PolarityHistory returns the user's latest analyzed messages, oldest first.
func (r *Repository) PolarityHistory(ctx context.Context, userID int64, limit int) ([]domain.PolarityPoint, error) {
	query := r.db.Rebind(`
		SELECT id, message_text, polarity, severity, created_at
		FROM messages
		WHERE user_id = ? AND is_bot = ? AND polarity IS NOT NULL AND severity IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	var rows []polarityRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, false, clampLimit(limit, DefaultHistoryLimit)); err != nil {
		return nil, fmt.Errorf("select polarity history: %w", err)
	}

	out := make([]domain.PolarityPoint, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = domain.PolarityPoint{
			MessageID: row.ID,
			Text:      row.Text,
			Polarity:  row.Polarity,
			Severity:  row.Severity,
			CreatedAt: row.CreatedAt,
		}
	}
	return out, nil
}

// Alerts returns user messages at or above minSeverity with the contact
// details needed to follow up, newest first.
func (r *Repository) Alerts(ctx context.Context, minSeverity domain.Severity, limit int) ([]domain.Alert, error) {
	var tiers []string
	for _, s := range domain.Severities() {
		if s >= minSeverity {
			tiers = append(tiers, s.String())
		}
	}
	if len(tiers) == 0 {
		return []domain.Alert{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT m.id AS message_id, m.user_id, u.email,
		       COALESCE(c.emergency_phone, '') AS emergency_phone,
		       m.message_text, COALESCE(m.polarity, 0) AS polarity, m.severity,
		       COALESCE(m.concern_label, 'safe') AS concern_label,
		       COALESCE(m.concern_confidence, 0) AS concern_confidence,
		       m.created_at
		FROM messages m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN consent c ON c.user_id = m.user_id
		WHERE m.is_bot = ? AND m.severity IN (?)
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?`, false, tiers, clampLimit(limit, DefaultAlertLimit))
	if err != nil {
		return nil, fmt.Errorf("build alerts query: %w", err)
	}

	var alerts []domain.Alert
	if err := r.db.SelectContext(ctx, &alerts, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select alerts: %w", err)
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return alerts, nil
}

type txWriter struct {
	tx  *sqlx.Tx
	now func() time.Time
}

func (w *txWriter) InsertMessage(ctx context.Context, msg *domain.Message) (int64, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = w.now()
	}

	var (
		polarity   sql.NullFloat64
		severity   sql.NullString
		label      sql.NullString
		confidence sql.NullFloat64
	)
	if a := msg.Analysis; a != nil && !msg.IsBot {
		polarity = sql.NullFloat64{Float64: a.Polarity, Valid: true}
		severity = sql.NullString{String: a.Severity.String(), Valid: true}
		label = sql.NullString{String: string(a.ConcernLabel), Valid: true}
		confidence = sql.NullFloat64{Float64: a.ConcernConfidence, Valid: true}
	}

	query := w.tx.Rebind(`
		INSERT INTO messages (user_id, message_text, is_bot, polarity, severity,
		                      concern_label, concern_confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	var id int64
	err := w.tx.GetContext(ctx, &id, query,
		msg.UserID, msg.Text, msg.IsBot, polarity, severity, label, confidence, msg.CreatedAt)
	if isForeignKeyViolation(err) {
		return 0, fmt.Errorf("user %d: %w", msg.UserID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	msg.ID = id
	return id, nil
}

func (w *txWriter) InsertEntities(ctx context.Context, messageID int64, entities []domain.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	query := w.tx.Rebind(`
		INSERT INTO entities (message_id, entity_text, entity_type, label, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	stmt, err := w.tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare entity insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := w.now()
	for _, e := range entities {
		if _, execErr := stmt.ExecContext(ctx, messageID, e.Text, string(e.Type), e.Label, now); execErr != nil {
			return fmt.Errorf("insert entity: %w", execErr)
		}
	}
	return nil
}

type messageRow struct {
	ID                int64           `db:"id"`
	UserID            int64           `db:"user_id"`
	Text              string          `db:"message_text"`
	IsBot             bool            `db:"is_bot"`
	Polarity          sql.NullFloat64 `db:"polarity"`
	Severity          sql.NullString  `db:"severity"`
	ConcernLabel      sql.NullString  `db:"concern_label"`
	ConcernConfidence sql.NullFloat64 `db:"concern_confidence"`
	CreatedAt         time.Time       `db:"created_at"`
}

func (r *messageRow) toDomain() domain.Message {
	msg := domain.Message{
		ID:        r.ID,
		UserID:    r.UserID,
		Text:      r.Text,
		IsBot:     r.IsBot,
		CreatedAt: r.CreatedAt,
	}
	if r.IsBot || !r.Polarity.Valid {
		return msg
	}

	severity, err := domain.ParseSeverity(r.Severity.String)
	if err != nil {
		severity = domain.SeveritySafe
	}
	label := domain.ConcernLabel(r.ConcernLabel.String)
	if !label.Valid() {
		label = domain.ConcernSafe
	}
	msg.Analysis = &domain.MessageAnalysis{
		Polarity:          r.Polarity.Float64,
		Severity:          severity,
		ConcernLabel:      label,
		ConcernConfidence: r.ConcernConfidence.Float64,
	}
	return msg
}

type polarityRow struct {
	ID        int64           `db:"id"`
	Text      string          `db:"message_text"`
	Polarity  float64         `db:"polarity"`
	Severity  domain.Severity `db:"severity"`
	CreatedAt time.Time       `db:"created_at"`
}

// clampLimit applies def to non-positive limits and caps at MaxLimit.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxLimit)
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

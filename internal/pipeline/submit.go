package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/database"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

var (
	// ErrInvalidInput rejects a submission without a user or text.
	ErrInvalidInput = errors.New("user id and message text are required")
	// ErrNoStore is returned by SubmitMessage on an analysis-only pipeline.
	ErrNoStore = errors.New("no message store configured")
)

// Store persists one exchange atomically.
type Store interface {
	InTx(ctx context.Context, fn func(database.MessageWriter) error) error
}

// SubmitMessage analyzes text for userID and stores the user message, its
// entities and the bot reply in one transaction. On a storage failure the
// computed result is still returned, with Persisted false, alongside the
// error so callers can decide whether to show the reply.
func (p *Pipeline) SubmitMessage(ctx context.Context, userID int64, text string) (domain.AnalysisResult, error) {
	if userID <= 0 || isBlank(text) {
		return domain.AnalysisResult{}, ErrInvalidInput
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.submit")
	defer span.End()
	span.SetAttributes(attribute.Int64("triage.user_id", userID))

	res := domain.AnalysisResult{Analysis: p.Analyze(ctx, text), UserID: userID}

	if err := p.persist(ctx, &res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store exchange")
		if errors.Is(err, database.ErrNotFound) {
			p.log.Warn("Message from unknown user not stored",
				logger.Int64("user_id", userID),
				logger.String("severity", res.Severity.String()),
			)
			return res, fmt.Errorf("store exchange: %w", err)
		}
		if p.telemetry != nil {
			p.telemetry.RecordStorageFailure()
		}
		p.log.Error("Failed to store message exchange",
			logger.Int64("user_id", userID),
			logger.String("severity", res.Severity.String()),
			logger.Error(err),
		)
		return res, fmt.Errorf("store exchange: %w", err)
	}

	p.log.Info("Message processed",
		logger.Int64("user_id", userID),
		logger.String("severity", res.Severity.String()),
		logger.String("concern", string(res.Concern.Label)),
		logger.Float64("confidence", res.Concern.Confidence),
		logger.Int("entities", len(res.Entities)),
		logger.String("reply_rule", res.ReplyRule),
		logger.Strings("degraded", res.Degraded),
	)
	return res, nil
}

func (p *Pipeline) persist(ctx context.Context, res *domain.AnalysisResult) error {
	if p.store == nil {
		return ErrNoStore
	}

	var userMsgID, botMsgID int64
	err := p.store.InTx(ctx, func(w database.MessageWriter) error {
		userMsg := &domain.Message{
			UserID: res.UserID,
			Text:   res.Text,
			Analysis: &domain.MessageAnalysis{
				Polarity:          res.Polarity(),
				Severity:          res.Severity,
				ConcernLabel:      res.Concern.Label,
				ConcernConfidence: res.Concern.Confidence,
			},
		}
		var err error
		if userMsgID, err = w.InsertMessage(ctx, userMsg); err != nil {
			return err
		}
		if err = w.InsertEntities(ctx, userMsgID, res.Entities); err != nil {
			return err
		}
		botMsgID, err = w.InsertMessage(ctx, &domain.Message{UserID: res.UserID, Text: res.Reply, IsBot: true})
		return err
	})
	if err != nil {
		return err
	}

	res.UserMessageID = userMsgID
	res.BotMessageID = botMsgID
	res.Persisted = true
	return nil
}

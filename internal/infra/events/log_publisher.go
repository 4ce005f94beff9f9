package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/account-guard/internal/core/domain"
	"github.com/arklim/account-guard/internal/core/port"
	"github.com/arklim/account-guard/internal/infra/config"
)

const (
	TypePasswordChanged      = "guard.password.changed"
	TypeLoginFailed          = "guard.session.login_failed"
	TypeSessionAborted       = "guard.session.aborted"
	TypeSessionAuthenticated = "guard.session.authenticated"
)

// LogPublisher writes security events to the structured log instead of a broker.
type LogPublisher struct {
	logger *zap.Logger
	appCfg config.AppSettings
}

// NewLogPublisher constructs a log-backed event publisher.
func NewLogPublisher(appCfg config.AppSettings, logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger, appCfg: appCfg}
}

func (p *LogPublisher) logEvent(eventID, eventType, userID string, at time.Time, payload map[string]any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	p.logger.Info("event published",
		zap.String("event_id", eventID),
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.String("service", p.appCfg.Name),
		zap.String("environment", p.appCfg.Env),
		zap.Any("payload", payload),
	)
}

// PublishPasswordChanged logs guard.password.changed events.
func (p *LogPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"session_id":  event.SessionID,
		"changed_at":  event.ChangedAt,
		"history_len": event.HistoryLen,
		"metadata":    event.Metadata,
	}
	p.logEvent(event.EventID, TypePasswordChanged, event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishLoginFailed logs guard.session.login_failed events.
func (p *LogPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	payload := map[string]any{
		"session_id": event.SessionID,
		"attempt":    event.Attempt,
		"remaining":  event.Remaining,
	}
	p.logEvent(event.EventID, TypeLoginFailed, event.UserID, event.FailedAt, payload)
	return nil
}

// PublishSessionAborted logs guard.session.aborted events.
func (p *LogPublisher) PublishSessionAborted(_ context.Context, event domain.SessionAbortedEvent) error {
	payload := map[string]any{
		"session_id": event.SessionID,
		"reason":     event.Reason,
	}
	p.logEvent(event.EventID, TypeSessionAborted, event.UserID, event.AbortedAt, payload)
	return nil
}

// PublishSessionAuthenticated logs guard.session.authenticated events.
func (p *LogPublisher) PublishSessionAuthenticated(_ context.Context, event domain.SessionAuthenticatedEvent) error {
	payload := map[string]any{
		"session_id": event.SessionID,
	}
	p.logEvent(event.EventID, TypeSessionAuthenticated, event.UserID, event.AuthenticatedAt, payload)
	return nil
}

var _ port.EventPublisher = (*LogPublisher)(nil)

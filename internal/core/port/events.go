package port

import (
	"context"

	"github.com/arklim/account-guard/internal/core/domain"
)

// EventPublisher publishes security events emitted by login sessions.
type EventPublisher interface {
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error
	PublishSessionAborted(ctx context.Context, event domain.SessionAbortedEvent) error
	PublishSessionAuthenticated(ctx context.Context, event domain.SessionAuthenticatedEvent) error
}

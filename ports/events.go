package ports

import (
	"context"

	"github.com/communa/backend/core"
)

// EventPublisher notifies the rest of the marketplace about account changes
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *core.User) error
}

// Mailer hands notifications to the delivery pipeline
type Mailer interface {
	SendPasswordReset(ctx context.Context, user *core.User, token string) error
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/communa/backend/core"
	"github.com/communa/backend/ports"
	"github.com/google/uuid"
)

const (
	TopicUserRegistered = "communa.user.registered"
	TopicPasswordReset  = "communa.mail.password_reset"
)

// UserRegisteredEvent is emitted when a wallet login creates an account
type UserRegisteredEvent struct {
	UserID    string    `json:"user_id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// PasswordResetMail asks the mail worker to deliver a reset link
type PasswordResetMail struct {
	UserID    string `json:"user_id"`
	Recipient string `json:"recipient"`
	Token     string `json:"token"`
}

// WatermillPublisher implements EventPublisher and Mailer using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

var (
	_ ports.EventPublisher = (*WatermillPublisher)(nil)
	_ ports.Mailer         = (*WatermillPublisher)(nil)
)

// PublishUserRegistered publishes a registration event
func (p *WatermillPublisher) PublishUserRegistered(ctx context.Context, user *core.User) error {
	return p.publish(ctx, TopicUserRegistered, UserRegisteredEvent{
		UserID:    user.ID,
		Address:   user.Address,
		CreatedAt: user.CreatedAt,
	})
}

// SendPasswordReset queues a reset mail for the user's email or phone
func (p *WatermillPublisher) SendPasswordReset(ctx context.Context, user *core.User, token string) error {
	return p.publish(ctx, TopicPasswordReset, PasswordResetMail{
		UserID:    user.ID,
		Recipient: user.EmailOrPhone(),
		Token:     token,
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", topic, err)
	}
	return nil
}

// NopPublisher drops every event. Used when the event bus is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishUserRegistered(context.Context, *core.User) error { return nil }

func (NopPublisher) SendPasswordReset(context.Context, *core.User, string) error { return nil }

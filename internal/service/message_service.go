package service

import (
	"context"
	"log/slog"
	"strings"

	"agora/internal/membership"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"
)

// MessagePublisher delivers a stored message to the receiver's live sessions.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, receiverID uint, message *models.Message) error
}

// MessageService sends direct messages and builds the inbox views.
type MessageService struct {
	store     repository.Store
	publisher MessagePublisher
}

type SendMessageInput struct {
	SenderID   uint   `json:"-"`
	ReceiverID uint   `json:"-"`
	Content    string `json:"content" validate:"required,max=5000"`
}

// NewMessageService returns a MessageService. publisher may be nil, in
// which case messages are only stored.
func NewMessageService(store repository.Store, publisher MessagePublisher) *MessageService {
	return &MessageService{store: store, publisher: publisher}
}

// Send stores a message to an existing user other than the sender and
// pushes it to the receiver when realtime delivery is available.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.SenderID == in.ReceiverID {
		return nil, models.NewValidationError("You cannot message yourself")
	}

	receiver, err := s.store.Users().GetByID(ctx, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	sender, err := s.store.Users().GetByID(ctx, in.SenderID)
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return nil, models.NewNotFoundError("Authenticated user")
		}
		return nil, err
	}

	msg := &models.Message{SenderID: sender.ID, ReceiverID: receiver.ID, Content: in.Content}
	if err := s.store.Messages().Create(ctx, msg); err != nil {
		return nil, err
	}
	msg.Sender = sender
	msg.Receiver = receiver
	observability.MessagesSent.Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishMessage(ctx, receiver.ID, msg); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish message",
				slog.Uint64("message_id", uint64(msg.ID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return msg, nil
}

// Thread returns the conversation between userID and otherID, oldest first.
func (s *MessageService) Thread(ctx context.Context, userID, otherID uint, limit, offset int) ([]models.Message, error) {
	if _, err := s.store.Users().GetByID(ctx, otherID); err != nil {
		return nil, err
	}
	return s.store.Messages().Thread(ctx, userID, otherID, limit, offset)
}

// OtherSenders returns the distinct users who messaged userID and whom
// userID does not follow, in order of their first message.
func (s *MessageService) OtherSenders(ctx context.Context, userID uint) ([]models.Sender, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	following, err := s.store.Follows().FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	received, err := s.store.Messages().Received(ctx, userID)
	if err != nil {
		return nil, err
	}
	return membership.UniqueSenders(received, following), nil
}

// AllSenders returns every distinct user who messaged userID. The
// deduplication runs in the database.
func (s *MessageService) AllSenders(ctx context.Context, userID uint) ([]models.Sender, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Messages().AggregateSenders(ctx, userID)
}

package repository

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository persists direct messages. Messages are never edited.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	Thread(ctx context.Context, userA, userB uint, limit, offset int) ([]models.Message, error)
	Received(ctx context.Context, receiverID uint) ([]models.Message, error)
	AggregateSenders(ctx context.Context, receiverID uint) ([]models.Sender, error)
	DeleteByUser(ctx context.Context, userID uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a MessageRepository backed by db.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error, "Message")
}

// Thread returns the conversation between two users oldest first.
func (r *messageRepository) Thread(ctx context.Context, userA, userB uint, limit, offset int) ([]models.Message, error) {
	limit, offset = normalizePage(limit, offset)
	messages := make([]models.Message, 0)
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// Received returns every message addressed to receiverID oldest first, with
// the sender resolved. Sender stays nil when the sending user is gone.
func (r *messageRepository) Received(ctx context.Context, receiverID uint) ([]models.Message, error) {
	defer observability.TrackQuery("received", "messages")()

	messages := make([]models.Message, 0)
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ?", receiverID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// AggregateSenders returns the distinct senders of messages to receiverID,
// ordered by their first message. The join drops senders that no longer exist.
func (r *messageRepository) AggregateSenders(ctx context.Context, receiverID uint) ([]models.Sender, error) {
	defer observability.TrackQuery("aggregate_senders", "messages")()

	senders := make([]models.Sender, 0)
	err := r.db.WithContext(ctx).
		Table("messages").
		Select("users.id AS id, users.username AS username, users.avatar AS avatar").
		Joins("JOIN users ON users.id = messages.sender_id").
		Where("messages.receiver_id = ?", receiverID).
		Group("users.id, users.username, users.avatar").
		Order("MIN(messages.created_at) ASC, users.id ASC").
		Scan(&senders).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return senders, nil
}

func (r *messageRepository) DeleteByUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&models.Message{}).Error
	return translate(err, "Message")
}

package repository

import (
	"context"

	"ai-finance-chat/backend/internal/models"

	"gorm.io/gorm"
)

// MessageRepository provides append-only access to the message log
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// RecentContext returns the newest messages first
	RecentContext(ctx context.Context, conversationID uint, limit int) ([]models.Message, error)
	// ListByConversation returns the full log in chronological order
	ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error)
	// SearchByUser matches content case-insensitively, scoped to the
	// owner's conversations through a join. Conversation ids from the
	// caller are never trusted.
	SearchByUser(ctx context.Context, userID uint, query string, skip, limit int) ([]models.Message, error)
}

// GormMessageRepository is the GORM-backed implementation
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a message repository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *GormMessageRepository) RecentContext(ctx context.Context, conversationID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Scopes(activeOnly).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, err
}

func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Scopes(activeOnly).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, err
}

func (r *GormMessageRepository) SearchByUser(ctx context.Context, userID uint, query string, skip, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.user_id = ?", userID).
		Where("messages.content ILIKE ?", "%"+query+"%").
		Where("messages.is_deleted = ?", false).
		Order("messages.created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&messages).Error
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, err
}

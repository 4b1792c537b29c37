package repository

import (
	"context"
	"time"

	"ai-finance-chat/backend/internal/models"

	"gorm.io/gorm"
)

// activeOnly is the single active-scope predicate. Every query path
// that should not see soft-deleted rows goes through it.
func activeOnly(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// ConversationRepository provides typed access to persisted conversations
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	// GetByIDForUser fetches a non-deleted conversation owned by the
	// given user. Absent and not-owned are indistinguishable.
	GetByIDForUser(ctx context.Context, id, userID uint) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID uint, status *models.ConversationStatus, skip, limit int) ([]models.Conversation, error)
	Save(ctx context.Context, conv *models.Conversation) error
	// RefreshStats recomputes message count and last-message timestamp
	// from the authoritative message log, never from a counter.
	RefreshStats(ctx context.Context, conversationID uint) (*models.Conversation, error)
	StatsForUser(ctx context.Context, userID uint) (*models.ChatStats, error)
}

// GormConversationRepository is the GORM-backed implementation
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a conversation repository
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *GormConversationRepository) GetByIDForUser(ctx context.Context, id, userID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Scopes(activeOnly).
		Where("id = ? AND user_id = ?", id, userID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *GormConversationRepository) ListByUser(ctx context.Context, userID uint, status *models.ConversationStatus, skip, limit int) ([]models.Conversation, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	// An explicit status filter may reach into the deleted scope;
	// without one, soft-deleted conversations stay invisible.
	if status != nil {
		query = query.Where("status = ?", *status)
	} else {
		query = query.Scopes(activeOnly)
	}

	var conversations []models.Conversation
	err := query.
		Order("updated_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&conversations).Error
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	return conversations, err
}

func (r *GormConversationRepository) Save(ctx context.Context, conv *models.Conversation) error {
	return r.db.WithContext(ctx).Save(conv).Error
}

func (r *GormConversationRepository) RefreshStats(ctx context.Context, conversationID uint) (*models.Conversation, error) {
	var agg struct {
		MessageCount  int64
		LastMessageAt *time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("COUNT(*) AS message_count, MAX(created_at) AS last_message_at").
		Where("conversation_id = ? AND is_deleted = ?", conversationID, false).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]any{
			"total_messages":  agg.MessageCount,
			"last_message_at": agg.LastMessageAt,
			"updated_at":      time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}

	var conv models.Conversation
	if err := r.db.WithContext(ctx).First(&conv, conversationID).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *GormConversationRepository) StatsForUser(ctx context.Context, userID uint) (*models.ChatStats, error) {
	stats := &models.ChatStats{}

	err := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("user_id = ?", userID).
		Count(&stats.TotalConversations).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("user_id = ? AND status = ?", userID, models.ConversationActive).
		Count(&stats.ActiveConversations).Error
	if err != nil {
		return nil, err
	}

	var roleCounts []struct {
		Role  models.MessageRole
		Count int64
	}
	err = r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("messages.role AS role, COUNT(messages.id) AS count").
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.user_id = ?", userID).
		Where("messages.is_deleted = ?", false).
		Group("messages.role").
		Scan(&roleCounts).Error
	if err != nil {
		return nil, err
	}

	for _, rc := range roleCounts {
		stats.TotalMessages += rc.Count
		switch rc.Role {
		case models.RoleUser:
			stats.UserMessages = rc.Count
		case models.RoleAssistant:
			stats.AssistantMessages = rc.Count
		case models.RoleSystem:
			stats.SystemMessages = rc.Count
		}
	}

	return stats, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"ai-finance-chat/backend/internal/models"
	"ai-finance-chat/backend/internal/repository"
	apperrors "ai-finance-chat/backend/pkg/errors"
	"ai-finance-chat/backend/pkg/logger"

	"gorm.io/gorm"
)

// ConversationService covers everything around the conversation log
// that is not a chat turn: listing, inspection, mutation, soft delete,
// search and usage stats. Every operation is scoped to the calling
// user; a conversation owned by someone else behaves as if it does
// not exist.
type ConversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	log           *logger.Logger
}

func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	log *logger.Logger,
) *ConversationService {
	if log == nil {
		log = logger.GetGlobal()
	}
	if log == nil {
		log = logger.New(logger.DefaultConfig())
	}
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		log:           log,
	}
}

// List returns the user's conversations, newest activity first.
// Without a status filter only active and archived conversations are
// returned; an explicit filter can also surface deleted ones.
func (s *ConversationService) List(ctx context.Context, userID uint, status *models.ConversationStatus, skip, limit int) ([]models.Conversation, error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidationError("status must be one of active, archived, deleted")
	}
	return s.conversations.ListByUser(ctx, userID, status, skip, limit)
}

// Detail returns one conversation together with its full ordered
// message history
func (s *ConversationService) Detail(ctx context.Context, userID, id uint) (*models.ConversationDetail, error) {
	conv, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	return &models.ConversationDetail{
		Conversation: *conv,
		Messages:     msgs,
	}, nil
}

// Update applies a partial update to title, status or system prompt.
// Absent fields are left untouched.
func (s *ConversationService) Update(ctx context.Context, userID, id uint, upd models.ConversationUpdate) (*models.Conversation, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, apperrors.NewValidationError("status must be one of active, archived, deleted")
	}

	conv, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		conv.Title = *upd.Title
	}
	if upd.SystemPrompt != nil {
		conv.SystemPrompt = upd.SystemPrompt
	}
	if upd.Status != nil {
		conv.Status = *upd.Status
		if *upd.Status == models.ConversationDeleted {
			s.markDeleted(conv)
		}
	}

	if err := s.conversations.Save(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Delete soft-deletes a conversation. The rows stay in the store and
// keep counting toward lifetime stats; they just stop appearing in
// default listings. An already-deleted conversation is not found.
func (s *ConversationService) Delete(ctx context.Context, userID, id uint) error {
	conv, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	s.markDeleted(conv)
	if err := s.conversations.Save(ctx, conv); err != nil {
		return err
	}

	s.log.Info("Conversation deleted", "conversation_id", conv.ID, "user_id", userID)
	return nil
}

// Search finds the user's messages whose content matches the query,
// case-insensitively, across all their conversations
func (s *ConversationService) Search(ctx context.Context, userID uint, query string, skip, limit int) ([]models.Message, error) {
	if query == "" {
		return nil, apperrors.NewValidationError("search query must not be empty")
	}
	return s.messages.SearchByUser(ctx, userID, query, skip, limit)
}

// Stats returns aggregate usage counters for the user
func (s *ConversationService) Stats(ctx context.Context, userID uint) (*models.ChatStats, error) {
	return s.conversations.StatsForUser(ctx, userID)
}

func (s *ConversationService) getOwned(ctx context.Context, userID, id uint) (*models.Conversation, error) {
	conv, err := s.conversations.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewConversationNotFound()
		}
		return nil, err
	}
	return conv, nil
}

func (s *ConversationService) markDeleted(conv *models.Conversation) {
	now := time.Now()
	conv.Status = models.ConversationDeleted
	conv.IsDeleted = true
	conv.DeletedAt = &now
}

package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"ai-finance-chat/backend/gateway"
	"ai-finance-chat/backend/internal/models"
	"ai-finance-chat/backend/internal/repository"
	"ai-finance-chat/backend/pkg/cache"
	apperrors "ai-finance-chat/backend/pkg/errors"
	"ai-finance-chat/backend/pkg/logger"
	"ai-finance-chat/backend/pkg/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GatewayClient is the slice of the gateway used by the orchestrator
type GatewayClient interface {
	SendChat(ctx context.Context, req gateway.ChatRequest) (*gateway.ChatResult, error)
	ListModels(ctx context.Context) []gateway.ModelInfo
	HealthCheck(ctx context.Context) bool
}

const (
	titleMaxRunes      = 100
	messageMaxRunes    = 50000
	defaultTemperature = 0.7
	defaultTopP        = 0.9

	catalogCacheKey = "model_catalog"
)

// ChatServiceConfig carries the orchestrator tunables
type ChatServiceConfig struct {
	DefaultModel  string
	ContextWindow int
	CatalogTTL    time.Duration
}

// ChatService drives one chat turn end to end: resolve or create the
// conversation, persist the user message, build the context window,
// invoke the gateway, persist the assistant message and refresh the
// conversation aggregates. Errors abort the turn; writes already
// committed are never rolled back.
type ChatService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	gateway       GatewayClient
	catalog       *cache.Cache
	log           *logger.Logger
	cfg           ChatServiceConfig
}

// NewChatService creates the chat orchestrator
func NewChatService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	gw GatewayClient,
	catalog *cache.Cache,
	log *logger.Logger,
	cfg ChatServiceConfig,
) *ChatService {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = models.DefaultModel
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = 10
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	if log == nil {
		log = logger.New(logger.DefaultConfig())
	}
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		gateway:       gw,
		catalog:       catalog,
		log:           log,
		cfg:           cfg,
	}
}

// SendMessage executes one chat turn for the given user
func (s *ChatService) SendMessage(ctx context.Context, userID uint, req models.ChatRequest) (*models.ChatResponse, error) {
	if err := validateChatRequest(&req); err != nil {
		return nil, err
	}

	// Resolving: no writes happen until the conversation is known good
	conv, err := s.resolveConversation(ctx, userID, &req)
	if err != nil {
		observability.RecordChatTurn("rejected")
		return nil, err
	}

	// Persisting(user): the user message stays persisted even if the
	// upstream call fails later. Re-asking is cheap, losing input is not.
	userMsg := &models.Message{
		UUID:           uuid.New().String(),
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        req.Message,
	}
	if req.Timestamp != "" {
		ts := req.Timestamp
		userMsg.ClientTimestamp = &ts
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		observability.RecordChatTurn("store_error")
		return nil, err
	}
	if _, err := s.conversations.RefreshStats(ctx, conv.ID); err != nil {
		observability.RecordChatTurn("store_error")
		return nil, err
	}

	// BuildingContext: the window includes the message just appended
	recent, err := s.messages.RecentContext(ctx, conv.ID, s.cfg.ContextWindow)
	if err != nil {
		observability.RecordChatTurn("store_error")
		return nil, err
	}
	apiMessages := BuildContext(s.effectiveSystemPrompt(conv, &req), recent, s.cfg.ContextWindow)

	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	topP := defaultTopP
	if req.TopP != nil {
		topP = *req.TopP
	}

	// Invoking: no automatic retries; a failed call leaves the
	// conversation with an unanswered last message.
	result, err := s.gateway.SendChat(ctx, gateway.ChatRequest{
		Messages:    apiMessages,
		Model:       conv.ModelName,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	})
	if err != nil {
		observability.RecordChatTurn("upstream_error")
		return nil, mapGatewayError(err)
	}

	// Persisting(assistant): assistant messages always carry the
	// generation metadata.
	assistantMsg := &models.Message{
		UUID:             uuid.New().String(),
		ConversationID:   conv.ID,
		Role:             models.RoleAssistant,
		Content:          result.Content,
		ModelName:        &result.Model,
		PromptTokens:     &result.Usage.PromptTokens,
		CompletionTokens: &result.Usage.CompletionTokens,
		TotalTokens:      &result.Usage.TotalTokens,
		Cost:             &result.EstimatedCost,
		ResponseTime:     &result.ResponseTime,
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		observability.RecordChatTurn("store_error")
		return nil, err
	}

	updated, err := s.conversations.RefreshStats(ctx, conv.ID)
	if err != nil {
		observability.RecordChatTurn("store_error")
		return nil, err
	}

	observability.RecordChatTurn("ok")
	s.log.Info("Chat turn completed",
		"conversation_id", conv.ID,
		"model", result.Model,
		"total_tokens", result.Usage.TotalTokens,
		"estimated_cost", result.EstimatedCost,
	)

	return &models.ChatResponse{
		ConversationID:    updated.ID,
		ConversationUUID:  updated.UUID,
		ConversationTitle: updated.Title,
		Content:           result.Content,
		ModelUsed:         result.Model,
		Usage:             result.Usage,
		ResponseTime:      result.ResponseTime,
		EstimatedCost:     result.EstimatedCost,
		TotalMessages:     updated.TotalMessages,
	}, nil
}

// resolveConversation finds the referenced conversation or creates a
// new one titled from the first message
func (s *ChatService) resolveConversation(ctx context.Context, userID uint, req *models.ChatRequest) (*models.Conversation, error) {
	if req.ConversationID == nil {
		model := req.Model
		if model == "" {
			model = s.cfg.DefaultModel
		}

		conv := &models.Conversation{
			UUID:      uuid.New().String(),
			UserID:    userID,
			Title:     DeriveTitle(req.Message),
			Status:    models.ConversationActive,
			ModelName: model,
		}
		if req.SystemMessage != "" {
			prompt := req.SystemMessage
			conv.SystemPrompt = &prompt
		}

		if err := s.conversations.Create(ctx, conv); err != nil {
			return nil, err
		}
		return conv, nil
	}

	conv, err := s.conversations.GetByIDForUser(ctx, *req.ConversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewConversationNotFound()
		}
		return nil, err
	}

	switch conv.Status {
	case models.ConversationActive:
		return conv, nil
	case models.ConversationArchived, models.ConversationDeleted:
		return nil, apperrors.NewConversationNotActive()
	default:
		return nil, apperrors.NewConversationNotActive()
	}
}

// effectiveSystemPrompt prefers the per-request directive over the one
// stored on the conversation
func (s *ChatService) effectiveSystemPrompt(conv *models.Conversation, req *models.ChatRequest) string {
	if req.SystemMessage != "" {
		return req.SystemMessage
	}
	if conv.SystemPrompt != nil {
		return *conv.SystemPrompt
	}
	return ""
}

// ListModels returns the model catalog, memoized in process memory for
// the configured TTL
func (s *ChatService) ListModels(ctx context.Context) []gateway.ModelInfo {
	if s.catalog != nil {
		if cached, ok := s.catalog.Get(catalogCacheKey); ok {
			if catalog, ok := cached.([]gateway.ModelInfo); ok {
				return catalog
			}
		}
	}

	catalog := s.gateway.ListModels(ctx)
	if s.catalog != nil {
		s.catalog.SetWithExpiration(catalogCacheKey, catalog, s.cfg.CatalogTTL)
	}
	return catalog
}

// HealthCheck reports whether the upstream provider is reachable
func (s *ChatService) HealthCheck(ctx context.Context) bool {
	return s.gateway.HealthCheck(ctx)
}

// DeriveTitle builds a conversation title from the first message:
// the first 100 characters, with an ellipsis when truncated.
func DeriveTitle(message string) string {
	if utf8.RuneCountInString(message) <= titleMaxRunes {
		return message
	}
	runes := []rune(message)
	return string(runes[:titleMaxRunes]) + "..."
}

// validateChatRequest rejects malformed input before any store or
// gateway work happens. The HTTP layer enforces the same bounds via
// binding tags; this keeps non-HTTP callers honest too.
func validateChatRequest(req *models.ChatRequest) error {
	n := utf8.RuneCountInString(req.Message)
	if n < 1 || n > messageMaxRunes {
		return apperrors.NewValidationError("message must be between 1 and 50000 characters")
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return apperrors.NewValidationError("temperature must be between 0 and 2")
	}
	if req.TopP != nil && (*req.TopP < 0 || *req.TopP > 1) {
		return apperrors.NewValidationError("top_p must be between 0 and 1")
	}
	if req.MaxTokens < 0 {
		return apperrors.NewValidationError("max_tokens must not be negative")
	}
	if utf8.RuneCountInString(req.SystemMessage) > 2000 {
		return apperrors.NewValidationError("system_message must be at most 2000 characters")
	}
	return nil
}

// mapGatewayError converts gateway sentinels into the boundary error
// taxonomy without collapsing distinct kinds
func mapGatewayError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gateway.ErrEmptyResponse):
		return apperrors.NewBadGatewayError(apperrors.CodeUpstreamEmptyResponse, "The model provider returned an empty response")
	case errors.Is(err, gateway.ErrUnavailable):
		return apperrors.NewBadGatewayError(apperrors.CodeUpstreamUnavailable, "The model provider is currently unavailable")
	default:
		return err
	}
}

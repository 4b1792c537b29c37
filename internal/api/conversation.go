package api

import (
	"net/http"
	"strconv"

	"ai-finance-chat/backend/internal/models"
	"ai-finance-chat/backend/internal/service"
	apperrors "ai-finance-chat/backend/pkg/errors"
	"ai-finance-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ConversationHandler exposes conversation management, message search
// and usage stats
type ConversationHandler struct {
	conversations *service.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// List handles GET /chat/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "Not authenticated"))
		return
	}

	skip, limit, err := pagination(c, 100, 1000)
	if err != nil {
		c.Error(err)
		return
	}

	var status *models.ConversationStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ConversationStatus(raw)
		if !s.Valid() {
			c.Error(apperrors.NewValidationError("status must be one of active, archived, deleted"))
			return
		}
		status = &s
	}

	conversations, err := h.conversations.List(c.Request.Context(), userID, status, skip, limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// Get handles GET /chat/conversations/:id
func (h *ConversationHandler) Get(c *gin.Context) {
	userID, id, err := h.principalAndID(c)
	if err != nil {
		c.Error(err)
		return
	}

	detail, err := h.conversations.Detail(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Update handles PUT /chat/conversations/:id
func (h *ConversationHandler) Update(c *gin.Context) {
	userID, id, err := h.principalAndID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var upd models.ConversationUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.Error(apperrors.NewValidationError("Invalid conversation update").WithDetails(err.Error()))
		return
	}

	conv, err := h.conversations.Update(c.Request.Context(), userID, id, upd)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

// Delete handles DELETE /chat/conversations/:id
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, id, err := h.principalAndID(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.conversations.Delete(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
}

// Search handles GET /chat/messages/search
func (h *ConversationHandler) Search(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "Not authenticated"))
		return
	}

	query := c.Query("q")
	if query == "" {
		c.Error(apperrors.NewValidationError("search query must not be empty"))
		return
	}

	skip, limit, err := pagination(c, 50, 200)
	if err != nil {
		c.Error(err)
		return
	}

	messages, err := h.conversations.Search(c.Request.Context(), userID, query, skip, limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"messages": messages,
		"count":    len(messages),
	})
}

// Stats handles GET /chat/stats
func (h *ConversationHandler) Stats(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "Not authenticated"))
		return
	}

	stats, err := h.conversations.Stats(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ConversationHandler) principalAndID(c *gin.Context) (uint, uint, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return 0, 0, apperrors.NewUnauthorizedError("UNAUTHORIZED", "Not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, 0, apperrors.NewValidationError("conversation id must be a positive integer")
	}

	return userID, uint(id), nil
}

// pagination parses skip and limit query params within bounds
func pagination(c *gin.Context, defaultLimit, maxLimit int) (int, int, error) {
	skip := 0
	if raw := c.Query("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, apperrors.NewValidationError("skip must be a non-negative integer")
		}
		skip = v
	}

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxLimit {
			return 0, 0, apperrors.NewValidationError("limit is out of range")
		}
		limit = v
	}

	return skip, limit, nil
}

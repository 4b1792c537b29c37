package api

import (
	"net/http"
	"time"

	"ai-finance-chat/backend/internal/models"
	"ai-finance-chat/backend/internal/service"
	apperrors "ai-finance-chat/backend/pkg/errors"
	"ai-finance-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the chat turn, model catalog and gateway health
// endpoints. Service errors flow to the error middleware via c.Error.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// SendMessage handles POST /chat
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("UNAUTHORIZED", "Not authenticated"))
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("Invalid chat request").WithDetails(err.Error()))
		return
	}

	resp, err := h.chat.SendMessage(c.Request.Context(), userID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListModels handles GET /chat/models
func (h *ChatHandler) ListModels(c *gin.Context) {
	catalog := h.chat.ListModels(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"models": catalog,
		"total":  len(catalog),
	})
}

// Health handles GET /chat/health. Always 200; upstream reachability
// is reported in the body.
func (h *ChatHandler) Health(c *gin.Context) {
	status := "healthy"
	upstream := "available"
	if !h.chat.HealthCheck(c.Request.Context()) {
		status = "degraded"
		upstream = "unavailable"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"openrouter_api": upstream,
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

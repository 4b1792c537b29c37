package models

import (
	"ai-finance-chat/backend/gateway"
)

// ChatRequest is the inbound payload for one chat turn
type ChatRequest struct {
	Message        string   `json:"message" binding:"required,min=1,max=50000"`
	ConversationID *uint    `json:"conversation_id"`
	Model          string   `json:"model" binding:"omitempty,max=100"`
	Temperature    *float64 `json:"temperature" binding:"omitempty,gte=0,lte=2"`
	TopP           *float64 `json:"top_p" binding:"omitempty,gte=0,lte=1"`
	MaxTokens      int      `json:"max_tokens" binding:"omitempty,gte=1"`
	SystemMessage  string   `json:"system_message" binding:"omitempty,max=2000"`
	// Timestamp is opaque client metadata, stored but never trusted
	// as the authoritative creation time.
	Timestamp string `json:"timestamp" binding:"omitempty,max=64"`
}

// ChatResponse is the combined result of one completed chat turn
type ChatResponse struct {
	ConversationID    uint          `json:"conversation_id"`
	ConversationUUID  string        `json:"conversation_uuid"`
	ConversationTitle string        `json:"conversation_title"`
	Content           string        `json:"content"`
	ModelUsed         string        `json:"model_used"`
	Usage             gateway.Usage `json:"usage"`
	ResponseTime      float64       `json:"response_time"`
	EstimatedCost     float64       `json:"estimated_cost"`
	TotalMessages     int           `json:"total_messages"`
}

// ConversationDetail is a conversation together with its full ordered
// message log
type ConversationDetail struct {
	Conversation Conversation `json:"conversation"`
	Messages     []Message    `json:"messages"`
}

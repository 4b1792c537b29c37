package models

import (
	"time"
)

// MessageRole identifies who produced a message
type MessageRole string

// Message roles
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Valid reports whether the role is one of the known roles
func (r MessageRole) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one turn's worth of content inside a conversation.
// Messages are append-only: once created they are never mutated except
// for soft deletion. Generation metadata (model, tokens, cost, latency)
// is present exactly when Role is assistant.
type Message struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	UUID           string      `json:"uuid" gorm:"uniqueIndex;size:36"`
	ConversationID uint        `json:"conversation_id" gorm:"index"`
	Role           MessageRole `json:"role" gorm:"size:20"`
	Content        string      `json:"content" gorm:"type:text"`

	// Generation metadata, assistant messages only
	ModelName        *string  `json:"model_name,omitempty" gorm:"size:100"`
	PromptTokens     *int     `json:"prompt_tokens,omitempty"`
	CompletionTokens *int     `json:"completion_tokens,omitempty"`
	TotalTokens      *int     `json:"total_tokens,omitempty"`
	Cost             *float64 `json:"cost,omitempty"`          // estimated, USD
	ResponseTime     *float64 `json:"response_time,omitempty"` // seconds

	// Opaque client-supplied timestamp. Never used for ordering;
	// CreatedAt is always assigned server-side.
	ClientTimestamp *string `json:"client_timestamp,omitempty" gorm:"size:64"`

	CreatedAt time.Time `json:"created_at"`
	IsDeleted bool      `json:"-" gorm:"index"`
}

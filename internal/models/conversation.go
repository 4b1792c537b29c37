package models

import (
	"time"
)

// ConversationStatus is the lifecycle status of a conversation
type ConversationStatus string

// Conversation lifecycle states
const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
	ConversationDeleted  ConversationStatus = "deleted"
)

// Valid reports whether the status is one of the known lifecycle states
func (s ConversationStatus) Valid() bool {
	switch s {
	case ConversationActive, ConversationArchived, ConversationDeleted:
		return true
	}
	return false
}

// DefaultModel is the model used when a chat request does not name one
const DefaultModel = "anthropic/claude-3.5-sonnet"

// Conversation represents a titled, owned thread of chat turns.
// TotalMessages and LastMessageAt are recomputed from the message log
// after every append, never incremented in place.
type Conversation struct {
	ID           uint               `json:"id" gorm:"primaryKey"`
	UUID         string             `json:"uuid" gorm:"uniqueIndex;size:36"`
	UserID       uint               `json:"user_id" gorm:"index"`
	Title        string             `json:"title" gorm:"size:200"`
	Status       ConversationStatus `json:"status" gorm:"size:20;default:active"`
	ModelName    string             `json:"model_name" gorm:"size:100"`
	SystemPrompt *string            `json:"system_prompt,omitempty" gorm:"type:text"`

	TotalMessages int        `json:"total_messages"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	IsDeleted bool       `json:"-" gorm:"index"`
}

// ConversationUpdate carries a partial update of the mutable fields.
// Nil fields are left untouched.
type ConversationUpdate struct {
	Title        *string             `json:"title" binding:"omitempty,min=1,max=200"`
	Status       *ConversationStatus `json:"status"`
	SystemPrompt *string             `json:"system_prompt" binding:"omitempty,max=2000"`
}

// ChatStats aggregates a user's chat activity
type ChatStats struct {
	TotalConversations  int64 `json:"total_conversations"`
	ActiveConversations int64 `json:"active_conversations"`
	TotalMessages       int64 `json:"total_messages"`
	UserMessages        int64 `json:"user_messages"`
	AssistantMessages   int64 `json:"assistant_messages"`
	SystemMessages      int64 `json:"system_messages"`
}

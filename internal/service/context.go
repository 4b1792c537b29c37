package service

import (
	"ai-finance-chat/backend/gateway"
	"ai-finance-chat/backend/internal/models"
)

// BuildContext turns a bounded slice of conversation history into the
// ordered message list sent upstream. The history arrives newest-first
// (as RecentContext returns it) and is reversed into chronological
// order after the optional system directive. The input slice is never
// mutated and the output never exceeds window entries plus the
// directive.
func BuildContext(systemPrompt string, recent []models.Message, window int) []gateway.ChatMessage {
	if window > 0 && len(recent) > window {
		recent = recent[:window]
	}

	out := make([]gateway.ChatMessage, 0, len(recent)+1)

	if systemPrompt != "" {
		out = append(out, gateway.ChatMessage{
			Role:    string(models.RoleSystem),
			Content: systemPrompt,
		})
	}

	for i := len(recent) - 1; i >= 0; i-- {
		out = append(out, gateway.ChatMessage{
			Role:    string(recent[i].Role),
			Content: recent[i].Content,
		})
	}

	return out
}

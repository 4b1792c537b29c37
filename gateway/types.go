package gateway

// ChatMessage is one entry of the ordered message list sent upstream
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes one chat-completion call
type ChatRequest struct {
	Messages    []ChatMessage
	Model       string
	MaxTokens   int // 0 leaves the provider default
	Temperature float64
	TopP        float64
}

// Usage is the token accounting reported by the provider
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult is a normalized chat-completion response.
// EstimatedCost comes from a static price table and is an estimate,
// not a billing source of truth.
type ChatResult struct {
	Content       string
	Model         string
	Usage         Usage
	EstimatedCost float64
	ResponseTime  float64 // seconds
}

// ModelInfo describes one entry of the provider's model catalog
type ModelInfo struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	ContextLength int            `json:"context_length"`
	Pricing       map[string]any `json:"pricing"`
}

// Wire types for the OpenRouter-compatible API

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type modelListResponse struct {
	Data []struct {
		ID            string         `json:"id"`
		Name          string         `json:"name"`
		Description   string         `json:"description"`
		ContextLength int            `json:"context_length"`
		Pricing       map[string]any `json:"pricing"`
	} `json:"data"`
}

package gateway

// tokenRates holds USD prices per 1M tokens
type tokenRates struct {
	Input  float64
	Output float64
}

// Static price table. These are estimates; actual provider billing may
// differ, and the numbers need refreshing when upstream pricing changes.
var modelRates = map[string]tokenRates{
	"anthropic/claude-3.5-sonnet":     {Input: 3.0, Output: 15.0},
	"openai/gpt-4-turbo":              {Input: 10.0, Output: 30.0},
	"openai/gpt-3.5-turbo":            {Input: 0.5, Output: 1.5},
	"google/gemini-pro":               {Input: 0.5, Output: 1.5},
	"mistralai/mixtral-8x7b-instruct": {Input: 0.27, Output: 0.27},
}

// defaultRates applies to models missing from the table
var defaultRates = tokenRates{Input: 1.0, Output: 2.0}

// EstimateCost estimates the USD cost of one completion from token counts.
// Unknown models fall back to a default rate pair.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	rates, ok := modelRates[model]
	if !ok {
		rates = defaultRates
	}
	inputCost := float64(promptTokens) / 1_000_000 * rates.Input
	outputCost := float64(completionTokens) / 1_000_000 * rates.Output
	return inputCost + outputCost
}

// defaultCatalog is returned when the upstream model listing is unreachable
func defaultCatalog() []ModelInfo {
	return []ModelInfo{
		{
			ID:            "anthropic/claude-3.5-sonnet",
			Name:          "Claude 3.5 Sonnet",
			Description:   "Most intelligent model, best for complex reasoning tasks",
			ContextLength: 200000,
			Pricing:       map[string]any{"input": 0.003, "output": 0.015},
		},
		{
			ID:            "openai/gpt-4-turbo",
			Name:          "GPT-4 Turbo",
			Description:   "OpenAI's most capable model",
			ContextLength: 128000,
			Pricing:       map[string]any{"input": 0.01, "output": 0.03},
		},
		{
			ID:            "openai/gpt-3.5-turbo",
			Name:          "GPT-3.5 Turbo",
			Description:   "Fast and efficient for most tasks",
			ContextLength: 16385,
			Pricing:       map[string]any{"input": 0.0005, "output": 0.0015},
		},
		{
			ID:            "google/gemini-pro",
			Name:          "Gemini Pro",
			Description:   "Google's advanced AI model",
			ContextLength: 30720,
			Pricing:       map[string]any{"input": 0.0005, "output": 0.0015},
		},
	}
}

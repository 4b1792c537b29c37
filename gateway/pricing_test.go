package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name             string
		model            string
		promptTokens     int
		completionTokens int
		want             float64
	}{
		{
			name:             "known model",
			model:            "anthropic/claude-3.5-sonnet",
			promptTokens:     1_000_000,
			completionTokens: 1_000_000,
			want:             18.0,
		},
		{
			name:             "cheap model",
			model:            "openai/gpt-3.5-turbo",
			promptTokens:     2_000_000,
			completionTokens: 0,
			want:             1.0,
		},
		{
			name:             "unknown model uses default rates",
			model:            "some/unknown-model",
			promptTokens:     1_000_000,
			completionTokens: 500_000,
			want:             2.0,
		},
		{
			name:  "zero tokens cost nothing",
			model: "anthropic/claude-3.5-sonnet",
			want:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateCost(tt.model, tt.promptTokens, tt.completionTokens)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDefaultCatalogCoversPriceTable(t *testing.T) {
	for _, m := range defaultCatalog() {
		_, known := modelRates[m.ID]
		assert.True(t, known, "catalog model %s is missing from the price table", m.ID)
	}
}

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestConfigFor(t *testing.T) {
	tests := []struct {
		provider Provider
		want     Provider
	}{
		{ProviderGemini, ProviderGemini},
		{ProviderOpenAI, ProviderOpenAI},
		{ProviderAnthropic, ProviderAnthropic},
		{"mystery", ProviderGemini},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			cfg := ConfigFor(tt.provider)
			assert.Equal(t, tt.want, cfg.Provider)
			assert.NotEmpty(t, cfg.GetModel(TierAdvanced))
		})
	}
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced), "original must be unchanged")
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
}

func TestWithAllModels(t *testing.T) {
	config := DefaultOpenAIConfig()
	config.BaseURL = "http://localhost:11434/v1"

	pinned := config.WithAllModels("llama3")
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		assert.Equal(t, "llama3", pinned.GetModel(tier))
	}
	assert.Equal(t, "http://localhost:11434/v1", pinned.BaseURL)
	assert.Equal(t, "gpt-4o", config.GetModel(TierAdvanced))
}

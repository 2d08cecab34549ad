package handlers

import (
	"net/http"

	"github.com/BlurryBat/photo-matcher/internal/config"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	DefaultProvider string         `json:"default_provider"`
	Providers       []ProviderInfo `json:"providers"`
}

// ProviderInfo represents information about an AI provider
type ProviderInfo struct {
	Name string `json:"name"`
	// HasServerToken tells the UI whether a credential is already configured
	// server-side, making the token field optional for this provider.
	HasServerToken bool `json:"has_server_token"`
}

// Get returns the available configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	providers := []ProviderInfo{
		{
			Name:           "openai",
			HasServerToken: h.config.OpenAI.Token != "",
		},
		{
			Name:           "gemini",
			HasServerToken: h.config.Gemini.APIKey != "",
		},
		{
			Name:           "ollama",
			HasServerToken: true, // local, no credential needed
		},
		{
			Name:           "llamacpp",
			HasServerToken: true, // local, no credential needed
		},
	}

	response := ConfigResponse{
		DefaultProvider: h.config.AI.Provider,
		Providers:       providers,
	}

	respondJSON(w, http.StatusOK, response)
}

package config

import (
	"os"
	"testing"
)

func TestGetModelPricing_KnownModel(t *testing.T) {
	cfg := Load() // Load actual config with embedded prices

	pricing := cfg.GetModelPricing("gpt-4.1-mini")

	if pricing.Input != 0.40 {
		t.Errorf("expected input price 0.40, got %f", pricing.Input)
	}

	if pricing.Output != 1.60 {
		t.Errorf("expected output price 1.60, got %f", pricing.Output)
	}
}

func TestGetModelPricing_GeminiModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("gemini-2.5-flash")

	if pricing.Input != 0.30 {
		t.Errorf("expected gemini input 0.30, got %f", pricing.Input)
	}

	if pricing.Output != 2.50 {
		t.Errorf("expected gemini output 2.50, got %f", pricing.Output)
	}
}

func TestGetModelPricing_LocalModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("llava")

	// Local models should have zero pricing
	if pricing.Input != 0 || pricing.Output != 0 {
		t.Errorf("expected zero pricing for local model, got input=%f output=%f",
			pricing.Input, pricing.Output)
	}
}

func TestGetModelPricing_UnknownModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("unknown-model-xyz")

	if pricing.Input != 0 || pricing.Output != 0 {
		t.Errorf("expected zero pricing for unknown model, got input=%f output=%f",
			pricing.Input, pricing.Output)
	}
}

func TestLoad_DefaultProvider(t *testing.T) {
	os.Unsetenv("AI_PROVIDER")

	cfg := Load()

	if cfg.AI.Provider != "openai" {
		t.Errorf("expected default provider 'openai', got '%s'", cfg.AI.Provider)
	}
}

func TestLoad_CustomProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "ollama")

	cfg := Load()

	if cfg.AI.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got '%s'", cfg.AI.Provider)
	}
}

func TestLoad_WebDefaults(t *testing.T) {
	os.Unsetenv("WEB_PORT")
	os.Unsetenv("WEB_HOST")

	cfg := Load()

	if cfg.Web.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Web.Port)
	}

	if cfg.Web.Host != "0.0.0.0" {
		t.Errorf("expected default host '0.0.0.0', got '%s'", cfg.Web.Host)
	}
}

func TestLoad_CustomWebPort(t *testing.T) {
	t.Setenv("WEB_PORT", "9090")

	cfg := Load()

	if cfg.Web.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Web.Port)
	}
}

func TestLoad_InvalidWebPort(t *testing.T) {
	t.Setenv("WEB_PORT", "not-a-port")

	cfg := Load()

	// Should fall back to default
	if cfg.Web.Port != 8080 {
		t.Errorf("expected default port 8080 for invalid input, got %d", cfg.Web.Port)
	}
}

func TestLoad_NegativeWebPort(t *testing.T) {
	t.Setenv("WEB_PORT", "-1")

	cfg := Load()

	if cfg.Web.Port != 8080 {
		t.Errorf("expected default port 8080 for negative input, got %d", cfg.Web.Port)
	}
}

func TestLoad_OpenAIConfig(t *testing.T) {
	t.Setenv("OPENAI_TOKEN", "sk-test-token-123")

	cfg := Load()

	if cfg.OpenAI.Token != "sk-test-token-123" {
		t.Errorf("expected OpenAI token 'sk-test-token-123', got '%s'", cfg.OpenAI.Token)
	}
}

func TestLoad_GeminiConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-api-key-456")

	cfg := Load()

	if cfg.Gemini.APIKey != "gemini-api-key-456" {
		t.Errorf("expected Gemini API key 'gemini-api-key-456', got '%s'", cfg.Gemini.APIKey)
	}
}

func TestLoad_OllamaConfig(t *testing.T) {
	t.Setenv("OLLAMA_URL", "http://localhost:11434")
	t.Setenv("OLLAMA_MODEL", "llava:13b")

	cfg := Load()

	if cfg.Ollama.URL != "http://localhost:11434" {
		t.Errorf("expected Ollama URL 'http://localhost:11434', got '%s'", cfg.Ollama.URL)
	}

	if cfg.Ollama.Model != "llava:13b" {
		t.Errorf("expected Ollama model 'llava:13b', got '%s'", cfg.Ollama.Model)
	}
}

func TestLoad_PricesLoaded(t *testing.T) {
	cfg := Load()

	// Verify prices were loaded from embedded YAML
	if len(cfg.Prices.Models) == 0 {
		t.Error("expected prices to be loaded from embedded YAML")
	}

	expectedModels := []string{"gpt-4.1-mini", "gemini-2.5-flash", "llava"}
	for _, model := range expectedModels {
		if _, ok := cfg.Prices.Models[model]; !ok {
			t.Errorf("expected model '%s' to be in prices", model)
		}
	}
}

func TestLoad_EmptyEnvVars(t *testing.T) {
	os.Unsetenv("OPENAI_TOKEN")
	os.Unsetenv("GEMINI_API_KEY")

	cfg := Load()

	// Should not panic, should return empty strings
	if cfg.OpenAI.Token != "" {
		t.Errorf("expected empty OpenAI token, got '%s'", cfg.OpenAI.Token)
	}

	if cfg.Gemini.APIKey != "" {
		t.Errorf("expected empty Gemini API key, got '%s'", cfg.Gemini.APIKey)
	}
}

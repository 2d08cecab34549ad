package ai

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/BlurryBat/photo-matcher/internal/config"
)

//go:embed prompts/person_match.txt
var personMatchPrompt string

// Provider defines the interface for vision model backends. A provider
// performs exactly one request per MatchPerson call: no retry, no streaming.
type Provider interface {
	Name() string
	// MatchPerson sends the reference photo plus the ordered group photos to
	// the model and returns its raw textual answer. The answer should be a
	// JSON array of 1-based group photo indices but is not guaranteed to be;
	// callers normalize it.
	MatchPerson(ctx context.Context, reference []byte, group [][]byte) (string, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"` // in USD
}

// RequestPricing holds input/output prices per 1M tokens.
type RequestPricing struct {
	Input  float64
	Output float64
}

// buildMatchPrompt fills the embedded prompt template with the group size.
func buildMatchPrompt(groupCount int) string {
	return fmt.Sprintf(personMatchPrompt, groupCount, groupCount)
}

// NewProvider constructs a provider by name. A non-empty token overrides any
// credential from the environment; hosted providers require one of the two.
func NewProvider(ctx context.Context, name, token string, cfg *config.Config) (Provider, error) {
	switch name {
	case "openai":
		if token == "" {
			token = cfg.OpenAI.Token
		}
		if token == "" {
			return nil, fmt.Errorf("no OpenAI token provided (form field or OPENAI_TOKEN)")
		}
		mp := cfg.GetModelPricing(chatModel)
		return NewOpenAIProvider(token, RequestPricing{Input: mp.Input, Output: mp.Output}), nil
	case "gemini":
		if token == "" {
			token = cfg.Gemini.APIKey
		}
		if token == "" {
			return nil, fmt.Errorf("no Gemini API key provided (form field or GEMINI_API_KEY)")
		}
		mp := cfg.GetModelPricing(geminiModel)
		return NewGeminiProvider(ctx, token, RequestPricing{Input: mp.Input, Output: mp.Output})
	case "ollama":
		return NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model), nil
	case "llamacpp":
		return NewLlamaCppProvider(cfg.LlamaCpp.URL, cfg.LlamaCpp.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q (expected openai, gemini, ollama or llamacpp)", name)
	}
}

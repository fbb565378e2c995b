// Package advice implements the text-generation collaborators used to turn a
// budget prompt into freeform advice.
package advice

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budgetcoach/pkg/budget"
)

// Generation parameters shared by every provider.
const (
	Temperature     = 0.4
	MaxOutputTokens = 500
)

// Provider names accepted by New.
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const (
	defaultGroqBaseURL    = "https://api.groq.com/openai/v1/"
	defaultGroqModel      = "llama-3.3-70b-versatile"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
	defaultGeminiModel    = "gemini-2.0-flash"
)

var (
	// ErrMissingAPIKey is returned by New when the provider credential is empty.
	ErrMissingAPIKey = errors.New("advice: api key is required")
	// ErrUnknownProvider is returned for provider names New does not know.
	ErrUnknownProvider = errors.New("advice: unknown provider")

	errEmptyResponse = errors.New("ai response has no choices")
)

var credentialEnvs = map[string]string{
	ProviderGroq:      "GROQ_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// NormalizeProvider lowercases name and maps empty to the default provider.
func NormalizeProvider(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return ProviderGroq
	}
	return normalized
}

// CredentialEnv returns the environment variable holding the provider key.
func CredentialEnv(provider string) (string, error) {
	env, ok := credentialEnvs[NormalizeProvider(provider)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return env, nil
}

// DefaultModel returns the model used when Settings.Model is empty.
func DefaultModel(provider string) string {
	switch NormalizeProvider(provider) {
	case ProviderOpenAI:
		return defaultOpenAIModel
	case ProviderAnthropic:
		return defaultAnthropicModel
	case ProviderGemini:
		return defaultGeminiModel
	default:
		return defaultGroqModel
	}
}

// New builds the generator for s.Provider, wrapped in a response cache when
// s.CacheTTL is positive.
func New(s Settings) (budget.AdviceGenerator, error) {
	s.Provider = NormalizeProvider(s.Provider)
	if _, ok := credentialEnvs[s.Provider]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, s.Provider)
	}
	s.APIKey = strings.TrimSpace(s.APIKey)
	if s.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	s.Model = strings.TrimSpace(s.Model)
	if s.Model == "" {
		s.Model = DefaultModel(s.Provider)
	}
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	if s.Logger == nil {
		s.Logger = slog.Default()
	}

	var (
		gen budget.AdviceGenerator
		err error
	)
	switch s.Provider {
	case ProviderGroq:
		gen = newOpenAIGenerator(s, defaultGroqBaseURL)
	case ProviderOpenAI:
		gen = newOpenAIGenerator(s, "")
	case ProviderAnthropic:
		gen = newAnthropicGenerator(s)
	case ProviderGemini:
		gen, err = newGeminiGenerator(s)
	}
	if err != nil {
		return nil, err
	}

	if s.CacheTTL > 0 {
		return NewCached(gen, s.Provider+"/"+s.Model, s.CacheTTL)
	}
	return gen, nil
}

func logPromptDebug(logger *slog.Logger, provider, model, prompt string) {
	logger.Debug("ai request prompt",
		"provider", provider,
		"model", model,
		"user_prompt", prompt,
	)
}

func logResponseDebug(logger *slog.Logger, provider, model, content string) {
	logger.Debug("ai raw response",
		"provider", provider,
		"model", model,
		"content_bytes", len(content),
		"content", content,
	)
}

func ensureTrailingSlash(baseURL string) string {
	if baseURL == "" || strings.HasSuffix(baseURL, "/") {
		return baseURL
	}
	return baseURL + "/"
}

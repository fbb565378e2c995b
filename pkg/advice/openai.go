package advice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIGenerator talks to any OpenAI-compatible chat completions endpoint,
// which covers both Groq and OpenAI.
type openAIGenerator struct {
	client   openai.Client
	provider string
	model    string
	logger   *slog.Logger
}

func newOpenAIGenerator(s Settings, defaultBaseURL string) *openAIGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(ensureTrailingSlash(baseURL)))
	}
	return &openAIGenerator{
		client:   openai.NewClient(opts...),
		provider: s.Provider,
		model:    s.Model,
		logger:   s.Logger,
	}
}

func (g *openAIGenerator) GenerateAdvice(ctx context.Context, prompt string) (string, error) {
	logPromptDebug(g.logger, g.provider, g.model, prompt)

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(Temperature),
		MaxTokens:   openai.Int(MaxOutputTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", g.provider, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion: %w", g.provider, errEmptyResponse)
	}

	content := completion.Choices[0].Message.Content
	logResponseDebug(g.logger, g.provider, g.model, content)
	return content, nil
}

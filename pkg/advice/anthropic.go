package advice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicGenerator struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

func newAnthropicGenerator(s Settings) *anthropicGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(ensureTrailingSlash(s.BaseURL)))
	}
	return &anthropicGenerator{
		client: anthropic.NewClient(opts...),
		model:  s.Model,
		logger: s.Logger,
	}
}

func (g *anthropicGenerator) GenerateAdvice(ctx context.Context, prompt string) (string, error) {
	logPromptDebug(g.logger, ProviderAnthropic, g.model, prompt)

	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   MaxOutputTokens,
		Temperature: anthropic.Float(Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages request failed: %w", err)
	}

	parts := make([]string, 0, len(message.Content))
	for _, block := range message.Content {
		if block.Type != "text" {
			continue
		}
		parts = append(parts, block.Text)
	}
	content := strings.Join(parts, "\n")
	logResponseDebug(g.logger, ProviderAnthropic, g.model, content)
	return content, nil
}

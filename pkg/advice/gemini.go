package advice

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"google.golang.org/genai"
)

type geminiGenerator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func newGeminiGenerator(s Settings) (*geminiGenerator, error) {
	config, err := buildGeminiClientConfig(s.BaseURL, s.APIKey)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	return &geminiGenerator{client: client, model: s.Model, logger: s.Logger}, nil
}

func (g *geminiGenerator) GenerateAdvice(ctx context.Context, prompt string) (string, error) {
	logPromptDebug(g.logger, ProviderGemini, g.model, prompt)

	response, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(Temperature)),
		MaxOutputTokens: MaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	content := response.Text()
	logResponseDebug(g.logger, ProviderGemini, g.model, content)
	return content, nil
}

// buildGeminiClientConfig splits an optional endpoint such as
// https://proxy.example.com/gemini/v1beta into base URL and API version.
func buildGeminiClientConfig(endpoint, apiKey string) (*genai.ClientConfig, error) {
	config := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	}
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return config, nil
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid gemini endpoint scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid gemini endpoint host")
	}

	apiVersion := "v1beta"
	var prefix []string
	for _, segment := range strings.Split(strings.Trim(parsed.Path, "/"), "/") {
		if segment == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(segment), "v1") {
			apiVersion = segment
			break
		}
		prefix = append(prefix, segment)
	}

	baseURL := fmt.Sprintf("%s://%s/", parsed.Scheme, parsed.Host)
	if len(prefix) > 0 {
		baseURL += strings.Join(prefix, "/") + "/"
	}
	config.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL, APIVersion: apiVersion}
	return config, nil
}

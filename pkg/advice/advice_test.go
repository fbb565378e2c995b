package advice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewValidatesSettings(t *testing.T) {
	t.Parallel()

	if _, err := New(Settings{Provider: "groq"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := New(Settings{Provider: "mystery", APIKey: "k"}); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}

	for _, provider := range []string{"", "GROQ", "openai", "anthropic", "gemini"} {
		gen, err := New(Settings{Provider: provider, APIKey: "key"})
		if err != nil {
			t.Fatalf("New(%q): %v", provider, err)
		}
		if gen == nil {
			t.Fatalf("New(%q) returned nil generator", provider)
		}
	}

	gen, err := New(Settings{APIKey: "key", CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("New with cache: %v", err)
	}
	if _, ok := gen.(*cachedGenerator); !ok {
		t.Fatalf("expected cached generator, got %T", gen)
	}
}

func TestCredentialEnv(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":          "GROQ_API_KEY",
		"groq":      "GROQ_API_KEY",
		" OpenAI ":  "OPENAI_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
		"gemini":    "GEMINI_API_KEY",
	}
	for provider, want := range tests {
		got, err := CredentialEnv(provider)
		if err != nil {
			t.Fatalf("CredentialEnv(%q): %v", provider, err)
		}
		if got != want {
			t.Fatalf("CredentialEnv(%q) = %q want %q", provider, got, want)
		}
	}
	if _, err := CredentialEnv("other"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if DefaultModel("") != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected default model %q", DefaultModel(""))
	}
}

func TestOpenAIGeneratorChatCompletion(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"llama-3.3-70b-versatile","choices":[{"index":0,"message":{"role":"assistant","content":"  **Reality Check:** tight.  "},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	gen, err := New(Settings{Provider: ProviderGroq, APIKey: "test-key", BaseURL: server.URL + "/openai/v1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	advice, err := gen.GenerateAdvice(context.Background(), "plan please")
	if err != nil {
		t.Fatalf("GenerateAdvice: %v", err)
	}
	if advice != "  **Reality Check:** tight.  " {
		t.Fatalf("unexpected advice %q", advice)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", hits.Load())
	}
	if payload["model"] != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected model %v", payload["model"])
	}
	if payload["temperature"] != 0.4 {
		t.Fatalf("unexpected temperature %v", payload["temperature"])
	}
	if payload["max_tokens"] != float64(500) {
		t.Fatalf("unexpected max_tokens %v", payload["max_tokens"])
	}
	messages, _ := payload["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("unexpected messages %v", payload["messages"])
	}
	first, _ := messages[0].(map[string]any)
	if first["role"] != "user" || first["content"] != "plan please" {
		t.Fatalf("unexpected message %v", first)
	}
}

func TestOpenAIGeneratorUpstreamErrorNotRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}))
	defer server.Close()

	gen, err := New(Settings{Provider: ProviderOpenAI, APIKey: "k", BaseURL: server.URL + "/v1/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = gen.GenerateAdvice(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "openai chat completion failed") {
		t.Fatalf("expected chat completion error, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected exactly one attempt, got %d", hits.Load())
	}
}

func TestOpenAIGeneratorEmptyChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer server.Close()

	gen, err := New(Settings{Provider: ProviderGroq, APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = gen.GenerateAdvice(context.Background(), "prompt")
	if !errors.Is(err, errEmptyResponse) {
		t.Fatalf("expected empty response error, got %v", err)
	}
}

func TestOpenAIGeneratorReturnsEmptyContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":""},"finish_reason":"length"}]}`))
	}))
	defer server.Close()

	gen, err := New(Settings{Provider: ProviderGroq, APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	advice, err := gen.GenerateAdvice(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateAdvice: %v", err)
	}
	if advice != "" {
		t.Fatalf("expected empty advice, got %q", advice)
	}
}

func TestAnthropicGeneratorMessages(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "anthropic-key" {
			t.Errorf("unexpected api key header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest","content":[{"type":"text","text":"Cut dining out."},{"type":"text","text":"Pay the card first."}],"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":12}}`))
	}))
	defer server.Close()

	gen, err := New(Settings{Provider: ProviderAnthropic, APIKey: "anthropic-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	advice, err := gen.GenerateAdvice(context.Background(), "plan")
	if err != nil {
		t.Fatalf("GenerateAdvice: %v", err)
	}
	if advice != "Cut dining out.\nPay the card first." {
		t.Fatalf("unexpected advice %q", advice)
	}
	if payload["max_tokens"] != float64(500) {
		t.Fatalf("unexpected max_tokens %v", payload["max_tokens"])
	}
	if payload["temperature"] != 0.4 {
		t.Fatalf("unexpected temperature %v", payload["temperature"])
	}
	if payload["model"] != "claude-3-5-haiku-latest" {
		t.Fatalf("unexpected model %v", payload["model"])
	}
}

func TestBuildGeminiClientConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		baseURL  string
		version  string
		wantErr  string
	}{
		{name: "empty keeps sdk defaults", endpoint: "", baseURL: "", version: ""},
		{name: "host only", endpoint: "https://proxy.example.com", baseURL: "https://proxy.example.com/", version: "v1beta"},
		{name: "with version", endpoint: "https://generativelanguage.googleapis.com/v1beta", baseURL: "https://generativelanguage.googleapis.com/", version: "v1beta"},
		{name: "prefix and version", endpoint: "proxy.example.com/gemini/v1", baseURL: "https://proxy.example.com/gemini/", version: "v1"},
		{name: "invalid scheme", endpoint: "ftp://example.com", wantErr: "invalid gemini endpoint scheme"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			config, err := buildGeminiClientConfig(tc.endpoint, " key ")
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error contains %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if config.APIKey != "key" {
				t.Fatalf("unexpected api key %q", config.APIKey)
			}
			if config.HTTPOptions.BaseURL != tc.baseURL || config.HTTPOptions.APIVersion != tc.version {
				t.Fatalf("got %q/%q want %q/%q", config.HTTPOptions.BaseURL, config.HTTPOptions.APIVersion, tc.baseURL, tc.version)
			}
		})
	}
}

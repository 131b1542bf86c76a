package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bhishma-ai/bhishma/config"
)

// ChatTurn is one message in a chat completion request.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter is the LLM boundary consumed by the chat service.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, messages []ChatTurn) (string, error)
}

// OpenAIClient calls the chat completions API over plain HTTP.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIClient builds a client from loaded configuration.
func NewOpenAIClient() *OpenAIClient {
	cfg := config.Get()
	return &OpenAIClient{
		baseURL:    strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		apiKey:     cfg.OpenAIAPIKey,
		model:      cfg.OpenAIModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether an API key is available.
func (c *OpenAIClient) Configured() bool {
	return c.apiKey != ""
}

type chatCompletionRequest struct {
	Model       string     `json:"model"`
	Messages    []ChatTurn `json:"messages"`
	MaxTokens   int        `json:"max_tokens,omitempty"`
	Temperature float64    `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ChatCompletion sends the message list and returns the first choice's text.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, messages []ChatTurn) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai api key not configured")
	}

	payload := chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   200,
		Temperature: 0.8,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("openai: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

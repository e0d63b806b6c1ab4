// Package openai completes prompts against any OpenAI-compatible chat
// completions endpoint (OpenAI, OpenRouter, vLLM).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	finishReasonLength = "length"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, options Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("openai model is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
		executor:   options.Executor,
	}, nil
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	payload := chatRequest{
		Model:       c.model,
		Messages:    buildMessages(req),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if len(req.ImageURLs) == 0 {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	response, err := resilience.Call(ctx, c.executor, "openai.chat", func(callCtx context.Context) (chatResponse, error) {
		return c.post(callCtx, payload)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return domain.Completion{}, resilience.WrapTemporary("openai chat", err, resilience.ClassifyHTTPError)
	}
	if len(response.Choices) == 0 {
		return domain.Completion{}, fmt.Errorf("openai chat: no completion choices returned")
	}

	choice := response.Choices[0]
	return domain.Completion{
		Text:             strings.TrimSpace(choice.Message.Content),
		Truncated:        choice.FinishReason == finishReasonLength,
		Model:            response.Model,
		PromptTokens:     response.Usage.PromptTokens,
		CompletionTokens: response.Usage.CompletionTokens,
	}, nil
}

func buildMessages(req domain.CompletionRequest) []message {
	messages := make([]message, 0, 2)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		messages = append(messages, message{Role: "system", Content: system})
	}
	if len(req.ImageURLs) == 0 {
		return append(messages, message{Role: "user", Content: req.TaskPrompt})
	}

	parts := make([]contentPart, 0, len(req.ImageURLs)+1)
	parts = append(parts, contentPart{Type: "text", Text: req.TaskPrompt})
	for _, url := range req.ImageURLs {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: url}})
	}
	return append(messages, message{Role: "user", Content: parts})
}

func (c *Client) post(ctx context.Context, payload chatRequest) (chatResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return chatResponse{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return chatResponse{}, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chatResponse{}, fmt.Errorf("openai chat request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return chatResponse{}, resilience.NewHTTPStatusError("openai", "chat", resp)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chatResponse{}, fmt.Errorf("decode chat response: %w", err)
	}
	return out, nil
}

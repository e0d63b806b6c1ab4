package ollama

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/resilience"
)

const doneReasonLength = "length"

// Client completes prompts against a local Ollama server via /api/chat.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
	logger     *slog.Logger
}

type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Executor   *resilience.Executor
	Logger     *slog.Logger
}

func New(baseURL, model string, options Options) *Client {
	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
		executor:   options.Executor,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	DoneReason      string      `json:"done_reason"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	payload := chatRequest{
		Model:    c.model,
		Messages: c.buildMessages(ctx, req),
		Stream:   false,
		Format:   "json",
		Options: chatOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}

	response, err := resilience.Call(ctx, c.executor, "ollama.chat", func(callCtx context.Context) (chatResponse, error) {
		return c.doChat(callCtx, payload)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return domain.Completion{}, resilience.WrapTemporary("ollama chat", err, resilience.ClassifyHTTPError)
	}

	return domain.Completion{
		Text:             strings.TrimSpace(response.Message.Content),
		Truncated:        response.DoneReason == doneReasonLength,
		Model:            response.Model,
		PromptTokens:     response.PromptEvalCount,
		CompletionTokens: response.EvalCount,
	}, nil
}

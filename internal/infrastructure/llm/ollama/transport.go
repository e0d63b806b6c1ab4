package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kirillkom/shape-stylist/internal/infrastructure/resilience"
)

const chatPath = "/api/chat"

func (c *Client) newChatRequest(ctx context.Context, payload chatRequest) (*http.Request, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode chat payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doChat sends one non-streaming chat call. Non-2xx answers surface as
// resilience.HTTPStatusError so the breaker can classify them.
func (c *Client) doChat(ctx context.Context, payload chatRequest) (chatResponse, error) {
	var out chatResponse
	req, err := c.newChatRequest(ctx, payload)
	if err != nil {
		return out, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("ollama chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, resilience.NewHTTPStatusError("ollama", "chat", resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("ollama chat: decode body: %w", err)
	}
	return out, nil
}

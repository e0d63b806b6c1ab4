package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

const maxImageBytes = 4 << 20

func (c *Client) buildMessages(ctx context.Context, req domain.CompletionRequest) []chatMessage {
	messages := make([]chatMessage, 0, 2)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	user := chatMessage{Role: "user", Content: req.TaskPrompt}
	if len(req.ImageURLs) > 0 {
		user.Images = c.fetchImages(ctx, req.ImageURLs)
	}
	return append(messages, user)
}

// fetchImages downloads product images and base64-encodes them; Ollama does
// not accept remote URLs. Images that fail to load are skipped.
func (c *Client) fetchImages(ctx context.Context, urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		data, err := c.fetchImage(ctx, url)
		if err != nil {
			c.logger.Warn("ollama_image_skipped", "url", url, "error", err)
			continue
		}
		out = append(out, base64.StdEncoding.EncodeToString(data))
	}
	return out
}

func (c *Client) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch image status: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return data, nil
}

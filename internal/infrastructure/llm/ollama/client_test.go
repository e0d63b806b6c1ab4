package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
			_, _ = w.Write([]byte(`{"model":"llava","message":{"role":"assistant","content":" {\"recommendations\":[]} "},"done_reason":"stop","prompt_eval_count":120,"eval_count":12}`))
		case "/img.jpg":
			_, _ = w.Write([]byte("jpeg-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "llava", Options{})
	got, err := client.Complete(context.Background(), domain.CompletionRequest{
		SystemPrompt: "system",
		TaskPrompt:   "task",
		Temperature:  0.4,
		MaxTokens:    256,
		ImageURLs:    []string{server.URL + "/img.jpg", server.URL + "/missing.jpg"},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got.Text != `{"recommendations":[]}` || got.Truncated || got.Model != "llava" || got.PromptTokens != 120 {
		t.Fatalf("unexpected completion: %+v", got)
	}
	if captured.Model != "llava" || captured.Stream || captured.Format != "json" {
		t.Fatalf("unexpected request: %+v", captured)
	}
	if captured.Options.Temperature != 0.4 || captured.Options.NumPredict != 256 {
		t.Fatalf("unexpected options: %+v", captured.Options)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != "task" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
	images := captured.Messages[1].Images
	if len(images) != 1 || images[0] != base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")) {
		t.Fatalf("expected one encoded image, got %v", images)
	}
}

func TestCompleteReportsLengthTruncation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model":"m","message":{"content":"{\"recommendations\":[{\"index\":0"},"done_reason":"length"}`))
	}))
	defer server.Close()

	got, err := New(server.URL, "m", Options{}).Complete(context.Background(), domain.CompletionRequest{TaskPrompt: "x"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !got.Truncated {
		t.Fatalf("expected truncated completion")
	}
}

func TestCompleteIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, "m", Options{}).Complete(context.Background(), domain.CompletionRequest{TaskPrompt: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary kind for 502, got %v", err)
	}
}

package domain

type CompletionRequest struct {
	SystemPrompt string
	TaskPrompt   string
	Temperature  float64
	MaxTokens    int
	ImageURLs    []string
}

type Completion struct {
	Text             string
	Truncated        bool
	Model            string
	PromptTokens     int
	CompletionTokens int
}

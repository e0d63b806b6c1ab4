package domain

type RecommendationSource string

const (
	SourceAI        RecommendationSource = "ai"
	SourceAlgorithm RecommendationSource = "algorithm"
)

type Recommendation struct {
	Product         Product `json:"product"`
	Score           int     `json:"suitability_score"`
	RecommendedSize string  `json:"recommended_size"`
	Reasoning       string  `json:"reasoning"`
	Category        string  `json:"category"`
	StylingTip      string  `json:"styling_tip"`
}

// AIOptions overrides the default prompts and sampling for one request.
type AIOptions struct {
	SystemPrompt string  `json:"system_prompt,omitempty"`
	TaskPrompt   string  `json:"task_prompt,omitempty"`
	Temperature  float64 `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	MaxTokens    int     `json:"max_tokens,omitempty" validate:"gte=0"`
}

type RecommendationRequest struct {
	Shape         string        `json:"shape"`
	Measurements  *Measurements `json:"measurements,omitempty"`
	ColorSeason   string        `json:"color_season,omitempty" validate:"omitempty,oneof=spring summer autumn winter"`
	Count         int           `json:"count" validate:"gte=0,lte=50"`
	MinScore      int           `json:"min_score" validate:"gte=0,lte=100"`
	StockOnly     bool          `json:"stock_only"`
	AIEnabled     bool          `json:"ai_enabled"`
	ImageAnalysis bool          `json:"image_analysis"`
	SampleCap     int           `json:"-"`
	AI            AIOptions     `json:"ai"`
}

type RecommendationResult struct {
	Recommendations []Recommendation     `json:"recommendations"`
	Source          RecommendationSource `json:"source"`
	FallbackReason  string               `json:"fallback_reason,omitempty"`
	Truncated       bool                 `json:"truncated,omitempty"`
	Scanned         int                  `json:"scanned"`
}

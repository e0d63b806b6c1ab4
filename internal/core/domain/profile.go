package domain

import "time"

type BodyProfile struct {
	ID           string          `json:"id"`
	Shop         string          `json:"shop"`
	CustomerID   string          `json:"customer_id"`
	Measurements Measurements    `json:"measurements"`
	Result       BodyShapeResult `json:"result"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductShapeScore is one row of a bulk catalog analysis.
type ProductShapeScore struct {
	Shop         string               `json:"shop"`
	ProductID    string               `json:"product_id"`
	ProductTitle string               `json:"product_title"`
	Shape        string               `json:"shape"`
	Score        int                  `json:"score"`
	Reasoning    string               `json:"reasoning"`
	Source       RecommendationSource `json:"source"`
	AnalyzedAt   time.Time            `json:"analyzed_at"`
}

type CatalogAnalysisSummary struct {
	Shop          string        `json:"shop"`
	Products      int           `json:"products"`
	AICalls       int           `json:"ai_calls"`
	FallbackCalls int           `json:"fallback_calls"`
	Rows          int           `json:"rows"`
	Duration      time.Duration `json:"duration"`
}

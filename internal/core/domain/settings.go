package domain

// Settings are the per-shop recommendation options.
type Settings struct {
	NumberOfSuggestions int  `json:"number_of_suggestions" yaml:"number_of_suggestions" validate:"gte=1,lte=50"`
	MinimumMatchScore   int  `json:"minimum_match_score" yaml:"minimum_match_score" validate:"gte=0,lte=100"`
	MaxProductsToScan   int  `json:"max_products_to_scan" yaml:"max_products_to_scan" validate:"gte=0"`
	OnlyInStockProducts bool `json:"only_in_stock_products" yaml:"only_in_stock_products"`
	EnableImageAnalysis bool `json:"enable_image_analysis" yaml:"enable_image_analysis"`
	EnableAI            bool `json:"enable_ai" yaml:"enable_ai"`
}

func DefaultSettings() Settings {
	return Settings{
		NumberOfSuggestions: 10,
		MinimumMatchScore:   60,
		MaxProductsToScan:   0,
		OnlyInStockProducts: true,
		EnableImageAnalysis: false,
		EnableAI:            true,
	}
}

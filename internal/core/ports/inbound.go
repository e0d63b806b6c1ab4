package ports

import (
	"context"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

// BodyShapeService is the inbound contract for classification and profile storage.
type BodyShapeService interface {
	Classify(ctx context.Context, shop, customerID string, m domain.Measurements) (*domain.BodyProfile, error)
	GetProfile(ctx context.Context, shop, customerID string) (*domain.BodyProfile, error)
}

// ShopRecommender runs the full fetch, filter and rank pipeline for a shop.
type ShopRecommender interface {
	RecommendForShop(ctx context.Context, shop, customerID string, req domain.RecommendationRequest) (*domain.RecommendationResult, error)
}

// SettingsService reads and updates per-shop recommendation settings.
type SettingsService interface {
	Get(ctx context.Context, shop string) (domain.Settings, error)
	Put(ctx context.Context, shop string, settings domain.Settings) (domain.Settings, error)
}

// CatalogAnalyzer runs and exports the bulk catalog analysis.
type CatalogAnalyzer interface {
	Enqueue(ctx context.Context, shop string) error
	AnalyzeCatalog(ctx context.Context, shop string) (*domain.CatalogAnalysisSummary, error)
	Export(ctx context.Context, shop string) ([]byte, error)
}

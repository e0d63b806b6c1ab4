package ports

import (
	"context"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

// CatalogProvider returns a materialized product snapshot for a shop.
type CatalogProvider interface {
	ListProducts(ctx context.Context, shop string) ([]domain.Product, error)
}

// AICompleter is the single language-model collaborator.
type AICompleter interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error)
}

// SettingsStore persists per-shop settings.
type SettingsStore interface {
	Load(ctx context.Context, shop string) (domain.Settings, error)
	Save(ctx context.Context, shop string, settings domain.Settings) error
}

// ProfileStore persists classified body profiles.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile *domain.BodyProfile) error
	GetProfile(ctx context.Context, shop, customerID string) (*domain.BodyProfile, error)
}

// AnalysisStore persists bulk catalog analysis rows.
type AnalysisStore interface {
	ReplaceAnalysis(ctx context.Context, shop string, rows []domain.ProductShapeScore) error
	ListAnalysis(ctx context.Context, shop string) ([]domain.ProductShapeScore, error)
}

// AnalysisQueue publishes/consumes catalog analysis jobs.
type AnalysisQueue interface {
	PublishAnalysisRequested(ctx context.Context, shop string) error
	SubscribeAnalysisRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// ReportWriter renders analysis rows into a downloadable document.
type ReportWriter interface {
	WriteAnalysis(shop string, rows []domain.ProductShapeScore) ([]byte, error)
}

// Scorer is the deterministic suitability strategy. Scores are in [0,1].
type Scorer interface {
	Score(product domain.Product, shape string) float64
}

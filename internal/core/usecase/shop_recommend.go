package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/core/ports"
)

const FallbackCatalogUnavailable = "catalog_unavailable"

// ShopRecommendationUseCase fetches a shop's catalog snapshot, filters it for
// the shape and hands it to the orchestrator.
type ShopRecommendationUseCase struct {
	catalog      ports.CatalogProvider
	settings     ports.SettingsStore
	profiles     ports.ProfileStore
	filter       *CatalogFilter
	orchestrator *RecommendationOrchestrator
	logger       *slog.Logger
}

func NewShopRecommendationUseCase(
	catalog ports.CatalogProvider,
	settings ports.SettingsStore,
	profiles ports.ProfileStore,
	filter *CatalogFilter,
	orchestrator *RecommendationOrchestrator,
	logger *slog.Logger,
) *ShopRecommendationUseCase {
	if filter == nil {
		filter = NewCatalogFilter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ShopRecommendationUseCase{
		catalog:      catalog,
		settings:     settings,
		profiles:     profiles,
		filter:       filter,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func (uc *ShopRecommendationUseCase) RecommendForShop(
	ctx context.Context,
	shop, customerID string,
	req domain.RecommendationRequest,
) (*domain.RecommendationResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate recommendation request", err)
	}
	settings := uc.loadSettings(ctx, shop)
	req = applySettings(req, settings)

	req, err := uc.resolveShape(ctx, shop, customerID, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	products, err := uc.catalog.ListProducts(ctx, shop)
	if err != nil {
		uc.logger.Warn("catalog_unavailable", "shop", shop, "error", domain.WrapError(domain.ErrCatalogUnavailable, "list products", err))
		return emptyResult(FallbackCatalogUnavailable), nil
	}

	filtered := uc.filter.Filter(products, req.Shape, req.StockOnly)
	uc.logger.Debug("catalog_filtered",
		"shop", shop,
		"shape", req.Shape,
		"fetched", len(products),
		"kept", len(filtered),
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	if len(filtered) == 0 {
		return emptyResult(FallbackEmptyCatalog), nil
	}
	// MaxProductsToScan of 0 scans the whole filtered catalog.
	if settings.MaxProductsToScan > 0 {
		filtered = uc.filter.Sample(filtered, settings.MaxProductsToScan)
	}

	result := uc.orchestrator.Recommend(ctx, req, filtered)
	return &result, nil
}

func (uc *ShopRecommendationUseCase) loadSettings(ctx context.Context, shop string) domain.Settings {
	if uc.settings == nil {
		return domain.DefaultSettings()
	}
	settings, err := uc.settings.Load(ctx, shop)
	if err != nil {
		uc.logger.Warn("settings_load_failed", "shop", shop, "error", err)
		return domain.DefaultSettings()
	}
	return settings
}

func (uc *ShopRecommendationUseCase) resolveShape(
	ctx context.Context,
	shop, customerID string,
	req domain.RecommendationRequest,
) (domain.RecommendationRequest, error) {
	req.Shape = strings.TrimSpace(req.Shape)
	if req.Shape == "" && customerID != "" && uc.profiles != nil {
		profile, err := uc.profiles.GetProfile(ctx, shop, customerID)
		if err != nil {
			return req, fmt.Errorf("load body profile: %w", err)
		}
		req.Shape = profile.Result.Shape
		if req.Measurements == nil {
			m := profile.Measurements
			req.Measurements = &m
		}
	}
	if req.Shape == "" {
		return req, domain.WrapError(domain.ErrInvalidInput, "recommend", fmt.Errorf("shape or a saved customer profile is required"))
	}
	shape, ok := domain.CanonicalShape(req.Shape)
	if !ok {
		return req, domain.WrapError(domain.ErrInvalidInput, "recommend", fmt.Errorf("unknown body shape %q", req.Shape))
	}
	req.Shape = shape
	return req, nil
}

// applySettings fills unset request fields from the shop settings.
func applySettings(req domain.RecommendationRequest, settings domain.Settings) domain.RecommendationRequest {
	if req.Count <= 0 {
		req.Count = settings.NumberOfSuggestions
	}
	if req.MinScore <= 0 {
		req.MinScore = settings.MinimumMatchScore
	}
	req.StockOnly = req.StockOnly || settings.OnlyInStockProducts
	req.ImageAnalysis = req.ImageAnalysis || settings.EnableImageAnalysis
	req.AIEnabled = req.AIEnabled && settings.EnableAI
	if req.SampleCap <= 0 {
		req.SampleCap = settings.MaxProductsToScan
	}
	return req
}

func emptyResult(reason string) *domain.RecommendationResult {
	return &domain.RecommendationResult{
		Recommendations: []domain.Recommendation{},
		Source:          domain.SourceAlgorithm,
		FallbackReason:  reason,
	}
}

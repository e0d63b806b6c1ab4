package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/core/ports"
)

const (
	FallbackAIDisabled      = "ai_disabled"
	FallbackAINotConfigured = "ai_not_configured"
	FallbackAIError         = "ai_error"
	FallbackAIMalformed     = "ai_malformed"
	FallbackAIEmpty         = "ai_empty"
	FallbackEmptyCatalog    = "empty_catalog"
	FallbackNoCount         = "no_count"
)

type OrchestratorConfig struct {
	SampleCap   int
	Temperature float64
	MaxTokens   int
	AITimeout   time.Duration
}

func (c OrchestratorConfig) normalize() OrchestratorConfig {
	out := c
	if out.SampleCap <= 0 {
		out.SampleCap = 500
	}
	if out.Temperature <= 0 {
		out.Temperature = 0.7
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = 4000
	}
	if out.AITimeout <= 0 {
		out.AITimeout = 60 * time.Second
	}
	return out
}

// RecommendationOrchestrator ranks a filtered catalog with the AI collaborator
// and degrades to the deterministic scorer on any failure.
type RecommendationOrchestrator struct {
	ai     ports.AICompleter
	scorer *SuitabilityScorer
	filter *CatalogFilter
	cfg    OrchestratorConfig
	logger *slog.Logger
}

// NewRecommendationOrchestrator accepts a nil ai client, meaning no credential is configured.
func NewRecommendationOrchestrator(
	ai ports.AICompleter,
	scorer *SuitabilityScorer,
	filter *CatalogFilter,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) *RecommendationOrchestrator {
	if scorer == nil {
		scorer = NewSuitabilityScorer(nil)
	}
	if filter == nil {
		filter = NewCatalogFilter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendationOrchestrator{
		ai:     ai,
		scorer: scorer,
		filter: filter,
		cfg:    cfg.normalize(),
		logger: logger,
	}
}

// Recommend never fails: every AI problem resolves to the scorer ranking.
func (o *RecommendationOrchestrator) Recommend(ctx context.Context, req domain.RecommendationRequest, products []domain.Product) domain.RecommendationResult {
	count := req.Count
	minScore := clampScore(req.MinScore)

	if count <= 0 {
		return domain.RecommendationResult{
			Recommendations: []domain.Recommendation{},
			Source:          domain.SourceAlgorithm,
			FallbackReason:  FallbackNoCount,
		}
	}
	if len(products) == 0 {
		return domain.RecommendationResult{
			Recommendations: []domain.Recommendation{},
			Source:          domain.SourceAlgorithm,
			FallbackReason:  FallbackEmptyCatalog,
		}
	}
	if !req.AIEnabled {
		return o.fallback(req, products, count, minScore, FallbackAIDisabled, false)
	}
	if o.ai == nil {
		return o.fallback(req, products, count, minScore, FallbackAINotConfigured, false)
	}

	// SampleCap bounds the prompt only; the deployment cap applies when the
	// request sets none.
	sampleCap := o.cfg.SampleCap
	if req.SampleCap > 0 {
		sampleCap = req.SampleCap
	}
	candidates := o.filter.Sample(products, sampleCap)

	completion, err := o.complete(ctx, req, candidates, count, minScore)
	if err != nil {
		o.logger.Warn("recommendation_ai_failed", "shape", req.Shape, "candidates", len(candidates), "error", err)
		return o.fallback(req, products, count, minScore, FallbackAIError, false)
	}
	if completion.Truncated {
		o.logger.Warn("ai_response_truncated", "shape", req.Shape, "model", completion.Model, "completion_tokens", completion.CompletionTokens)
	}

	entries, salvaged, err := parseRecommendationResponse(completion.Text)
	if err != nil {
		o.logger.Warn("recommendation_ai_malformed", "shape", req.Shape, "truncated", completion.Truncated, "error", err)
		return o.fallback(req, products, count, minScore, FallbackAIMalformed, completion.Truncated)
	}
	if salvaged {
		o.logger.Info("ai_response_salvaged", "shape", req.Shape, "entries", len(entries))
	}

	recs := o.acceptEntries(req.Shape, entries, candidates, count, minScore)
	if len(recs) == 0 {
		o.logger.Warn("recommendation_ai_empty", "shape", req.Shape, "entries", len(entries))
		return o.fallback(req, products, count, minScore, FallbackAIEmpty, completion.Truncated)
	}

	return domain.RecommendationResult{
		Recommendations: recs,
		Source:          domain.SourceAI,
		Truncated:       completion.Truncated,
		Scanned:         len(candidates),
	}
}

func (o *RecommendationOrchestrator) complete(
	ctx context.Context,
	req domain.RecommendationRequest,
	candidates []domain.Product,
	count, minScore int,
) (domain.Completion, error) {
	temperature := o.cfg.Temperature
	if req.AI.Temperature > 0 {
		temperature = req.AI.Temperature
	}
	maxTokens := o.cfg.MaxTokens
	if req.AI.MaxTokens > 0 {
		maxTokens = req.AI.MaxTokens
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.AITimeout)
	defer cancel()

	completion, err := o.ai.Complete(callCtx, domain.CompletionRequest{
		SystemPrompt: systemPromptFor(req),
		TaskPrompt:   buildRecommendationPrompt(req, candidates, count, minScore),
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		ImageURLs:    promptImages(req, candidates),
	})
	if err != nil {
		return domain.Completion{}, domain.WrapError(domain.ErrAIInvocation, "complete recommendations", err)
	}
	return completion, nil
}

// acceptEntries drops invalid, low-score and duplicate entries (first
// occurrence wins), enriches the rest from the scorer and truncates to count.
func (o *RecommendationOrchestrator) acceptEntries(
	shape string,
	entries []aiRecommendation,
	candidates []domain.Product,
	count, minScore int,
) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, count)
	seenIndex := make(map[int]struct{}, len(entries))
	seenProduct := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if len(out) >= count {
			break
		}
		if err := entryRejection(entry, len(candidates), minScore, seenIndex); err != nil {
			o.logger.Debug("recommendation_entry_dropped", "shape", shape, "error", err)
			continue
		}
		idx := int(*entry.Index)
		seenIndex[idx] = struct{}{}

		product := candidates[idx]
		if _, dup := seenProduct[product.ID]; dup {
			continue
		}
		seenProduct[product.ID] = struct{}{}

		score := entry.Score.percent()
		category := normalizeCategory(entry.Category)
		if category == "" {
			category = o.scorer.Category(product)
		}
		size := strings.TrimSpace(entry.SizeAdvice)
		if size == "" {
			size = o.scorer.SizeAdvice(shape, category)
		}
		reasoning := strings.TrimSpace(entry.Reasoning)
		if reasoning == "" {
			reasoning = o.scorer.Reasoning(product, shape, float64(score)/100)
		}
		tip := strings.TrimSpace(entry.StylingTip)
		if tip == "" {
			tip = o.scorer.StylingTip(category)
		}

		out = append(out, domain.Recommendation{
			Product:         product,
			Score:           score,
			RecommendedSize: size,
			Reasoning:       reasoning,
			Category:        category,
			StylingTip:      tip,
		})
	}
	return out
}

func (o *RecommendationOrchestrator) fallback(
	req domain.RecommendationRequest,
	products []domain.Product,
	count, minScore int,
	reason string,
	truncated bool,
) domain.RecommendationResult {
	o.logger.Info("recommendation_fallback", "shape", req.Shape, "reason", reason, "products", len(products))
	return domain.RecommendationResult{
		Recommendations: o.scorer.Rank(products, req.Shape, count, minScore),
		Source:          domain.SourceAlgorithm,
		FallbackReason:  reason,
		Truncated:       truncated,
		Scanned:         len(products),
	}
}

func normalizeCategory(category string) string {
	switch c := strings.ToLower(strings.TrimSpace(category)); c {
	case CategoryDresses, CategoryTops, CategoryBottoms, CategoryGeneral:
		return c
	default:
		return ""
	}
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

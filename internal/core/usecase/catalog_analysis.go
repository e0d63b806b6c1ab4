package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/core/jsonrepair"
	"github.com/kirillkom/shape-stylist/internal/core/ports"
)

const analysisSystemPrompt = `You are an expert fashion stylist. Rate how well a single garment suits each body shape.
Respond with JSON only.`

// AnalysisPacing throttles bulk AI usage: after every Every calls the
// analyzer waits Delay before the next one.
type AnalysisPacing struct {
	Every int
	Delay time.Duration
}

type CatalogAnalysisUseCase struct {
	catalog ports.CatalogProvider
	ai      ports.AICompleter
	scorer  *SuitabilityScorer
	store   ports.AnalysisStore
	queue   ports.AnalysisQueue
	report  ports.ReportWriter
	pacing  AnalysisPacing
	cfg     OrchestratorConfig
	logger  *slog.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

func NewCatalogAnalysisUseCase(
	catalog ports.CatalogProvider,
	ai ports.AICompleter,
	scorer *SuitabilityScorer,
	store ports.AnalysisStore,
	queue ports.AnalysisQueue,
	report ports.ReportWriter,
	pacing AnalysisPacing,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) *CatalogAnalysisUseCase {
	if scorer == nil {
		scorer = NewSuitabilityScorer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogAnalysisUseCase{
		catalog: catalog,
		ai:      ai,
		scorer:  scorer,
		store:   store,
		queue:   queue,
		report:  report,
		pacing:  pacing,
		cfg:     cfg.normalize(),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		sleep:   sleepContext,
	}
}

func (uc *CatalogAnalysisUseCase) Enqueue(ctx context.Context, shop string) error {
	if strings.TrimSpace(shop) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "enqueue analysis", fmt.Errorf("shop is required"))
	}
	if err := uc.queue.PublishAnalysisRequested(ctx, shop); err != nil {
		return domain.WrapError(domain.ErrTemporary, "enqueue analysis", err)
	}
	return nil
}

// AnalyzeCatalog scores every in-stock product against every known shape and
// replaces the shop's stored analysis. Products the AI cannot rate use the scorer.
func (uc *CatalogAnalysisUseCase) AnalyzeCatalog(ctx context.Context, shop string) (*domain.CatalogAnalysisSummary, error) {
	start := time.Now()
	products, err := uc.catalog.ListProducts(ctx, shop)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCatalogUnavailable, "analyze catalog", err)
	}

	products = inStockOnly(products)
	summary := &domain.CatalogAnalysisSummary{Shop: shop, Products: len(products)}
	rows := make([]domain.ProductShapeScore, 0, len(products)*len(domain.KnownShapes))
	analyzedAt := uc.now()

	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if uc.ai != nil {
			if err := uc.pace(ctx, summary.AICalls); err != nil {
				return nil, err
			}
			summary.AICalls++
			aiRows, err := uc.analyzeWithAI(ctx, shop, product, analyzedAt)
			if err == nil {
				rows = append(rows, aiRows...)
				continue
			}
			uc.logger.Warn("product_analysis_ai_failed", "shop", shop, "product_id", product.ID, "error", err)
		}

		summary.FallbackCalls++
		rows = append(rows, uc.analyzeWithScorer(shop, product, analyzedAt)...)
	}

	if err := uc.store.ReplaceAnalysis(ctx, shop, rows); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}

	summary.Rows = len(rows)
	summary.Duration = time.Since(start)
	return summary, nil
}

func (uc *CatalogAnalysisUseCase) Export(ctx context.Context, shop string) ([]byte, error) {
	rows, err := uc.store.ListAnalysis(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("list analysis: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.ErrNotFound, "export analysis", fmt.Errorf("no analysis for shop %q", shop))
	}
	data, err := uc.report.WriteAnalysis(shop, rows)
	if err != nil {
		return nil, fmt.Errorf("render analysis: %w", err)
	}
	return data, nil
}

func (uc *CatalogAnalysisUseCase) pace(ctx context.Context, callsSoFar int) error {
	if uc.pacing.Every <= 0 || uc.pacing.Delay <= 0 || callsSoFar == 0 {
		return nil
	}
	if callsSoFar%uc.pacing.Every != 0 {
		return nil
	}
	return uc.sleep(ctx, uc.pacing.Delay)
}

type aiShapeScore struct {
	Shape     string  `json:"shape"`
	Score     aiScore `json:"score"`
	Reasoning string  `json:"reasoning"`
}

type aiShapeEnvelope struct {
	Shapes []aiShapeScore `json:"shapes"`
}

func (uc *CatalogAnalysisUseCase) analyzeWithAI(
	ctx context.Context,
	shop string,
	product domain.Product,
	analyzedAt time.Time,
) ([]domain.ProductShapeScore, error) {
	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.AITimeout)
	defer cancel()

	completion, err := uc.ai.Complete(callCtx, domain.CompletionRequest{
		SystemPrompt: analysisSystemPrompt,
		TaskPrompt:   buildAnalysisPrompt(product),
		Temperature:  uc.cfg.Temperature,
		MaxTokens:    uc.cfg.MaxTokens,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrAIInvocation, "analyze product", err)
	}

	var envelope aiShapeEnvelope
	if _, err := jsonrepair.Decode(completion.Text, &envelope); err != nil {
		return nil, domain.WrapError(domain.ErrAIResponseMalformed, "analyze product", err)
	}

	rows := make([]domain.ProductShapeScore, 0, len(envelope.Shapes))
	seen := make(map[string]struct{}, len(envelope.Shapes))
	for _, entry := range envelope.Shapes {
		shape, ok := domain.CanonicalShape(entry.Shape)
		if !ok || len(domain.ShapeComponents(shape)) != 1 {
			continue
		}
		if _, dup := seen[shape]; dup {
			continue
		}
		seen[shape] = struct{}{}

		reasoning := strings.TrimSpace(entry.Reasoning)
		if reasoning == "" {
			reasoning = uc.scorer.Reasoning(product, shape, float64(entry.Score.percent())/100)
		}
		rows = append(rows, domain.ProductShapeScore{
			Shop:         shop,
			ProductID:    product.ID,
			ProductTitle: product.Title,
			Shape:        shape,
			Score:        entry.Score.percent(),
			Reasoning:    reasoning,
			Source:       domain.SourceAI,
			AnalyzedAt:   analyzedAt,
		})
	}
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.ErrRecommendationInvalid, "analyze product", fmt.Errorf("no usable shape scores"))
	}
	return rows, nil
}

func (uc *CatalogAnalysisUseCase) analyzeWithScorer(shop string, product domain.Product, analyzedAt time.Time) []domain.ProductShapeScore {
	rows := make([]domain.ProductShapeScore, 0, len(domain.KnownShapes))
	for _, shape := range domain.KnownShapes {
		raw := uc.scorer.Score(product, shape)
		rows = append(rows, domain.ProductShapeScore{
			Shop:         shop,
			ProductID:    product.ID,
			ProductTitle: product.Title,
			Shape:        shape,
			Score:        ToPercent(raw),
			Reasoning:    uc.scorer.Reasoning(product, shape, raw),
			Source:       domain.SourceAlgorithm,
			AnalyzedAt:   analyzedAt,
		})
	}
	return rows
}

func inStockOnly(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if product.Available() {
			out = append(out, product)
		}
	}
	return out
}

func buildAnalysisPrompt(product domain.Product) string {
	var b strings.Builder
	b.WriteString("Rate this product for each body shape on a 0-100 scale.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", product.Title)
	fmt.Fprintf(&b, "Type: %s\n", valueOr(product.ProductType, "unknown"))
	fmt.Fprintf(&b, "Tags: %s\n", valueOr(strings.Join(product.Tags, ", "), "none"))
	fmt.Fprintf(&b, "Description: %s\n\n", truncateRunes(product.Description, 400))
	b.WriteString("Body shapes: ")
	b.WriteString(strings.Join(domain.KnownShapes, ", "))
	b.WriteString("\n\nRespond with exactly this JSON shape and nothing else:\n")
	b.WriteString(`{"shapes":[{"shape":"Hourglass","score":85,"reasoning":"..."}]}`)
	return b.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

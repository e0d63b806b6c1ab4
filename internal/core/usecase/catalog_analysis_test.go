package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

type analysisStoreFake struct {
	rows map[string][]domain.ProductShapeScore
	err  error
}

func (f *analysisStoreFake) ReplaceAnalysis(_ context.Context, shop string, rows []domain.ProductShapeScore) error {
	if f.err != nil {
		return f.err
	}
	if f.rows == nil {
		f.rows = make(map[string][]domain.ProductShapeScore)
	}
	f.rows[shop] = append([]domain.ProductShapeScore(nil), rows...)
	return nil
}

func (f *analysisStoreFake) ListAnalysis(_ context.Context, shop string) ([]domain.ProductShapeScore, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[shop], nil
}

type analysisQueueFake struct {
	published []string
	err       error
}

func (f *analysisQueueFake) PublishAnalysisRequested(_ context.Context, shop string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, shop)
	return nil
}

func (f *analysisQueueFake) SubscribeAnalysisRequested(context.Context, func(context.Context, string) error) error {
	return nil
}

type reportWriterFake struct {
	rows int
}

func (f *reportWriterFake) WriteAnalysis(_ string, rows []domain.ProductShapeScore) ([]byte, error) {
	f.rows = len(rows)
	return []byte("xlsx"), nil
}

type sequenceCompleterFake struct {
	replies []string
	calls   int
}

func (f *sequenceCompleterFake) Complete(context.Context, domain.CompletionRequest) (domain.Completion, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.replies) || f.replies[idx] == "" {
		return domain.Completion{}, errors.New("model unavailable")
	}
	return domain.Completion{Text: f.replies[idx]}, nil
}

func analysisProducts(n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, inStock(domain.Product{ID: string(rune('a' + i)), Title: "Wrap Dress", ProductType: "Dress"}))
	}
	return out
}

func TestAnalyzeCatalogMixesAIAndFallback(t *testing.T) {
	ai := &sequenceCompleterFake{replies: []string{
		`{"shapes":[{"shape":"hourglass","score":91,"reasoning":"Defines the waist"},{"shape":"Diamond","score":50},{"shape":"Pear/Triangle","score":"70%"}]}`,
		"",
	}}
	store := &analysisStoreFake{}
	uc := NewCatalogAnalysisUseCase(&catalogFake{products: analysisProducts(2)}, ai, nil, store, &analysisQueueFake{}, &reportWriterFake{}, AnalysisPacing{}, OrchestratorConfig{}, nil)

	summary, err := uc.AnalyzeCatalog(context.Background(), "shop-a")
	if err != nil {
		t.Fatalf("AnalyzeCatalog() error = %v", err)
	}
	if summary.AICalls != 2 || summary.FallbackCalls != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	rows := store.rows["shop-a"]
	if summary.Rows != len(rows) || len(rows) != 2+len(domain.KnownShapes) {
		t.Fatalf("expected 2 ai rows plus a full scorer set, got %d (summary %d)", len(rows), summary.Rows)
	}
	if rows[0].Shape != domain.ShapeHourglass || rows[0].Score != 91 || rows[0].Source != domain.SourceAI {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Shape != domain.ShapePear || rows[1].Score != 70 || rows[1].Reasoning == "" {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
	for _, row := range rows[2:] {
		if row.Source != domain.SourceAlgorithm || row.ProductID != "b" {
			t.Fatalf("expected scorer rows for second product, got %+v", row)
		}
	}
}

func TestAnalyzeCatalogWithoutAIUsesScorer(t *testing.T) {
	store := &analysisStoreFake{}
	uc := NewCatalogAnalysisUseCase(&catalogFake{products: analysisProducts(3)}, nil, nil, store, nil, nil, AnalysisPacing{}, OrchestratorConfig{}, nil)
	summary, err := uc.AnalyzeCatalog(context.Background(), "shop-a")
	if err != nil {
		t.Fatalf("AnalyzeCatalog() error = %v", err)
	}
	if summary.AICalls != 0 || summary.FallbackCalls != 3 || summary.Rows != 3*len(domain.KnownShapes) {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestAnalyzeCatalogSkipsOutOfStock(t *testing.T) {
	products := append(analysisProducts(1), domain.Product{ID: "gone", Title: "Sold Out Dress", Variants: []domain.Variant{{AvailableForSale: false}}})
	store := &analysisStoreFake{}
	uc := NewCatalogAnalysisUseCase(&catalogFake{products: products}, nil, nil, store, nil, nil, AnalysisPacing{}, OrchestratorConfig{}, nil)
	summary, err := uc.AnalyzeCatalog(context.Background(), "shop-a")
	if err != nil {
		t.Fatalf("AnalyzeCatalog() error = %v", err)
	}
	if summary.Products != 1 {
		t.Fatalf("expected only in-stock products, got %d", summary.Products)
	}
	for _, row := range store.rows["shop-a"] {
		if row.ProductID == "gone" {
			t.Fatalf("out of stock product analyzed")
		}
	}
}

func TestAnalyzeCatalogPacesAICalls(t *testing.T) {
	replies := make([]string, 5)
	for i := range replies {
		replies[i] = `{"shapes":[{"shape":"Hourglass","score":80}]}`
	}
	ai := &sequenceCompleterFake{replies: replies}
	uc := NewCatalogAnalysisUseCase(&catalogFake{products: analysisProducts(5)}, ai, nil, &analysisStoreFake{}, nil, nil, AnalysisPacing{Every: 2, Delay: time.Second}, OrchestratorConfig{}, nil)

	var sleeps []time.Duration
	uc.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	if _, err := uc.AnalyzeCatalog(context.Background(), "shop-a"); err != nil {
		t.Fatalf("AnalyzeCatalog() error = %v", err)
	}
	// Pauses before the third and fifth calls.
	if len(sleeps) != 2 || sleeps[0] != time.Second {
		t.Fatalf("unexpected pacing: %v", sleeps)
	}
}

func TestAnalyzeCatalogStopsWhenCancelled(t *testing.T) {
	ai := &sequenceCompleterFake{replies: []string{`{"shapes":[{"shape":"Hourglass","score":80}]}`, `{"shapes":[{"shape":"Hourglass","score":80}]}`}}
	uc := NewCatalogAnalysisUseCase(&catalogFake{products: analysisProducts(3)}, ai, nil, &analysisStoreFake{}, nil, nil, AnalysisPacing{Every: 1, Delay: time.Hour}, OrchestratorConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := uc.AnalyzeCatalog(ctx, "shop-a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestAnalyzeCatalogCatalogError(t *testing.T) {
	uc := NewCatalogAnalysisUseCase(&catalogFake{err: errors.New("down")}, nil, nil, &analysisStoreFake{}, nil, nil, AnalysisPacing{}, OrchestratorConfig{}, nil)
	_, err := uc.AnalyzeCatalog(context.Background(), "shop-a")
	if !domain.IsKind(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected catalog unavailable, got %v", err)
	}
}

func TestCatalogAnalysisEnqueueAndExport(t *testing.T) {
	queue := &analysisQueueFake{}
	store := &analysisStoreFake{}
	report := &reportWriterFake{}
	uc := NewCatalogAnalysisUseCase(&catalogFake{products: analysisProducts(1)}, nil, nil, store, queue, report, AnalysisPacing{}, OrchestratorConfig{}, nil)

	if err := uc.Enqueue(context.Background(), " "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank shop, got %v", err)
	}
	if err := uc.Enqueue(context.Background(), "shop-a"); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if len(queue.published) != 1 || queue.published[0] != "shop-a" {
		t.Fatalf("unexpected published shops: %v", queue.published)
	}

	if _, err := uc.Export(context.Background(), "shop-a"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found before analysis, got %v", err)
	}
	if _, err := uc.AnalyzeCatalog(context.Background(), "shop-a"); err != nil {
		t.Fatalf("AnalyzeCatalog() error = %v", err)
	}
	data, err := uc.Export(context.Background(), "shop-a")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if string(data) != "xlsx" || report.rows != len(domain.KnownShapes) {
		t.Fatalf("unexpected export: %q rows=%d", data, report.rows)
	}
}

func TestCatalogAnalysisEnqueueQueueError(t *testing.T) {
	uc := NewCatalogAnalysisUseCase(nil, nil, nil, nil, &analysisQueueFake{err: errors.New("nats down")}, nil, AnalysisPacing{}, OrchestratorConfig{}, nil)
	if err := uc.Enqueue(context.Background(), "shop-a"); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

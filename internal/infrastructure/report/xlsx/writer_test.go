package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

func TestWriteAnalysisProducesReadableWorkbook(t *testing.T) {
	at := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	rows := []domain.ProductShapeScore{
		{ProductID: "p1", ProductTitle: "Wrap Dress", Shape: domain.ShapeHourglass, Score: 92, Reasoning: "defines the waist", Source: domain.SourceAI, AnalyzedAt: at},
		{ProductID: "p2", ProductTitle: "Boxy Tee", Shape: domain.ShapeHourglass, Score: 40, Reasoning: "hides the waist", Source: domain.SourceAlgorithm, AnalyzedAt: at},
		{ProductID: "p1", ProductTitle: "Wrap Dress", Shape: domain.ShapePear, Score: 70, Reasoning: "skims the hips", Source: domain.SourceAI, AnalyzedAt: at},
	}

	data, err := NewWriter().WriteAnalysis("demo.myshopify.com", rows)
	if err != nil {
		t.Fatalf("WriteAnalysis() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	detail, err := f.GetRows(analysisSheet)
	if err != nil {
		t.Fatalf("GetRows(detail) error = %v", err)
	}
	if len(detail) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(detail))
	}
	if detail[0][0] != "Product ID" || detail[1][1] != "Wrap Dress" || detail[1][3] != "92" || detail[2][4] != "algorithm" {
		t.Fatalf("unexpected detail rows: %v", detail)
	}

	summary, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatalf("GetRows(summary) error = %v", err)
	}
	if len(summary) != 3 {
		t.Fatalf("expected header + 2 shapes, got %d", len(summary))
	}
	// Summary rows follow the canonical shape order.
	if summary[1][0] != domain.ShapePear || summary[2][0] != domain.ShapeHourglass {
		t.Fatalf("unexpected summary order: %v", summary)
	}
	if summary[2][1] != "2" || summary[2][2] != "66.0" || summary[2][3] != "Wrap Dress" {
		t.Fatalf("unexpected hourglass summary: %v", summary[2])
	}
}

func TestWriteAnalysisWithNoRowsKeepsHeaders(t *testing.T) {
	data, err := NewWriter().WriteAnalysis("demo", nil)
	if err != nil {
		t.Fatalf("WriteAnalysis() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(analysisSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %v", rows)
	}
}

package xlsx

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

const (
	analysisSheet = "Analysis"
	summarySheet  = "By Shape"
)

var analysisHeader = []any{"Product ID", "Product", "Body Shape", "Score", "Source", "Reasoning", "Analyzed At"}

// Writer renders catalog analysis rows as an .xlsx workbook with a detail
// sheet and a per-shape summary.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteAnalysis(shop string, rows []domain.ProductShapeScore) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", analysisSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeDetail(f, rows); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummary(f, rows); err != nil {
		return nil, err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Catalog body-shape analysis",
		Subject: shop,
		Creator: "shape-stylist",
	}); err != nil {
		return nil, fmt.Errorf("set doc props: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDetail(f *excelize.File, rows []domain.ProductShapeScore) error {
	if err := f.SetSheetRow(analysisSheet, "A1", &analysisHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		values := []any{
			row.ProductID,
			row.ProductTitle,
			row.Shape,
			row.Score,
			string(row.Source),
			row.Reasoning,
			row.AnalyzedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(analysisSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := styleHeader(f, analysisSheet, "A1", "G1"); err != nil {
		return err
	}
	widths := map[string]float64{"A": 22, "B": 36, "C": 22, "D": 8, "E": 11, "F": 70, "G": 20}
	for col, width := range widths {
		if err := f.SetColWidth(analysisSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetPanes(analysisSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if len(rows) > 0 {
		if err := f.AutoFilter(analysisSheet, fmt.Sprintf("A1:G%d", len(rows)+1), nil); err != nil {
			return fmt.Errorf("auto filter: %w", err)
		}
	}
	return nil
}

type shapeSummary struct {
	shape    string
	products int
	total    int
	best     domain.ProductShapeScore
}

func summarize(rows []domain.ProductShapeScore) []shapeSummary {
	byShape := make(map[string]*shapeSummary)
	for _, row := range rows {
		s, ok := byShape[row.Shape]
		if !ok {
			s = &shapeSummary{shape: row.Shape}
			byShape[row.Shape] = s
		}
		s.products++
		s.total += row.Score
		if s.products == 1 || row.Score > s.best.Score {
			s.best = row
		}
	}

	out := make([]shapeSummary, 0, len(byShape))
	for _, shape := range domain.KnownShapes {
		if s, ok := byShape[shape]; ok {
			out = append(out, *s)
			delete(byShape, shape)
		}
	}
	rest := make([]string, 0, len(byShape))
	for shape := range byShape {
		rest = append(rest, shape)
	}
	sort.Strings(rest)
	for _, shape := range rest {
		out = append(out, *byShape[shape])
	}
	return out
}

func writeSummary(f *excelize.File, rows []domain.ProductShapeScore) error {
	header := []any{"Body Shape", "Products", "Average Score", "Best Product", "Best Score"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for i, s := range summarize(rows) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		avg := float64(s.total) / float64(s.products)
		values := []any{s.shape, s.products, fmt.Sprintf("%.1f", avg), s.best.ProductTitle, s.best.Score}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "D", "D", 36); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return styleHeader(f, summarySheet, "A1", "E1")
}

func styleHeader(f *excelize.File, sheet, from, to string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// ReplaceAnalysis swaps the shop's rows in one transaction so readers never
// see a half-written analysis.
func (r *AnalysisRepository) ReplaceAnalysis(ctx context.Context, shop string, rows []domain.ProductShapeScore) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin analysis tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_shape_scores WHERE shop = $1`, shop); err != nil {
		return fmt.Errorf("delete previous analysis: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO product_shape_scores (
	shop, product_id, product_title, shape, score, reasoning, source, analyzed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (shop, product_id, shape) DO NOTHING
`)
	if err != nil {
		return fmt.Errorf("prepare analysis insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			shop, row.ProductID, row.ProductTitle, row.Shape, row.Score, row.Reasoning, string(row.Source), row.AnalyzedAt,
		); err != nil {
			return fmt.Errorf("insert analysis row %s/%s: %w", row.ProductID, row.Shape, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analysis tx: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) ListAnalysis(ctx context.Context, shop string) ([]domain.ProductShapeScore, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT shop, product_id, product_title, shape, score, reasoning, source, analyzed_at
FROM product_shape_scores
WHERE shop = $1
ORDER BY product_title ASC, product_id ASC, score DESC, shape ASC
`, shop)
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ProductShapeScore, 0)
	for rows.Next() {
		var row domain.ProductShapeScore
		var source string
		if err := rows.Scan(
			&row.Shop, &row.ProductID, &row.ProductTitle, &row.Shape,
			&row.Score, &row.Reasoning, &source, &row.AnalyzedAt,
		); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		row.Source = domain.RecommendationSource(source)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis rows: %w", err)
	}
	return out, nil
}

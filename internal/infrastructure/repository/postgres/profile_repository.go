package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// UpsertProfile keeps one profile per (shop, customer); reclassifying replaces
// measurements and result but keeps the original id and created_at.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile *domain.BodyProfile) error {
	measurementsJSON, err := json.Marshal(profile.Measurements)
	if err != nil {
		return fmt.Errorf("marshal measurements: %w", err)
	}
	resultJSON, err := json.Marshal(profile.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO body_profiles (
	id, shop, customer_id, shape, confidence, measurements, result, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (shop, customer_id) DO UPDATE
SET shape = EXCLUDED.shape,
	confidence = EXCLUDED.confidence,
	measurements = EXCLUDED.measurements,
	result = EXCLUDED.result,
	updated_at = EXCLUDED.updated_at
`,
		profile.ID, profile.Shop, profile.CustomerID, profile.Result.Shape, profile.Result.Confidence,
		measurementsJSON, resultJSON, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert body profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, shop, customerID string) (*domain.BodyProfile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, shop, customer_id, measurements, result, created_at, updated_at
FROM body_profiles
WHERE shop = $1 AND customer_id = $2
`, shop, customerID)

	var profile domain.BodyProfile
	var measurementsRaw, resultRaw []byte
	err := row.Scan(
		&profile.ID, &profile.Shop, &profile.CustomerID,
		&measurementsRaw, &resultRaw, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get body profile", fmt.Errorf("customer %s in shop %s", customerID, shop))
		}
		return nil, fmt.Errorf("scan body profile: %w", err)
	}

	if err := json.Unmarshal(measurementsRaw, &profile.Measurements); err != nil {
		return nil, fmt.Errorf("unmarshal measurements: %w", err)
	}
	if err := json.Unmarshal(resultRaw, &profile.Result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &profile, nil
}

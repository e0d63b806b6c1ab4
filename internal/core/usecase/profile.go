package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/core/ports"
)

type BodyShapeUseCase struct {
	classifier *BodyShapeClassifier
	profiles   ports.ProfileStore
	now        func() time.Time
}

// NewBodyShapeUseCase accepts a nil store; profiles are then classified but not saved.
func NewBodyShapeUseCase(classifier *BodyShapeClassifier, profiles ports.ProfileStore) *BodyShapeUseCase {
	if classifier == nil {
		classifier = NewBodyShapeClassifier()
	}
	return &BodyShapeUseCase{
		classifier: classifier,
		profiles:   profiles,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (uc *BodyShapeUseCase) Classify(ctx context.Context, shop, customerID string, m domain.Measurements) (*domain.BodyProfile, error) {
	if err := ValidateMeasurements(m); err != nil {
		return nil, err
	}

	normalized := NormalizeMeasurements(m)
	now := uc.now()
	profile := &domain.BodyProfile{
		ID:           uuid.NewString(),
		Shop:         strings.TrimSpace(shop),
		CustomerID:   strings.TrimSpace(customerID),
		Measurements: normalized,
		Result:       uc.classifier.Classify(normalized),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if profile.CustomerID == "" || uc.profiles == nil {
		return profile, nil
	}
	if err := uc.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save body profile: %w", err)
	}
	return profile, nil
}

func (uc *BodyShapeUseCase) GetProfile(ctx context.Context, shop, customerID string) (*domain.BodyProfile, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get profile", fmt.Errorf("customer id is required"))
	}
	if uc.profiles == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "get profile", fmt.Errorf("profile storage is disabled"))
	}
	profile, err := uc.profiles.GetProfile(ctx, shop, customerID)
	if err != nil {
		return nil, fmt.Errorf("get body profile: %w", err)
	}
	return profile, nil
}

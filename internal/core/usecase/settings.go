package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/core/ports"
)

type SettingsUseCase struct {
	store ports.SettingsStore
}

func NewSettingsUseCase(store ports.SettingsStore) *SettingsUseCase {
	return &SettingsUseCase{store: store}
}

func (uc *SettingsUseCase) Get(ctx context.Context, shop string) (domain.Settings, error) {
	settings, err := uc.store.Load(ctx, shop)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func (uc *SettingsUseCase) Put(ctx context.Context, shop string, settings domain.Settings) (domain.Settings, error) {
	if err := validate.Struct(settings); err != nil {
		return domain.Settings{}, domain.WrapError(domain.ErrInvalidInput, "validate settings", err)
	}
	if err := uc.store.Save(ctx, shop, settings); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

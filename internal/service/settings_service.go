package service

import (
	"context"

	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/repository"
	apperrors "github.com/spec-kit/repair-tracker/pkg/util"
)

// SettingsService manages the master-data document: category/model/supplier
// lists, part categories, SLA thresholds and assignment rules.
type SettingsService struct {
	settings repository.SettingsRepository
}

// NewSettingsService constructs the service.
func NewSettingsService(settings repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the current master data, seeding defaults on first access.
func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.Settings{}, apperrors.MapError(err)
	}
	return settings, nil
}

// ModelsFor lists the models configured for a device category, legacy
// uncategorized entries included. Feeds the intake form's model picker.
func (s *SettingsService) ModelsFor(ctx context.Context, category string) ([]string, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return settings.ModelsFor(category), nil
}

// Merge applies a partial master-data update. Manager only.
func (s *SettingsService) Merge(ctx context.Context, actor *domain.UserProfile, partial map[string]any) error {
	if actor == nil || !actor.Role.CanEditMasterData() {
		return apperrors.NewForbidden("role cannot edit master data")
	}
	if len(partial) == 0 {
		return apperrors.NewValidationError("empty settings update", nil)
	}
	if err := s.settings.Merge(ctx, partial); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// UpdateSLA replaces the per-status hour thresholds. Manager only.
func (s *SettingsService) UpdateSLA(ctx context.Context, actor *domain.UserProfile, hours map[domain.RepairStatus]int) error {
	if actor == nil || !actor.Role.CanEditMasterData() {
		return apperrors.NewForbidden("role cannot edit SLA thresholds")
	}
	for status := range hours {
		if !status.Valid() {
			return apperrors.NewInvalidStatus(string(status))
		}
	}
	if err := s.settings.Merge(ctx, map[string]any{"sla_hours": hours}); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

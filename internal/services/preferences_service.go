// internal/services/preferences_service.go
package services

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"qrstudio-backend/internal/generator"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/repository"
	apperrors "qrstudio-backend/pkg/errors"
)

type PreferencesService interface {
	// Get returns the stored preferences or the defaults for a new user.
	Get(ctx context.Context, userID string) (*models.UserPreferences, error)
	UpdateDefaults(ctx context.Context, userID string, settings models.QRSettings) (*models.UserPreferences, error)
	AddPreset(ctx context.Context, userID string, req *models.CreatePresetRequest) (*models.Preset, error)
	DeletePreset(ctx context.Context, userID, presetID string) error
}

type preferencesService struct {
	prefsRepo repository.PreferencesRepository
	now       func() time.Time
}

func NewPreferencesService(prefsRepo repository.PreferencesRepository) PreferencesService {
	return &preferencesService{
		prefsRepo: prefsRepo,
		now:       time.Now,
	}
}

// settingsProblems validates stored settings the way a generation would.
func settingsProblems(settings models.QRSettings) []string {
	err := settings.Options().Resolve().Validate("settings")
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.Errors
	}
	return nil
}

func defaultPreferences(userID string) *models.UserPreferences {
	return &models.UserPreferences{
		UserID:          userID,
		DefaultSettings: models.SettingsFromConfig(generator.Options{}.Resolve()),
		Presets:         []models.Preset{},
	}
}

func (s *preferencesService) Get(ctx context.Context, userID string) (*models.UserPreferences, error) {
	prefs, err := s.prefsRepo.GetByUserID(ctx, userID)
	if apperrors.IsErrorType(err, apperrors.ErrNotFound) {
		return defaultPreferences(userID), nil
	}
	if err != nil {
		return nil, err
	}
	if prefs.Presets == nil {
		prefs.Presets = []models.Preset{}
	}
	return prefs, nil
}

func (s *preferencesService) UpdateDefaults(ctx context.Context, userID string, settings models.QRSettings) (*models.UserPreferences, error) {
	if problems := settingsProblems(settings); len(problems) > 0 {
		return nil, apperrors.NewValidationError(problems)
	}

	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs.DefaultSettings = models.SettingsFromConfig(settings.Options().Resolve())
	prefs.UpdatedAt = s.now()

	if err := s.prefsRepo.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *preferencesService) AddPreset(ctx context.Context, userID string, req *models.CreatePresetRequest) (*models.Preset, error) {
	problems := append(req.Problems(), settingsProblems(req.Settings)...)
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError(problems)
	}

	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(prefs.Presets) >= models.MaxPresets {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, http.StatusConflict,
			fmt.Sprintf("A maximum of %d presets is allowed", models.MaxPresets))
	}

	now := s.now()
	preset := models.Preset{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Settings:  models.SettingsFromConfig(req.Settings.Options().Resolve()),
		CreatedAt: now,
	}
	prefs.Presets = append(prefs.Presets, preset)
	prefs.UpdatedAt = now

	if err := s.prefsRepo.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return &preset, nil
}

func (s *preferencesService) DeletePreset(ctx context.Context, userID, presetID string) error {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(prefs.Presets, func(p models.Preset) bool { return p.ID == presetID })
	if idx < 0 {
		return apperrors.NewAppError(apperrors.ErrNotFound, http.StatusNotFound, "Preset not found")
	}
	prefs.Presets = slices.Delete(prefs.Presets, idx, idx+1)
	prefs.UpdatedAt = s.now()

	return s.prefsRepo.Upsert(ctx, prefs)
}

// internal/services/history_service.go
package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"qrstudio-backend/internal/content"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/repository"
	apperrors "qrstudio-backend/pkg/errors"
)

type HistoryService interface {
	// Save stores text for userID. Saving text the user already has refreshes
	// the existing record instead of inserting a duplicate.
	Save(ctx context.Context, userID, text string, contentType content.ContentType, title string, settings models.QRSettings) (*models.SaveHistoryResult, error)
	List(ctx context.Context, userID string, query models.HistoryQuery) (*models.HistoryPage, error)
	Search(ctx context.Context, userID, query string, limit int) ([]models.QRHistory, error)
	Get(ctx context.Context, userID, id string) (*models.QRHistory, error)
	Patch(ctx context.Context, userID, id string, patch models.HistoryPatch) (*models.QRHistory, error)
	Delete(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) (int64, error)
}

type historyService struct {
	historyRepo repository.HistoryRepository
}

func NewHistoryService(historyRepo repository.HistoryRepository) HistoryService {
	return &historyService{historyRepo: historyRepo}
}

// normalizeText is the form history text is stored and compared in.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

func (s *historyService) Save(ctx context.Context, userID, text string, contentType content.ContentType, title string, settings models.QRSettings) (*models.SaveHistoryResult, error) {
	normalized := normalizeText(text)
	if normalized == "" {
		return nil, apperrors.NewValidationError([]string{"Text content is required"})
	}

	existing, err := s.historyRepo.FindByText(ctx, userID, normalized)
	switch {
	case err == nil:
		return s.refresh(ctx, existing, userID, title, settings)
	case !apperrors.IsErrorType(err, apperrors.ErrHistoryNotFound):
		return nil, err
	}

	entry := &models.QRHistory{
		UserID:      userID,
		TextContent: normalized,
		ContentType: contentType,
		Title:       title,
		Settings:    settings,
	}
	err = s.historyRepo.Create(ctx, entry)
	if apperrors.IsErrorType(err, apperrors.ErrConflict) {
		// A concurrent save of the same text won the insert.
		existing, err := s.historyRepo.FindByText(ctx, userID, normalized)
		if err != nil {
			return nil, err
		}
		return s.refresh(ctx, existing, userID, title, settings)
	}
	if err != nil {
		return nil, err
	}
	return &models.SaveHistoryResult{Entry: *entry}, nil
}

// refresh updates the settings, and the title when given, of an entry the
// user already has.
func (s *historyService) refresh(ctx context.Context, existing *models.QRHistory, userID, title string, settings models.QRSettings) (*models.SaveHistoryResult, error) {
	patch := models.HistoryPatch{Settings: &settings}
	if title != "" {
		patch.Title = &title
	}
	updated, err := s.historyRepo.Patch(ctx, existing.ID.Hex(), userID, patch)
	if err != nil {
		return nil, err
	}
	return &models.SaveHistoryResult{Entry: *updated, Duplicate: true}, nil
}

func (s *historyService) List(ctx context.Context, userID string, query models.HistoryQuery) (*models.HistoryPage, error) {
	query = query.Normalize()
	items, err := s.historyRepo.ListByUser(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	total, err := s.historyRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	page := &models.HistoryPage{Items: items, Total: total}
	if len(items) == query.Limit {
		page.NextBefore = items[len(items)-1].CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return page, nil
}

func (s *historyService) Search(ctx context.Context, userID, query string, limit int) ([]models.QRHistory, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError([]string{"Search query is required"})
	}
	return s.historyRepo.Search(ctx, userID, query, limit)
}

func (s *historyService) Get(ctx context.Context, userID, id string) (*models.QRHistory, error) {
	return s.owned(ctx, userID, id)
}

func (s *historyService) Patch(ctx context.Context, userID, id string, patch models.HistoryPatch) (*models.QRHistory, error) {
	problems := patch.Problems()
	if patch.Settings != nil {
		problems = append(problems, settingsProblems(*patch.Settings)...)
	}
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError(problems)
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}

	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.historyRepo.Patch(ctx, id, userID, patch)
}

func (s *historyService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.historyRepo.Delete(ctx, id, userID)
}

func (s *historyService) Clear(ctx context.Context, userID string) (int64, error) {
	return s.historyRepo.DeleteAllByUser(ctx, userID)
}

// owned loads a record and checks it belongs to userID: missing records are
// 404, records of another user 403.
func (s *historyService) owned(ctx context.Context, userID, id string) (*models.QRHistory, error) {
	entry, err := s.historyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, apperrors.NewForbiddenError("You do not have access to this history entry")
	}
	return entry, nil
}

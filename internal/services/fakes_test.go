package services

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"qrstudio-backend/internal/models"
	apperrors "qrstudio-backend/pkg/errors"
)

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries map[string]*models.QRHistory
	now     time.Time
	// beforeCreate runs at the start of Create, outside the lock.
	beforeCreate func()
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{
		entries: make(map[string]*models.QRHistory),
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeHistoryRepo) Create(ctx context.Context, entry *models.QRHistory) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.UserID == entry.UserID && e.TextContent == entry.TextContent {
			return apperrors.NewConflictError("History record already exists")
		}
	}
	r.now = r.now.Add(time.Second)
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = r.now
	entry.UpdatedAt = r.now
	cp := *entry
	r.entries[entry.ID.Hex()] = &cp
	return nil
}

func (r *fakeHistoryRepo) GetByID(ctx context.Context, id string) (*models.QRHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, apperrors.NewHistoryNotFoundError()
	}
	cp := *e
	return &cp, nil
}

func (r *fakeHistoryRepo) FindByText(ctx context.Context, userID, text string) (*models.QRHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.UserID == userID && e.TextContent == text {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperrors.NewHistoryNotFoundError()
}

func (r *fakeHistoryRepo) ListByUser(ctx context.Context, userID string, query models.HistoryQuery) ([]models.QRHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.QRHistory
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if !query.Before.IsZero() && !e.CreatedAt.Before(query.Before) {
			continue
		}
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b models.QRHistory) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (r *fakeHistoryRepo) Search(ctx context.Context, userID, text string, limit int) ([]models.QRHistory, error) {
	return nil, nil
}

func (r *fakeHistoryRepo) Patch(ctx context.Context, id, userID string, patch models.HistoryPatch) (*models.QRHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return nil, apperrors.NewHistoryNotFoundError()
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.IsFavorite != nil {
		e.IsFavorite = *patch.IsFavorite
	}
	if patch.Settings != nil {
		e.Settings = *patch.Settings
	}
	e.UpdatedAt = r.now.Add(time.Hour)
	cp := *e
	return &cp, nil
}

func (r *fakeHistoryRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return apperrors.NewHistoryNotFoundError()
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeHistoryRepo) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.entries {
		if e.UserID == userID {
			delete(r.entries, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeHistoryRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakePrefsRepo struct {
	mu    sync.Mutex
	prefs map[string]models.UserPreferences
}

func newFakePrefsRepo() *fakePrefsRepo {
	return &fakePrefsRepo{prefs: make(map[string]models.UserPreferences)}
}

func (r *fakePrefsRepo) GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prefs[userID]
	if !ok {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, 404, "Preferences not found")
	}
	p.Presets = slices.Clone(p.Presets)
	return &p, nil
}

func (r *fakePrefsRepo) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := *prefs
	p.Presets = slices.Clone(prefs.Presets)
	r.prefs[prefs.UserID] = p
	return nil
}

type fakeUsageRepo struct {
	mu      sync.Mutex
	records []models.GenerationUsage
}

func (r *fakeUsageRepo) CreateUsage(ctx context.Context, usage *models.GenerationUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *usage)
	return nil
}

func (r *fakeUsageRepo) GetUserStats(ctx context.Context, userID, groupBy string, startDate, endDate *time.Time) ([]models.UsageStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	var keys []string
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		var key string
		switch groupBy {
		case "method":
			key = rec.Method
		case "format":
			key = rec.Format
		default:
			key = rec.ContentType
		}
		if counts[key] == 0 {
			keys = append(keys, key)
		}
		counts[key]++
	}
	var stats []models.UsageStats
	for _, k := range keys {
		stats = append(stats, models.UsageStats{Key: k, TotalCalls: counts[k], SuccessCalls: counts[k]})
	}
	return stats, nil
}

func (r *fakeUsageRepo) GetGlobalStats(ctx context.Context, groupBy string, startDate, endDate *time.Time) ([]models.UsageStats, error) {
	return nil, nil
}

func (r *fakeUsageRepo) GetUserUsageHistory(ctx context.Context, userID string, limit, skip int) ([]models.GenerationUsage, error) {
	return nil, nil
}

func (r *fakeUsageRepo) snapshot() []models.GenerationUsage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records)
}

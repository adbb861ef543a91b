// internal/repository/interfaces.go
package repository

import (
	"context"
	"time"

	"qrstudio-backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// Upsert creates the user on first sight and refreshes lastSeenAt.
	Upsert(ctx context.Context, identity models.Identity) (*models.User, error)
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, userID string) error
	GetTotalCount(ctx context.Context) (int64, error)
}

// HistoryRepository stores QR history. Every operation is scoped to the
// owning user.
type HistoryRepository interface {
	Create(ctx context.Context, entry *models.QRHistory) error
	GetByID(ctx context.Context, id string) (*models.QRHistory, error)
	FindByText(ctx context.Context, userID, text string) (*models.QRHistory, error)
	ListByUser(ctx context.Context, userID string, query models.HistoryQuery) ([]models.QRHistory, error)
	Search(ctx context.Context, userID, text string, limit int) ([]models.QRHistory, error)
	Patch(ctx context.Context, id, userID string, patch models.HistoryPatch) (*models.QRHistory, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type PreferencesRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error)
	Upsert(ctx context.Context, prefs *models.UserPreferences) error
}

type UsageRepository interface {
	CreateUsage(ctx context.Context, usage *models.GenerationUsage) error
	GetUserStats(ctx context.Context, userID, groupBy string, startDate, endDate *time.Time) ([]models.UsageStats, error)
	GetGlobalStats(ctx context.Context, groupBy string, startDate, endDate *time.Time) ([]models.UsageStats, error)
	GetUserUsageHistory(ctx context.Context, userID string, limit, skip int) ([]models.GenerationUsage, error)
}

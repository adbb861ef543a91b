// internal/models/history.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"qrstudio-backend/internal/content"
	"qrstudio-backend/internal/generator"
)

const (
	MaxHistoryPageSize     = 100
	DefaultHistoryPageSize = 20
	maxHistoryTitleLength  = 120
)

// QRSettings is the persisted subset of generation options. PDF passwords
// are never stored.
type QRSettings struct {
	Size                 int    `bson:"size" json:"size"`
	Margin               int    `bson:"margin" json:"margin"`
	ErrorCorrectionLevel string `bson:"errorCorrectionLevel" json:"errorCorrectionLevel"`
	Foreground           string `bson:"foreground" json:"foreground"`
	Background           string `bson:"background" json:"background"`
	Format               string `bson:"format" json:"format"`
	LogoSize             int    `bson:"logoSize,omitempty" json:"logoSize,omitempty"`
	LogoBackground       string `bson:"logoBackground,omitempty" json:"logoBackground,omitempty"`
}

// SettingsFromConfig keeps the persistable part of a resolved configuration.
func SettingsFromConfig(cfg generator.Config) QRSettings {
	return QRSettings{
		Size:                 cfg.Size,
		Margin:               cfg.Margin,
		ErrorCorrectionLevel: string(cfg.ErrorCorrectionLevel),
		Foreground:           cfg.Foreground,
		Background:           cfg.Background,
		Format:               string(cfg.Format),
		LogoSize:             cfg.LogoSize,
		LogoBackground:       cfg.LogoBackground,
	}
}

// Options converts stored settings back into generation options. Zero
// fields fall back to the generator defaults.
func (s QRSettings) Options() generator.Options {
	margin := s.Margin
	return generator.Options{
		Size:                 s.Size,
		Margin:               &margin,
		ErrorCorrectionLevel: generator.ErrorCorrectionLevel(s.ErrorCorrectionLevel),
		Foreground:           s.Foreground,
		Background:           s.Background,
		Format:               generator.Format(s.Format),
		LogoSize:             s.LogoSize,
		LogoBackground:       s.LogoBackground,
	}
}

// QRHistory is one saved code belonging to a user.
type QRHistory struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      string              `bson:"userId" json:"userId"`
	TextContent string              `bson:"textContent" json:"textContent"`
	ContentType content.ContentType `bson:"contentType" json:"contentType"`
	Title       string              `bson:"title,omitempty" json:"title,omitempty"`
	Settings    QRSettings          `bson:"qrSettings" json:"qrSettings"`
	IsFavorite  bool                `bson:"isFavorite" json:"isFavorite"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// HistoryPatch is a partial update; nil fields are left unchanged.
type HistoryPatch struct {
	Title      *string     `json:"title,omitempty"`
	IsFavorite *bool       `json:"isFavorite,omitempty"`
	Settings   *QRSettings `json:"qrSettings,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p HistoryPatch) IsEmpty() bool {
	return p.Title == nil && p.IsFavorite == nil && p.Settings == nil
}

// Problems lists validation failures of the patch.
func (p HistoryPatch) Problems() []string {
	var problems []string
	if p.IsEmpty() {
		problems = append(problems, "At least one field must be provided")
	}
	if p.Title != nil && len([]rune(*p.Title)) > maxHistoryTitleLength {
		problems = append(problems, "Title must be at most 120 characters")
	}
	return problems
}

// HistoryQuery selects a page of a user's history in reverse creation order.
// Before is an exclusive upper bound on createdAt.
type HistoryQuery struct {
	Before        time.Time
	Limit         int
	FavoritesOnly bool
	ContentType   content.ContentType
}

// Normalize clamps the limit into [1, MaxHistoryPageSize].
func (q HistoryQuery) Normalize() HistoryQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryPageSize
	}
	if q.Limit > MaxHistoryPageSize {
		q.Limit = MaxHistoryPageSize
	}
	return q
}

type HistoryPage struct {
	Items []QRHistory `json:"items"`
	// NextBefore is the cursor for the following page; empty on the last page.
	NextBefore string `json:"nextBefore,omitempty"`
	Total      int64  `json:"total"`
}

// SaveHistoryResult reports whether an existing record was refreshed instead
// of inserted.
type SaveHistoryResult struct {
	Entry     QRHistory `json:"entry"`
	Duplicate bool      `json:"duplicate"`
}

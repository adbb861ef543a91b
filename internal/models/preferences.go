// internal/models/preferences.go
package models

import (
	"strings"
	"time"
)

const (
	MaxPresets          = 20
	maxPresetNameLength = 60
)

// UserPreferences holds a user's default generation settings and named
// presets.
type UserPreferences struct {
	UserID          string     `bson:"userId" json:"userId"`
	DefaultSettings QRSettings `bson:"defaultSettings" json:"defaultSettings"`
	Presets         []Preset   `bson:"presets" json:"presets"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt"`
}

type Preset struct {
	ID        string     `bson:"id" json:"id"`
	Name      string     `bson:"name" json:"name"`
	Settings  QRSettings `bson:"settings" json:"settings"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
}

type CreatePresetRequest struct {
	Name     string     `json:"name"`
	Settings QRSettings `json:"settings"`
}

func (r CreatePresetRequest) Problems() []string {
	var problems []string
	name := []rune(strings.TrimSpace(r.Name))
	if len(name) == 0 {
		problems = append(problems, "Preset name is required")
	} else if len(name) > maxPresetNameLength {
		problems = append(problems, "Preset name must be at most 60 characters")
	}
	return problems
}

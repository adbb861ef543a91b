// internal/repository/preferences_repository.go
package repository

import (
	"context"
	"errors"
	"net/http"

	"qrstudio-backend/internal/models"
	apperrors "qrstudio-backend/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type preferencesRepository struct {
	collection *mongo.Collection
}

func NewPreferencesRepository(collection *mongo.Collection) PreferencesRepository {
	return &preferencesRepository{collection: collection}
}

func (r *preferencesRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&prefs)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewAppError(apperrors.ErrNotFound, http.StatusNotFound, "Preferences not found")
		}
		return nil, err
	}
	return &prefs, nil
}

func (r *preferencesRepository) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"userId": prefs.UserID}, prefs, options.Replace().SetUpsert(true))
	return err
}

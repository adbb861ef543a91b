// internal/repository/history_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"qrstudio-backend/internal/models"
	apperrors "qrstudio-backend/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type historyRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewHistoryRepository(collection *mongo.Collection) HistoryRepository {
	return &historyRepository{
		collection: collection,
		now:        time.Now,
	}
}

func (r *historyRepository) Create(ctx context.Context, entry *models.QRHistory) error {
	now := r.now()
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("History record already exists")
		}
		return err
	}
	return nil
}

func (r *historyRepository) GetByID(ctx context.Context, id string) (*models.QRHistory, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewHistoryNotFoundError()
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *historyRepository) FindByText(ctx context.Context, userID, text string) (*models.QRHistory, error) {
	return r.findOne(ctx, bson.M{"userId": userID, "textContent": text})
}

func (r *historyRepository) findOne(ctx context.Context, filter bson.M) (*models.QRHistory, error) {
	var entry models.QRHistory
	if err := r.collection.FindOne(ctx, filter).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewHistoryNotFoundError()
		}
		return nil, err
	}
	return &entry, nil
}

func (r *historyRepository) ListByUser(ctx context.Context, userID string, query models.HistoryQuery) ([]models.QRHistory, error) {
	query = query.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(query.Limit))

	cursor, err := r.collection.Find(ctx, historyListFilter(userID, query), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.QRHistory{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func historyListFilter(userID string, query models.HistoryQuery) bson.M {
	filter := bson.M{"userId": userID}
	if !query.Before.IsZero() {
		filter["createdAt"] = bson.M{"$lt": query.Before}
	}
	if query.FavoritesOnly {
		filter["isFavorite"] = true
	}
	if query.ContentType != "" {
		filter["contentType"] = query.ContentType
	}
	return filter
}

func (r *historyRepository) Search(ctx context.Context, userID, text string, limit int) ([]models.QRHistory, error) {
	limit = models.HistoryQuery{Limit: limit}.Normalize().Limit
	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.D{{Key: "score", Value: score}, {Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, historySearchFilter(userID, text), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.QRHistory{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func historySearchFilter(userID, text string) bson.M {
	return bson.M{
		"userId": userID,
		"$text":  bson.M{"$search": text},
	}
}

func (r *historyRepository) Patch(ctx context.Context, id, userID string, patch models.HistoryPatch) (*models.QRHistory, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewHistoryNotFoundError()
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var entry models.QRHistory
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid, "userId": userID}, buildHistoryPatch(patch, r.now()), opts).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewHistoryNotFoundError()
		}
		return nil, err
	}
	return &entry, nil
}

// buildHistoryPatch turns the set fields of patch into a $set document.
func buildHistoryPatch(patch models.HistoryPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.IsFavorite != nil {
		set["isFavorite"] = *patch.IsFavorite
	}
	if patch.Settings != nil {
		set["qrSettings"] = *patch.Settings
	}
	return bson.M{"$set": set}
}

func (r *historyRepository) Delete(ctx context.Context, id, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.NewHistoryNotFoundError()
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.NewHistoryNotFoundError()
	}
	return nil
}

func (r *historyRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *historyRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

// internal/database/indexes.go
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// IndexModels lists the indexes each collection needs. History is read by
// owner in reverse time order, holds at most one entry per owner and exact
// text, and is searched with a text index scoped by owner.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetSparse(true),
			},
		},
		HistoryCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "textContent", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "textContent", Value: "text"}, {Key: "title", Value: "text"}},
				Options: options.Index().SetName("history_text"),
			},
		},
		PreferencesCollection: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		UsageCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	logger := zap.L()
	logger.Info("Creating database indexes")

	for name, indexes := range IndexModels() {
		if _, err := m.GetCollection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
		logger.Debug("Collection indexes created", zap.String("collection", name), zap.Int("count", len(indexes)))
	}

	logger.Info("Database indexes created successfully")
	return nil
}

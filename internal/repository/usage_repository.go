// internal/repository/usage_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	"qrstudio-backend/internal/models"
	apperrors "qrstudio-backend/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Dimensions usage statistics can be grouped by.
const (
	GroupByMethod      = "method"
	GroupByFormat      = "format"
	GroupByContentType = "content_type"
	GroupByOperation   = "operation"
)

var usageGroupFields = map[string]bool{
	GroupByMethod:      true,
	GroupByFormat:      true,
	GroupByContentType: true,
	GroupByOperation:   true,
}

type usageRepository struct {
	collection *mongo.Collection
}

func NewUsageRepository(collection *mongo.Collection) UsageRepository {
	return &usageRepository{
		collection: collection,
	}
}

func (r *usageRepository) CreateUsage(ctx context.Context, usage *models.GenerationUsage) error {
	usage.ID = primitive.NewObjectID()
	usage.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, usage)
	return err
}

func (r *usageRepository) GetUserStats(ctx context.Context, userID, groupBy string, startDate, endDate *time.Time) ([]models.UsageStats, error) {
	match := buildDateFilter(startDate, endDate)
	match["user_id"] = userID
	return r.aggregate(ctx, match, groupBy)
}

func (r *usageRepository) GetGlobalStats(ctx context.Context, groupBy string, startDate, endDate *time.Time) ([]models.UsageStats, error) {
	return r.aggregate(ctx, buildDateFilter(startDate, endDate), groupBy)
}

func (r *usageRepository) aggregate(ctx context.Context, match bson.M, groupBy string) ([]models.UsageStats, error) {
	pipeline, err := usageStatsPipeline(match, groupBy)
	if err != nil {
		return nil, err
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := []models.UsageStats{}
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func usageStatsPipeline(match bson.M, groupBy string) ([]bson.M, error) {
	if !usageGroupFields[groupBy] {
		return nil, apperrors.NewValidationError([]string{fmt.Sprintf("unsupported usage grouping %q", groupBy)})
	}
	countIf := func(field string, when bool) bson.M {
		then, otherwise := 1, 0
		if !when {
			then, otherwise = 0, 1
		}
		return bson.M{"$sum": bson.M{"$cond": bson.M{"if": "$" + field, "then": then, "else": otherwise}}}
	}

	return []bson.M{
		{"$match": match},
		{
			"$group": bson.M{
				"_id":           "$" + groupBy,
				"total_calls":   bson.M{"$sum": 1},
				"success_calls": countIf("success", true),
				"failed_calls":  countIf("success", false),
				"cache_hits":    countIf("cache_hit", true),
			},
		},
		{"$sort": bson.M{"total_calls": -1}},
	}, nil
}

func (r *usageRepository) GetUserUsageHistory(ctx context.Context, userID string, limit, skip int) ([]models.GenerationUsage, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	usage := []models.GenerationUsage{}
	if err = cursor.All(ctx, &usage); err != nil {
		return nil, err
	}

	return usage, nil
}

func buildDateFilter(startDate, endDate *time.Time) bson.M {
	filter := bson.M{}

	if startDate != nil || endDate != nil {
		dateFilter := bson.M{}
		if startDate != nil {
			dateFilter["$gte"] = *startDate
		}
		if endDate != nil {
			dateFilter["$lte"] = *endDate
		}
		filter["created_at"] = dateFilter
	}

	return filter
}

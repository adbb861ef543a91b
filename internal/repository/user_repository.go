// internal/repository/user_repository.go
package repository

import (
	"context"
	"errors"
	"net/http"
	"time"

	"qrstudio-backend/internal/models"
	apperrors "qrstudio-backend/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewUserRepository(collection *mongo.Collection) UserRepository {
	return &userRepository{
		collection: collection,
		now:        time.Now,
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewAppError(apperrors.ErrConflict, http.StatusConflict, "User already exists")
		}
		return err
	}

	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *userRepository) Upsert(ctx context.Context, identity models.Identity) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"userId": identity.Subject}, userUpsertUpdate(identity, r.now()), opts).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// userUpsertUpdate refreshes profile fields the provider sent and never
// blanks ones it omitted.
func userUpsertUpdate(identity models.Identity, now time.Time) bson.M {
	set := bson.M{"lastSeenAt": now, "updatedAt": now}
	if identity.Email != "" {
		set["email"] = identity.Email
	}
	if identity.Name != "" {
		set["name"] = identity.Name
	}
	return bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
}

func (r *userRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewUserNotFoundError()
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewUserNotFoundError()
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}

func (r *userRepository) GetTotalCount(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrstudio-backend/internal/models"
	apperrors "qrstudio-backend/pkg/errors"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	now   time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User), now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.UserID] = &cp
	return nil
}

func (r *fakeUserRepo) Upsert(ctx context.Context, identity models.Identity) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = r.now.Add(time.Minute)
	u, ok := r.users[identity.Subject]
	if !ok {
		u = &models.User{UserID: identity.Subject, CreatedAt: r.now}
		r.users[identity.Subject] = u
	}
	if identity.Email != "" {
		u.Email = identity.Email
	}
	u.LastSeenAt = r.now
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, apperrors.NewUserNotFoundError()
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NewUserNotFoundError()
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) GetTotalCount(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func TestEnsureUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, models.Identity{})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrUnauthorized))

	first, err := svc.EnsureUser(ctx, models.Identity{Subject: "kp_1", Email: "ada@example.com"})
	require.NoError(t, err)
	second, err := svc.EnsureUser(ctx, models.Identity{Subject: "kp_1"})
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.LastSeenAt.After(first.LastSeenAt))
	assert.Equal(t, "ada@example.com", second.Email, "an omitted email keeps the stored one")

	count, err := repo.GetTotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	profile, err := svc.GetProfile(ctx, "kp_1")
	require.NoError(t, err)
	assert.Equal(t, "kp_1", profile.UserID)

	_, err = svc.GetProfile(ctx, "kp_2")
	assert.Equal(t, 404, apperrors.GetStatusCode(err))
}

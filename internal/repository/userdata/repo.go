// Package userdata persists user-scoped data (quiz results, coin balance,
// game scores) under one key per user.
package userdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/careerdex/internal/db"
	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/profile"
)

// store is the consumer interface for user data (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repository reads and writes profile.UserData.
type Repository struct {
	store store
}

// New creates a user data repository.
func New(s store) *Repository {
	return &Repository{store: s}
}

// Get returns the stored data for userID. A missing record yields an empty,
// normalized UserData rather than an error.
func (r *Repository) Get(ctx context.Context, userID string) (profile.UserData, error) {
	if userID == "" {
		return profile.UserData{}, fmt.Errorf("user id is required")
	}
	data, err := r.store.Get(ctx, domain.UserKey(userID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			u := profile.UserData{UserID: userID}
			u.Normalize()
			return u, nil
		}
		return profile.UserData{}, fmt.Errorf("get user %s: %w", userID, err)
	}

	var u profile.UserData
	if err := json.Unmarshal(data, &u); err != nil {
		return profile.UserData{}, fmt.Errorf("get user %s: %w: %w", userID, domain.ErrMalformedSnapshot, err)
	}
	u.UserID = userID
	u.Normalize()
	return u, nil
}

// Put replaces the stored data for u.UserID.
func (r *Repository) Put(ctx context.Context, u profile.UserData) error {
	if u.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	u.Normalize()
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", u.UserID, err)
	}
	if err := r.store.Set(ctx, domain.UserKey(u.UserID), data); err != nil {
		return fmt.Errorf("put user %s: %w", u.UserID, err)
	}
	return nil
}

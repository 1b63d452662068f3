// Package snapshot persists collection snapshots to the key-value store.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/careerdex/internal/db"
	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
)

// store is the consumer interface for snapshot persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Repository reads and writes one JSON array per collection.
type Repository struct {
	store store
}

// New creates a snapshot repository.
func New(s store) *Repository {
	return &Repository{store: s}
}

// Save writes the raw JSON array for name. data must be a valid JSON array.
func (r *Repository) Save(ctx context.Context, name catalog.CollectionName, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("save %s: %w", name, domain.ErrMalformedSnapshot)
	}
	if err := r.store.Set(ctx, domain.CollectionKey(string(name)), data); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Load returns the raw JSON array for name.
// Returns domain.ErrNotFound when nothing is persisted.
func (r *Repository) Load(ctx context.Context, name catalog.CollectionName) ([]byte, error) {
	data, err := r.store.Get(ctx, domain.CollectionKey(string(name)))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

// Delete drops the persisted snapshot for name.
func (r *Repository) Delete(ctx context.Context, name catalog.CollectionName) error {
	if err := r.store.Del(ctx, domain.CollectionKey(string(name))); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Encode marshals records into the snapshot wire form.
func Encode[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode unmarshals a snapshot into typed records.
func Decode[T any](data []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedSnapshot, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Count returns the number of records in a snapshot without decoding them.
func Count(data []byte) (int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrMalformedSnapshot, err)
	}
	return len(raw), nil
}

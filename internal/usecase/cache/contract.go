package cache

import (
	"context"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
)

// SnapshotStore is the persistent tier.
type SnapshotStore interface {
	Save(ctx context.Context, name catalog.CollectionName, data []byte) error
	Load(ctx context.Context, name catalog.CollectionName) ([]byte, error)
}

// FallbackFunc returns the bundled dataset for a collection.
type FallbackFunc func(name catalog.CollectionName) ([]byte, error)

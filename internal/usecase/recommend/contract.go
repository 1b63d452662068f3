package recommend

import (
	"context"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/domain/profile"
)

// CatalogReader reads cached collections.
type CatalogReader interface {
	Colleges(ctx context.Context) ([]catalog.College, error)
	Specialties(ctx context.Context) ([]catalog.Specialty, error)
	Tags(ctx context.Context) ([]catalog.Tag, error)
}

// UserReader loads user-scoped data.
type UserReader interface {
	Get(ctx context.Context, userID string) (profile.UserData, error)
}

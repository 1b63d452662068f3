package chi

import (
	"context"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/domain/match"
	"github.com/kailas-cloud/careerdex/internal/domain/profile"
	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
	"github.com/kailas-cloud/careerdex/internal/usecase/cache"
	healthuc "github.com/kailas-cloud/careerdex/internal/usecase/health"
	"github.com/kailas-cloud/careerdex/internal/usecase/recommend"
)

// CollectionReader serves cached collection snapshots.
type CollectionReader interface {
	Get(ctx context.Context, name catalog.CollectionName) (cache.Read, error)
}

// Recommender scores catalog entries.
type Recommender interface {
	Recommend(ctx context.Context, kind match.Kind, p profile.Profile) ([]recommend.Recommendation, error)
	ProfileFor(ctx context.Context, userID string) (profile.Profile, error)
}

// Syncer runs refreshes and reports sync state.
type Syncer interface {
	Refresh(ctx context.Context, names ...catalog.CollectionName) domrefresh.Report
	AfterWrite(ctx context.Context, name catalog.CollectionName) domrefresh.Report
	Status() domrefresh.SyncState
}

// UserStore reads and writes user-scoped data.
type UserStore interface {
	Get(ctx context.Context, userID string) (profile.UserData, error)
	Put(ctx context.Context, u profile.UserData) error
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

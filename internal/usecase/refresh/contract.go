package refresh

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
)

// Provider is the remote data source. It is pull-only.
type Provider interface {
	Ping(ctx context.Context) error
	// FetchCollection returns raw storage records with snake_case field names
	// and nested join arrays.
	FetchCollection(ctx context.Context, name catalog.CollectionName) ([]json.RawMessage, error)
	FetchScoreTable(ctx context.Context) ([]catalog.ScoreRow, error)
	// IncrementVersion advances the server-side version counter of name.
	IncrementVersion(ctx context.Context, name catalog.CollectionName) error
}

// Cache receives denormalized snapshots.
type Cache interface {
	Replace(ctx context.Context, name catalog.CollectionName, data []byte) error
}

// Observer receives the typed outcome of every collection refresh.
type Observer interface {
	OnOutcome(trigger domrefresh.Trigger, o domrefresh.Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(trigger domrefresh.Trigger, o domrefresh.Outcome)

// OnOutcome calls f.
func (f ObserverFunc) OnOutcome(trigger domrefresh.Trigger, o domrefresh.Outcome) {
	f(trigger, o)
}

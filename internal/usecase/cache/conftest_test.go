package cache

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/careerdex/internal/db/memory"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/repository/snapshot"
)

// failingSnapshotStore wraps a real repository and fails Save on demand.
type failingSnapshotStore struct {
	*snapshot.Repository
	saveErr error
}

func (f *failingSnapshotStore) Save(ctx context.Context, name catalog.CollectionName, data []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Repository.Save(ctx, name, data)
}

var fallbackData = map[catalog.CollectionName]string{
	catalog.Colleges:    `[{"id":"fallback-college"}]`,
	catalog.Specialties: `[{"id":"fallback-specialty"}]`,
	catalog.Tags:        `[{"id":"fallback-tag","category":"domain"}]`,
	catalog.Professions: `[]`,
	catalog.Quizzes:     `[]`,
	catalog.News:        `[{"id":"fallback-news-1"},{"id":"fallback-news-2"}]`,
}

func testFallback(name catalog.CollectionName) ([]byte, error) {
	d, ok := fallbackData[name]
	if !ok {
		return nil, errors.New("no fallback")
	}
	return []byte(d), nil
}

func newTestCache(t *testing.T) (*Cache, *failingSnapshotStore, *memory.Store) {
	t.Helper()
	kv := memory.NewStore()
	fs := &failingSnapshotStore{Repository: snapshot.New(kv)}
	return New(fs, testFallback, nil, zap.NewNop()), fs, kv
}

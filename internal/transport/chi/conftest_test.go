package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/domain/match"
	"github.com/kailas-cloud/careerdex/internal/domain/profile"
	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
	"github.com/kailas-cloud/careerdex/internal/usecase/cache"
	healthuc "github.com/kailas-cloud/careerdex/internal/usecase/health"
	"github.com/kailas-cloud/careerdex/internal/usecase/recommend"
)

type mockCollections struct {
	reads map[catalog.CollectionName]cache.Read
	err   error
}

func (m *mockCollections) Get(_ context.Context, name catalog.CollectionName) (cache.Read, error) {
	if m.err != nil {
		return cache.Read{}, m.err
	}
	r, ok := m.reads[name]
	if !ok {
		return cache.Read{}, domain.ErrNotFound
	}
	return r, nil
}

type mockRecommender struct {
	profiles map[string]profile.Profile
	items    []recommend.Recommendation
	err      error

	gotKind    match.Kind
	gotProfile profile.Profile
}

func (m *mockRecommender) Recommend(
	_ context.Context, kind match.Kind, p profile.Profile,
) ([]recommend.Recommendation, error) {
	m.gotKind = kind
	m.gotProfile = p
	return m.items, m.err
}

func (m *mockRecommender) ProfileFor(_ context.Context, userID string) (profile.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type mockSyncer struct {
	mu        sync.Mutex
	report    domrefresh.Report
	status    domrefresh.SyncState
	refreshed [][]catalog.CollectionName
	written   []catalog.CollectionName
}

func (m *mockSyncer) Refresh(_ context.Context, names ...catalog.CollectionName) domrefresh.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed = append(m.refreshed, names)
	return m.report
}

func (m *mockSyncer) AfterWrite(_ context.Context, name catalog.CollectionName) domrefresh.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, name)
	return m.report
}

func (m *mockSyncer) Status() domrefresh.SyncState { return m.status }

type mockUsers struct {
	data map[string]profile.UserData
	err  error
}

func (m *mockUsers) Get(_ context.Context, userID string) (profile.UserData, error) {
	if m.err != nil {
		return profile.UserData{}, m.err
	}
	u, ok := m.data[userID]
	if !ok {
		u = profile.UserData{UserID: userID}
		u.Normalize()
	}
	return u, nil
}

func (m *mockUsers) Put(_ context.Context, u profile.UserData) error {
	if m.err != nil {
		return m.err
	}
	if m.data == nil {
		m.data = map[string]profile.UserData{}
	}
	m.data[u.UserID] = u
	return nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type testServer struct {
	collections *mockCollections
	recommender *mockRecommender
	syncer      *mockSyncer
	users       *mockUsers
	health      *mockHealth
	handler     http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		collections: &mockCollections{reads: map[catalog.CollectionName]cache.Read{}},
		recommender: &mockRecommender{profiles: map[string]profile.Profile{}},
		syncer:      &mockSyncer{},
		users:       &mockUsers{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{healthuc.CheckStore: healthuc.CheckOK},
		}},
	}
	srv := NewServer(ts.collections, ts.recommender, ts.syncer, ts.users, ts.health, zap.NewNop())
	ts.handler = srv.Router()
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func sampleReport() domrefresh.Report {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return domrefresh.Report{
		Trigger:    domrefresh.TriggerManual,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Outcomes: []domrefresh.Outcome{
			domrefresh.NewOK(catalog.Tags, 3, 1500*time.Millisecond),
			domrefresh.NewError(catalog.Colleges, domain.ErrAggregation, time.Second),
		},
	}
}

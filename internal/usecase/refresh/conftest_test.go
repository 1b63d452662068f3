package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/careerdex/internal/db/memory"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
	"github.com/kailas-cloud/careerdex/internal/repository/snapshot"
	"github.com/kailas-cloud/careerdex/internal/usecase/cache"
)

// --- mock Provider ---

type mockProvider struct {
	mu          sync.Mutex
	pingErr     error
	collections map[catalog.CollectionName][]json.RawMessage
	fetchErr    map[catalog.CollectionName]error
	scoreRows   []catalog.ScoreRow
	scoreErr    error
	versionErr  error

	pings      atomic.Int64
	scoreCalls atomic.Int64
	fetchCalls atomic.Int64
	increments []catalog.CollectionName

	fetchFn func(ctx context.Context, name catalog.CollectionName) ([]json.RawMessage, error)
}

func (m *mockProvider) Ping(_ context.Context) error {
	m.pings.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

func (m *mockProvider) FetchCollection(ctx context.Context, name catalog.CollectionName) ([]json.RawMessage, error) {
	m.fetchCalls.Add(1)
	if m.fetchFn != nil {
		return m.fetchFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fetchErr[name]; err != nil {
		return nil, err
	}
	return m.collections[name], nil
}

func (m *mockProvider) FetchScoreTable(_ context.Context) ([]catalog.ScoreRow, error) {
	m.scoreCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scoreErr != nil {
		return nil, m.scoreErr
	}
	return m.scoreRows, nil
}

func (m *mockProvider) IncrementVersion(_ context.Context, name catalog.CollectionName) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments = append(m.increments, name)
	return m.versionErr
}

func (m *mockProvider) setPingErr(err error) {
	m.mu.Lock()
	m.pingErr = err
	m.mu.Unlock()
}

// --- mock Cache ---

type mockCache struct {
	mu        sync.Mutex
	replaceFn func(ctx context.Context, name catalog.CollectionName, data []byte) error
	writes    []catalog.CollectionName
}

func (m *mockCache) Replace(ctx context.Context, name catalog.CollectionName, data []byte) error {
	m.mu.Lock()
	m.writes = append(m.writes, name)
	m.mu.Unlock()
	if m.replaceFn != nil {
		return m.replaceFn(ctx, name, data)
	}
	return nil
}

// --- recording Observer ---

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []domrefresh.Outcome
	triggers []domrefresh.Trigger
}

func (r *recordingObserver) OnOutcome(t domrefresh.Trigger, o domrefresh.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, t)
	r.outcomes = append(r.outcomes, o)
}

// --- fixtures ---

func raw(t *testing.T, rows ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		if !json.Valid([]byte(r)) {
			t.Fatalf("invalid fixture row: %s", r)
		}
		out = append(out, json.RawMessage(r))
	}
	return out
}

func fixtureProvider(t *testing.T) *mockProvider {
	t.Helper()
	return &mockProvider{
		collections: map[catalog.CollectionName][]json.RawMessage{
			catalog.Colleges: raw(t,
				`{"id":1,"title":"Polytech","short_description":"IT college","city":"Kazan",`+
					`"is_state":"t","has_dormitory":1,"passing_score":"3.9",`+
					`"college_specialties":[{"specialty_id":10},{"specialty_id":11}],`+
					`"college_tags":[{"tag_id":"t1","weight":80}]}`,
				`{"id":2,"title":"Medical","is_state":"no","has_dormitory":"yes","passing_score":4.1}`,
			),
			catalog.Specialties: raw(t,
				`{"id":10,"code":"09.02.07","name":"Programming","duration_years":"3.83","passing_score":4.0,`+
					`"specialty_tags":[{"tag_id":"t1","weight":"80"},{"tag_id":"t2","weight":20}],`+
					`"college_specialties":[{"college_id":1}],"profession_specialties":[{"profession_id":"p1"}]}`,
				`{"id":11,"code":"09.02.06","name":"Networks","passing_score":null}`,
			),
			catalog.Tags: raw(t,
				`{"id":"t1","name":"IT","category":"domain"}`,
				`{"id":"t2","name":"Logic","category":"skill"}`,
			),
			catalog.Professions: raw(t,
				`{"id":"p1","name":"Developer","profession_specialties":[{"specialty_id":10}]}`,
			),
			catalog.Quizzes: raw(t,
				`{"id":"q1","title":"Who am I","is_published":true,"quiz_questions":[`+
					`{"id":"b","text":"Second","position":2,"quiz_answers":[]},`+
					`{"id":"a","text":"First","position":1,"quiz_answers":[`+
					`{"id":"a2","text":"No","position":2},`+
					`{"id":"a1","text":"Yes","position":1,"answer_tags":[{"tag_id":"t1","weight":100}]}]}]}`,
			),
			catalog.News: raw(t,
				`{"id":"n1","title":"Open day","content":"Welcome","created_at":"2025-03-01"}`,
				`{"id":"n2","title":"Results","content":"Scores","published_at":"2025-07-01"}`,
			),
		},
		fetchErr: map[catalog.CollectionName]error{},
		scoreRows: []catalog.ScoreRow{
			{CollegeID: "1", SpecialtyID: "10", AvgScore2025: 4.2},
			{CollegeID: "1", SpecialtyID: "11", AvgScore2025: 4.6},
			{CollegeID: "1", SpecialtyID: "11", AvgScore2025: 0},
		},
	}
}

type harness struct {
	provider *mockProvider
	cache    *cache.Cache
	kv       *memory.Store
	engine   *Engine
	observer *recordingObserver
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	kv := memory.NewStore()
	c := cache.New(snapshot.New(kv), func(catalog.CollectionName) ([]byte, error) {
		return nil, errors.New("no fallback in tests")
	}, nil, zap.NewNop())
	p := fixtureProvider(t)
	obs := &recordingObserver{}
	e := New(p, c, zap.NewNop()).WithObserver(obs)
	return &harness{provider: p, cache: c, kv: kv, engine: e, observer: obs}
}

func (h *harness) persisted(t *testing.T, name catalog.CollectionName) []byte {
	t.Helper()
	data, err := snapshot.New(h.kv).Load(context.Background(), name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return data
}

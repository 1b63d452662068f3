package refresh

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRefreshAll_WritesEveryCollection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	report := h.engine.RefreshAll(ctx)
	if !report.OK() {
		t.Fatalf("expected OK report, failed: %+v", report.Failed())
	}
	if len(report.Outcomes) != len(catalog.AllCollections()) {
		t.Fatalf("expected %d outcomes, got %d", len(catalog.AllCollections()), len(report.Outcomes))
	}
	if h.provider.scoreCalls.Load() != 1 {
		t.Errorf("score table must be fetched once per call, got %d", h.provider.scoreCalls.Load())
	}

	colleges, err := h.cache.Colleges(ctx)
	if err != nil {
		t.Fatalf("Colleges: %v", err)
	}
	if len(colleges) != 2 {
		t.Fatalf("expected 2 colleges, got %d", len(colleges))
	}
	poly := colleges[0]
	if poly.ID != "1" || poly.Name != "Polytech" || poly.Description != "IT college" {
		t.Errorf("fields not renamed: %+v", poly)
	}
	if !poly.IsState || !poly.HasDormitory {
		t.Errorf("boolean-like flags not coerced: %+v", poly)
	}
	if !approx(poly.PassingScore, 4.4) || !approx(poly.BaseScore, 3.9) {
		t.Errorf("expected aggregate 4.4 over base 3.9, got %v / %v", poly.PassingScore, poly.BaseScore)
	}
	if len(poly.SpecialtyIDs) != 2 || poly.SpecialtyIDs[0] != "10" {
		t.Errorf("unexpected specialty ids: %v", poly.SpecialtyIDs)
	}

	med := colleges[1]
	if med.IsState || !med.HasDormitory {
		t.Errorf("unexpected flags: %+v", med)
	}
	if !approx(med.PassingScore, 4.1) {
		t.Errorf("college without score rows must keep base score, got %v", med.PassingScore)
	}
	if med.SpecialtyIDs == nil || med.Specs == nil {
		t.Errorf("absent arrays must default to empty: %+v", med)
	}

	specs, _ := h.cache.Specialties(ctx)
	if !approx(specs[0].PassingScore, 4.2) || !approx(specs[1].PassingScore, 4.6) {
		t.Errorf("unexpected specialty aggregates: %v %v", specs[0].PassingScore, specs[1].PassingScore)
	}
	if specs[0].Specs[0] != (catalog.TagWeight{TagID: "t1", Weight: 80}) {
		t.Errorf("unexpected specs: %+v", specs[0].Specs)
	}
	if !approx(specs[0].DurationYears, 3.83) {
		t.Errorf("unexpected duration: %v", specs[0].DurationYears)
	}

	quizzes, _ := h.cache.Quizzes(ctx)
	q := quizzes[0]
	if q.Questions[0].ID != "a" || q.Questions[0].Answers[0].ID != "a1" {
		t.Errorf("questions and answers must be ordered by position: %+v", q)
	}
	if len(q.Questions[0].Answers[1].Tags) != 0 || q.Questions[0].Answers[1].Tags == nil {
		t.Errorf("absent answer tags must be an empty list")
	}

	news, _ := h.cache.News(ctx)
	if news[0].PublishedAt != "2025-03-01" || news[0].Body != "Welcome" {
		t.Errorf("unexpected news mapping: %+v", news[0])
	}
}

func TestRefreshAll_Idempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.RefreshAll(ctx)
	first := make(map[catalog.CollectionName][]byte)
	for _, name := range catalog.AllCollections() {
		first[name] = h.persisted(t, name)
	}

	h.engine.RefreshAll(ctx)
	for _, name := range catalog.AllCollections() {
		if second := h.persisted(t, name); !bytes.Equal(first[name], second) {
			t.Errorf("%s: snapshots differ\nfirst=%s\nsecond=%s", name, first[name], second)
		}
	}
}

func TestRefresh_ScoreFailureLeavesAggregatesUnchanged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.RefreshAll(ctx)
	before := h.persisted(t, catalog.Colleges)

	h.provider.collections[catalog.Colleges] = raw(t, `{"id":99,"title":"New college"}`)
	h.provider.collections[catalog.Tags] = raw(t, `{"id":"t9","name":"Art","category":"domain"}`)
	h.provider.scoreErr = errors.New("timeout")

	report := h.engine.Refresh(ctx, catalog.Colleges, catalog.Specialties, catalog.Tags)

	for _, name := range []catalog.CollectionName{catalog.Colleges, catalog.Specialties} {
		o, ok := report.Outcome(name)
		if !ok || o.Status() != domrefresh.StatusError {
			t.Fatalf("%s: expected error outcome, got %+v", name, o)
		}
		if !errors.Is(o.Err(), domain.ErrAggregation) {
			t.Errorf("%s: expected ErrAggregation, got %v", name, o.Err())
		}
	}
	if after := h.persisted(t, catalog.Colleges); !bytes.Equal(before, after) {
		t.Errorf("colleges changed after failed aggregation:\nbefore=%s\nafter=%s", before, after)
	}

	o, _ := report.Outcome(catalog.Tags)
	if o.Status() != domrefresh.StatusOK {
		t.Errorf("tags must refresh independently, got %v", o.Err())
	}
	tags, _ := h.cache.Tags(ctx)
	if len(tags) != 1 || tags[0].ID != "t9" {
		t.Errorf("expected refreshed tags, got %+v", tags)
	}
}

func TestRefresh_OfflineIsSkipped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.provider.pingErr = errors.New("no route to host")

	report := h.engine.RefreshAll(ctx)
	if !report.Skipped || report.OK() {
		t.Fatalf("expected skipped report, got %+v", report)
	}
	if h.provider.fetchCalls.Load() != 0 || h.provider.scoreCalls.Load() != 0 {
		t.Error("skipped refresh must not fetch")
	}
	for _, o := range report.Outcomes {
		if o.Status() != domrefresh.StatusSkipped || !errors.Is(o.Err(), domain.ErrRemoteUnavailable) {
			t.Errorf("%s: expected skipped with ErrRemoteUnavailable, got %s %v", o.Collection(), o.Status(), o.Err())
		}
	}

	st := h.engine.Status()
	if st.Online || st.Syncing || !st.LastRefresh.IsZero() {
		t.Errorf("unexpected status: %+v", st)
	}
	if st.LastReport == nil || !st.LastReport.Skipped {
		t.Errorf("expected last report to be the skipped one")
	}
}

func TestRefresh_FailureIsolatedPerCollection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.provider.fetchErr[catalog.Tags] = errors.New("500")

	report := h.engine.RefreshAll(ctx)

	failed := report.Failed()
	if len(failed) != 1 || failed[0].Collection() != catalog.Tags {
		t.Fatalf("expected only tags to fail, got %+v", failed)
	}
	if len(h.observer.outcomes) != len(catalog.AllCollections()) {
		t.Errorf("observer must see every outcome, got %d", len(h.observer.outcomes))
	}
	for _, tr := range h.observer.triggers {
		if tr != domrefresh.TriggerManual {
			t.Errorf("unexpected trigger %s", tr)
		}
	}
	if _, err := h.cache.Colleges(ctx); err != nil {
		t.Errorf("colleges must be written: %v", err)
	}
}

func TestRefresh_MalformedRowAbortsCollection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.provider.collections[catalog.News] = raw(t, `{"id":"n1"}`, `{"id":{"nested":true}}`)

	report := h.engine.Refresh(ctx, catalog.News)
	o, _ := report.Outcome(catalog.News)
	if o.Status() != domrefresh.StatusError {
		t.Fatalf("expected error, got %s", o.Status())
	}
	if _, err := h.kv.Get(ctx, domain.CollectionKey("news")); err == nil {
		t.Error("nothing must be written for a failed collection")
	}
}

func TestRefresh_UnknownCollection(t *testing.T) {
	h := newHarness(t)

	report := h.engine.Refresh(context.Background(), "users", catalog.Tags, catalog.Tags)
	if len(report.Outcomes) != 2 {
		t.Fatalf("duplicates must be collapsed, got %d outcomes", len(report.Outcomes))
	}
	o, _ := report.Outcome("users")
	if o.Status() != domrefresh.StatusSkipped || !errors.Is(o.Err(), domain.ErrUnknownCollection) {
		t.Errorf("expected skipped unknown collection, got %s %v", o.Status(), o.Err())
	}
	if h.provider.scoreCalls.Load() != 0 {
		t.Error("score table is only needed for aggregate collections")
	}
}

func TestRefresh_WriteFailure(t *testing.T) {
	p := fixtureProvider(t)
	mc := &mockCache{replaceFn: func(_ context.Context, name catalog.CollectionName, _ []byte) error {
		if name == catalog.Quizzes {
			return errors.New("disk full")
		}
		return nil
	}}
	e := New(p, mc, zap.NewNop())

	report := e.RefreshAll(context.Background())
	o, _ := report.Outcome(catalog.Quizzes)
	if o.Status() != domrefresh.StatusError {
		t.Errorf("expected write failure, got %s", o.Status())
	}
	if len(report.Failed()) != 1 {
		t.Errorf("other collections must succeed, failed=%+v", report.Failed())
	}
}

func TestAfterWrite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	report := h.engine.AfterWrite(ctx, catalog.Tags)
	if report.Trigger != domrefresh.TriggerPostWrite {
		t.Errorf("expected post_write trigger, got %s", report.Trigger)
	}
	if len(h.provider.increments) != 1 || h.provider.increments[0] != catalog.Tags {
		t.Errorf("expected version increment for tags, got %v", h.provider.increments)
	}
	if len(report.Outcomes) != 1 || !report.OK() {
		t.Errorf("expected a single successful tags refresh, got %+v", report.Outcomes)
	}
}

func TestAfterWrite_VersionFailureStillRefreshes(t *testing.T) {
	h := newHarness(t)
	h.provider.versionErr = errors.New("rpc missing")

	report := h.engine.AfterWrite(context.Background(), catalog.News)
	if !report.OK() {
		t.Errorf("refresh must run even when the version bump fails: %+v", report.Failed())
	}
}

func TestRefresh_SerializedCalls(t *testing.T) {
	p := fixtureProvider(t)

	var (
		mu     sync.Mutex
		active int
		peak   int
	)
	release := make(chan struct{})
	p.fetchFn = func(_ context.Context, name catalog.CollectionName) ([]json.RawMessage, error) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()
		<-release
		mu.Lock()
		active--
		mu.Unlock()
		return raw(t, `{"id":"`+strconv.Itoa(int(p.pings.Load()))+`"}`), nil
	}

	e := New(p, &mockCache{}, zap.NewNop()).WithParallelism(1)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Refresh(context.Background(), catalog.Tags)
		}()
	}
	for i := 0; i < 3; i++ {
		release <- struct{}{}
	}
	wg.Wait()

	if peak != 1 {
		t.Errorf("refresh calls must not overlap, peak=%d", peak)
	}
	if p.fetchCalls.Load() != 3 {
		t.Errorf("every call performs its own fetch, got %d", p.fetchCalls.Load())
	}
}

func TestStatus_AfterSuccess(t *testing.T) {
	h := newHarness(t)
	h.engine.RefreshAll(context.Background())

	st := h.engine.Status()
	if !st.Online || st.Syncing || st.LastRefresh.IsZero() {
		t.Errorf("unexpected status: %+v", st)
	}
	if st.LastReport == nil || !st.LastReport.OK() {
		t.Errorf("expected successful last report")
	}
}

func TestObserverFunc(t *testing.T) {
	var got []catalog.CollectionName
	h := newHarness(t)
	h.engine.WithObserver(ObserverFunc(func(_ domrefresh.Trigger, o domrefresh.Outcome) {
		got = append(got, o.Collection())
	}))

	h.engine.Refresh(context.Background(), catalog.News, catalog.Tags)
	if len(got) != 2 || got[0] != catalog.News || got[1] != catalog.Tags {
		t.Errorf("outcomes must be delivered in request order, got %v", got)
	}
}

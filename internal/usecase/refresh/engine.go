// Package refresh pulls collections from the remote provider, denormalizes
// them and writes them to the tiered cache.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
	"github.com/kailas-cloud/careerdex/internal/metrics"
)

// DefaultParallelism is the number of collections refreshed at once.
const DefaultParallelism = 4

// Engine orchestrates collection refreshes.
//
// Refresh calls are serialized: a call that starts while another is running
// waits for it and then performs its own full fetch, so the last-started call
// is also the last writer. Failures never surface as errors; they are reported
// per collection in the returned Report and to the Observer.
type Engine struct {
	provider    Provider
	cache       Cache
	observer    Observer
	logger      *zap.Logger
	parallelism int
	now         func() time.Time

	runMu sync.Mutex

	mu          sync.RWMutex
	online      bool
	probed      bool
	syncing     bool
	lastRefresh time.Time
	lastReport  *domrefresh.Report
}

// New creates a sync engine.
func New(provider Provider, cache Cache, logger *zap.Logger) *Engine {
	return &Engine{
		provider:    provider,
		cache:       cache,
		logger:      logger,
		parallelism: DefaultParallelism,
		now:         time.Now,
	}
}

// WithObserver sets the observer that receives every collection outcome.
func (e *Engine) WithObserver(o Observer) *Engine {
	e.observer = o
	return e
}

// WithParallelism configures how many collections are refreshed concurrently.
func (e *Engine) WithParallelism(n int) *Engine {
	if n > 0 {
		e.parallelism = n
	}
	return e
}

// RefreshAll refreshes every tracked collection.
func (e *Engine) RefreshAll(ctx context.Context) domrefresh.Report {
	return e.run(ctx, domrefresh.TriggerManual, catalog.AllCollections())
}

// Refresh refreshes the named collections. With no names it refreshes all of them.
func (e *Engine) Refresh(ctx context.Context, names ...catalog.CollectionName) domrefresh.Report {
	if len(names) == 0 {
		names = catalog.AllCollections()
	}
	return e.run(ctx, domrefresh.TriggerManual, names)
}

// Trigger refreshes every collection on behalf of an explicit trigger.
func (e *Engine) Trigger(ctx context.Context, t domrefresh.Trigger) domrefresh.Report {
	return e.run(ctx, t, catalog.AllCollections())
}

// AfterWrite advances the remote version counter of name and refreshes it.
// A failed version increment is logged; the refresh still runs.
func (e *Engine) AfterWrite(ctx context.Context, name catalog.CollectionName) domrefresh.Report {
	if name.IsValid() {
		if err := e.provider.IncrementVersion(ctx, name); err != nil {
			e.logger.Warn("Failed to increment collection version",
				zap.String("collection", string(name)), zap.Error(err))
		}
	}
	return e.run(ctx, domrefresh.TriggerPostWrite, []catalog.CollectionName{name})
}

// Status returns the state for an offline/syncing indicator.
func (e *Engine) Status() domrefresh.SyncState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := domrefresh.SyncState{
		Online:      e.online,
		Syncing:     e.syncing,
		LastRefresh: e.lastRefresh,
	}
	if e.lastReport != nil {
		r := *e.lastReport
		r.Outcomes = append([]domrefresh.Outcome(nil), e.lastReport.Outcomes...)
		st.LastReport = &r
	}
	return st
}

func (e *Engine) run(ctx context.Context, trigger domrefresh.Trigger, names []catalog.CollectionName) domrefresh.Report {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	e.setSyncing(true)
	defer e.setSyncing(false)

	report := domrefresh.Report{Trigger: trigger, StartedAt: e.now()}
	names = dedupe(names)

	if err := e.provider.Ping(ctx); err != nil {
		e.setOnline(false)
		e.logger.Info("Remote provider unreachable, keeping cached data",
			zap.String("trigger", string(trigger)), zap.Error(err))

		cause := fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
		report.Skipped = true
		report.Outcomes = make([]domrefresh.Outcome, 0, len(names))
		for _, name := range names {
			report.Outcomes = append(report.Outcomes, domrefresh.NewSkipped(name, cause))
			metrics.RefreshTotal.WithLabelValues(string(name), string(domrefresh.StatusSkipped)).Inc()
		}
		return e.finish(trigger, report)
	}
	e.setOnline(true)

	scores, scoreErr := e.fetchScores(ctx, names)

	outcomes := make([]domrefresh.Outcome, len(names))
	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, name := range names {
		g.Go(func() error {
			outcomes[i] = e.refreshOne(ctx, name, scores, scoreErr)
			return nil
		})
	}
	_ = g.Wait()

	report.Outcomes = outcomes
	return e.finish(trigger, report)
}

// fetchScores loads the score table once for every aggregate collection in names.
func (e *Engine) fetchScores(ctx context.Context, names []catalog.CollectionName) (*scoreIndex, error) {
	needed := false
	for _, name := range names {
		if name.NeedsScores() {
			needed = true
			break
		}
	}
	if !needed {
		return nil, nil
	}

	rows, err := e.provider.FetchScoreTable(ctx)
	if err != nil {
		e.logger.Warn("Failed to fetch score table, aggregate collections stay unchanged", zap.Error(err))
		return nil, fmt.Errorf("%w: fetch score table: %w", domain.ErrAggregation, err)
	}
	return newScoreIndex(rows), nil
}

func (e *Engine) refreshOne(
	ctx context.Context,
	name catalog.CollectionName,
	scores *scoreIndex,
	scoreErr error,
) domrefresh.Outcome {
	start := time.Now()

	if !name.IsValid() {
		return domrefresh.NewSkipped(name, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, name))
	}

	// Агрегаты без таблицы баллов не пишем: коллекция остаётся как была.
	if name.NeedsScores() && scoreErr != nil {
		return e.fail(name, scoreErr, start)
	}

	raw, err := e.provider.FetchCollection(ctx, name)
	if err != nil {
		return e.fail(name, fmt.Errorf("fetch: %w", err), start)
	}

	data, n, err := denormalize(name, raw, scores)
	if err != nil {
		return e.fail(name, fmt.Errorf("denormalize: %w", err), start)
	}

	if err := e.cache.Replace(ctx, name, data); err != nil {
		return e.fail(name, fmt.Errorf("write: %w", err), start)
	}

	d := time.Since(start)
	metrics.RefreshTotal.WithLabelValues(string(name), string(domrefresh.StatusOK)).Inc()
	metrics.RefreshDuration.WithLabelValues(string(name)).Observe(d.Seconds())
	metrics.RefreshRecords.WithLabelValues(string(name)).Set(float64(n))
	e.logger.Debug("Collection refreshed",
		zap.String("collection", string(name)),
		zap.Int("records", n),
		zap.Duration("duration", d),
	)
	return domrefresh.NewOK(name, n, d)
}

func (e *Engine) fail(name catalog.CollectionName, err error, start time.Time) domrefresh.Outcome {
	d := time.Since(start)
	metrics.RefreshTotal.WithLabelValues(string(name), string(domrefresh.StatusError)).Inc()
	metrics.RefreshDuration.WithLabelValues(string(name)).Observe(d.Seconds())

	level := e.logger.Error
	if errors.Is(err, context.Canceled) {
		level = e.logger.Warn
	}
	level("Collection refresh failed",
		zap.String("collection", string(name)),
		zap.Duration("duration", d),
		zap.Error(err),
	)
	return domrefresh.NewError(name, err, d)
}

func (e *Engine) finish(trigger domrefresh.Trigger, report domrefresh.Report) domrefresh.Report {
	report.FinishedAt = e.now()

	e.mu.Lock()
	if !report.Skipped {
		e.lastRefresh = report.FinishedAt
	}
	stored := report
	stored.Outcomes = append([]domrefresh.Outcome(nil), report.Outcomes...)
	e.lastReport = &stored
	e.mu.Unlock()

	if e.observer != nil {
		for _, o := range report.Outcomes {
			e.observer.OnOutcome(trigger, o)
		}
	}

	e.logger.Info("Refresh finished",
		zap.String("trigger", string(trigger)),
		zap.Bool("skipped", report.Skipped),
		zap.Int("collections", len(report.Outcomes)),
		zap.Int("failed", len(report.Failed())),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report
}

func (e *Engine) setSyncing(v bool) {
	e.mu.Lock()
	e.syncing = v
	e.mu.Unlock()
}

// setOnline records a connectivity probe and returns the previous state and
// whether any probe had happened before.
func (e *Engine) setOnline(v bool) (was, probed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	was, probed = e.online, e.probed
	e.online = v
	e.probed = true
	if v {
		metrics.RemoteOnline.Set(1)
	} else {
		metrics.RemoteOnline.Set(0)
	}
	return was, probed
}

func dedupe(names []catalog.CollectionName) []catalog.CollectionName {
	seen := make(map[catalog.CollectionName]struct{}, len(names))
	out := make([]catalog.CollectionName, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Package careerdex is an embeddable career-guidance catalog: a tiered
// offline cache of colleges, specialties and related collections, a refresh
// engine that pulls them from a remote backend, and interest matching.
package careerdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/careerdex/internal/bundle"
	"github.com/kailas-cloud/careerdex/internal/db"
	dbBadger "github.com/kailas-cloud/careerdex/internal/db/badger"
	dbMemory "github.com/kailas-cloud/careerdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/careerdex/internal/db/redis"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/domain/match"
	"github.com/kailas-cloud/careerdex/internal/repository/snapshot"
	"github.com/kailas-cloud/careerdex/internal/repository/userdata"
	"github.com/kailas-cloud/careerdex/internal/transport/breaker"
	"github.com/kailas-cloud/careerdex/internal/transport/postgres"
	"github.com/kailas-cloud/careerdex/internal/transport/rest"
	"github.com/kailas-cloud/careerdex/internal/usecase/cache"
	"github.com/kailas-cloud/careerdex/internal/usecase/matching"
	"github.com/kailas-cloud/careerdex/internal/usecase/recommend"
	"github.com/kailas-cloud/careerdex/internal/usecase/refresh"
)

const defaultReadinessTimeout = 10 * time.Second

// ErrNoRemote is returned by refresh calls on a client built without a remote backend.
var ErrNoRemote = errors.New("careerdex: remote backend not configured (use WithPostgres or WithREST)")

// Client is the careerdex SDK entry point. Reads never touch the network.
type Client struct {
	store       db.Store
	cache       *cache.Cache
	users       *userdata.Repository
	recommender *recommend.Service
	engine      *refresh.Engine
	closeRemote func()
	logger      *zap.Logger
	sdkMetrics  *sdkMetrics
}

// New creates a Client. Without a store option the persistent tier lives in
// memory; without a remote option the client serves cached and bundled data only.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		storeDriver:      db.DriverMemory,
		domainMultiplier: matching.DefaultDomainMultiplier,
		breadthBonus:     matching.DefaultBreadthBonus,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	for kind, th := range cfg.tiers {
		if err := th.Validate(); err != nil {
			return nil, fmt.Errorf("careerdex: tiers for %s: %w", kind, err)
		}
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("careerdex: store not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.storeDriver {
	case db.DriverMemory:
		return dbMemory.NewStore(), nil
	case db.DriverBadger:
		s, err := dbBadger.NewStore(dbBadger.Config{Path: cfg.storePath})
		if err != nil {
			return nil, fmt.Errorf("careerdex: create badger store: %w", err)
		}
		return s, nil
	case db.DriverRedis, db.DriverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("careerdex: create %s store: %w", cfg.storeDriver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("careerdex: unknown store driver %q", cfg.storeDriver)
	}
}

func createRemote(ctx context.Context, cfg *clientConfig) (breaker.Provider, func(), error) {
	switch cfg.remoteDriver {
	case "":
		return nil, func() {}, nil
	case "postgres":
		p, err := postgres.New(ctx, postgres.Config{DSN: cfg.dsn, Timeout: cfg.remoteTimeout})
		if err != nil {
			return nil, nil, fmt.Errorf("careerdex: create postgres provider: %w", err)
		}
		return p, p.Close, nil
	case "rest":
		p, err := rest.New(rest.Config{BaseURL: cfg.baseURL, APIKey: cfg.apiKey, Timeout: cfg.remoteTimeout})
		if err != nil {
			return nil, nil, fmt.Errorf("careerdex: create rest provider: %w", err)
		}
		return p, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("careerdex: unknown remote driver %q", cfg.remoteDriver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig) (*Client, error) {
	remote, closeRemote, err := createRemote(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var m *sdkMetrics
	if cfg.metricsReg != nil {
		if m, err = newSDKMetrics(cfg.metricsReg); err != nil {
			closeRemote()
			return nil, err
		}
	}

	var reads *prometheus.CounterVec
	if m != nil {
		reads = m.cacheReads
	}
	catalogCache := cache.New(snapshot.New(store), bundle.Load, reads, cfg.logger)
	users := userdata.New(store)

	c := &Client{
		store: store,
		cache: catalogCache,
		users: users,
		recommender: recommend.New(catalogCache, users, recommend.Config{
			DomainMultiplier: cfg.domainMultiplier,
			BreadthBonus:     cfg.breadthBonus,
			LikeBoost:        cfg.likeBoost,
			Tiers:            cfg.tiers,
		}),
		closeRemote: closeRemote,
		logger:      cfg.logger,
		sdkMetrics:  m,
	}
	if remote != nil {
		guarded := breaker.New(remote, breaker.Config{Name: cfg.remoteDriver}, cfg.logger)
		c.engine = refresh.New(guarded, catalogCache, cfg.logger)
		if cfg.parallelism > 0 {
			c.engine = c.engine.WithParallelism(cfg.parallelism)
		}
		if m != nil {
			c.engine = c.engine.WithObserver(m)
		}
	}
	return c, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.closeRemote != nil {
		c.closeRemote()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks the persistent store.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Refresh pulls the named collections (all when none are given) from the
// remote backend. Per-collection failures are reported, not returned.
func (c *Client) Refresh(ctx context.Context, collections ...string) (Report, error) {
	if c.engine == nil {
		return Report{}, ErrNoRemote
	}
	names := make([]catalog.CollectionName, 0, len(collections))
	for _, raw := range collections {
		name, err := catalog.ParseCollectionName(raw)
		if err != nil {
			return Report{}, fmt.Errorf("careerdex: %w", err)
		}
		names = append(names, name)
	}
	return c.engine.Refresh(ctx, names...), nil
}

// CollectionWritten bumps the remote version of a collection after an
// external write and refreshes it.
func (c *Client) CollectionWritten(ctx context.Context, collection string) (Report, error) {
	if c.engine == nil {
		return Report{}, ErrNoRemote
	}
	name, err := catalog.ParseCollectionName(collection)
	if err != nil {
		return Report{}, fmt.Errorf("careerdex: %w", err)
	}
	return c.engine.AfterWrite(ctx, name), nil
}

// Watch probes the remote backend every interval and refreshes everything
// when it comes back online. It blocks until ctx is canceled.
func (c *Client) Watch(ctx context.Context, interval time.Duration) error {
	if c.engine == nil {
		return ErrNoRemote
	}
	refresh.NewMonitor(c.engine, interval, c.logger).Run(ctx)
	return nil
}

// Status reports connectivity and the last refresh. A client without a
// remote backend is always offline.
func (c *Client) Status() Status {
	if c.engine == nil {
		return Status{}
	}
	return c.engine.Status()
}

// Colleges returns cached colleges.
func (c *Client) Colleges(ctx context.Context) ([]College, error) { return c.cache.Colleges(ctx) }

// Specialties returns cached specialties.
func (c *Client) Specialties(ctx context.Context) ([]Specialty, error) {
	return c.cache.Specialties(ctx)
}

// Tags returns cached tags.
func (c *Client) Tags(ctx context.Context) ([]Tag, error) { return c.cache.Tags(ctx) }

// Professions returns cached professions.
func (c *Client) Professions(ctx context.Context) ([]Profession, error) {
	return c.cache.Professions(ctx)
}

// Quizzes returns cached quizzes with questions and answers in display order.
func (c *Client) Quizzes(ctx context.Context) ([]Quiz, error) { return c.cache.Quizzes(ctx) }

// News returns cached news.
func (c *Client) News(ctx context.Context) ([]News, error) { return c.cache.News(ctx) }

// RecommendColleges ranks colleges for p.
func (c *Client) RecommendColleges(ctx context.Context, p Profile) ([]Recommendation, error) {
	return c.recommender.Recommend(ctx, match.KindCollege, p)
}

// RecommendSpecialties ranks specialties for p.
func (c *Client) RecommendSpecialties(ctx context.Context, p Profile) ([]Recommendation, error) {
	return c.recommender.Recommend(ctx, match.KindSpecialty, p)
}

// ProfileFor builds an interest profile from a user's quiz results and likes.
func (c *Client) ProfileFor(ctx context.Context, userID string) (Profile, error) {
	return c.recommender.ProfileFor(ctx, userID)
}

// User loads user-scoped data. Unknown users get an empty record.
func (c *Client) User(ctx context.Context, userID string) (UserData, error) {
	return c.users.Get(ctx, userID)
}

// SaveUser stores user-scoped data.
func (c *Client) SaveUser(ctx context.Context, u UserData) error {
	return c.users.Put(ctx, u)
}

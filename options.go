package careerdex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/careerdex/internal/db"
	"github.com/kailas-cloud/careerdex/internal/domain/match"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	storeDriver string
	storePath   string
	addrs       []string
	password    string
	standalone  bool

	remoteDriver  string
	dsn           string
	baseURL       string
	apiKey        string
	remoteTimeout time.Duration

	parallelism      int
	domainMultiplier float64
	breadthBonus     float64
	likeBoost        float64
	tiers            match.TierTable

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithBadger keeps the persistent cache tier in a BadgerDB directory.
func WithBadger(path string) Option {
	return func(c *clientConfig) {
		c.storeDriver = db.DriverBadger
		c.storePath = path
	}
}

// WithValkey keeps the persistent cache tier in Valkey.
func WithValkey(addr, password string) Option {
	return func(c *clientConfig) {
		c.storeDriver = db.DriverValkey
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithRedis keeps the persistent cache tier in Redis.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.storeDriver = db.DriverRedis
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithStandalone forces a single-node Redis/Valkey client.
func WithStandalone() Option {
	return func(c *clientConfig) {
		c.standalone = true
	}
}

// WithMemoryStore keeps the persistent tier in process memory. This is the default.
func WithMemoryStore() Option {
	return func(c *clientConfig) {
		c.storeDriver = db.DriverMemory
	}
}

// WithPostgres reads the remote catalog directly from Postgres.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.remoteDriver = "postgres"
		c.dsn = dsn
	}
}

// WithREST reads the remote catalog through a PostgREST endpoint.
func WithREST(baseURL, apiKey string) Option {
	return func(c *clientConfig) {
		c.remoteDriver = "rest"
		c.baseURL = baseURL
		c.apiKey = apiKey
	}
}

// WithRemoteTimeout bounds every remote call.
func WithRemoteTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.remoteTimeout = d
	}
}

// WithParallelism caps concurrent collection refreshes.
func WithParallelism(n int) Option {
	return func(c *clientConfig) {
		c.parallelism = n
	}
}

// WithMatching overrides the domain multiplier and breadth bonus.
func WithMatching(domainMultiplier, breadthBonus float64) Option {
	return func(c *clientConfig) {
		c.domainMultiplier = domainMultiplier
		c.breadthBonus = breadthBonus
	}
}

// WithLikeBoost sets the interest added per liked entity tag.
func WithLikeBoost(boost float64) Option {
	return func(c *clientConfig) {
		c.likeBoost = boost
	}
}

// WithLogger sets a zap logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithPrometheus registers SDK metrics (cache reads by tier, refresh outcomes)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.metricsReg = reg
	}
}

// WithTiers overrides tier thresholds per kind. Kinds not in t keep the defaults.
func WithTiers(t TierTable) Option {
	return func(c *clientConfig) {
		if c.tiers == nil {
			c.tiers = match.DefaultTierTable()
		}
		for kind, th := range t {
			c.tiers[kind] = th
		}
	}
}

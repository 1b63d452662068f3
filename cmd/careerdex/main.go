package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/careerdex/internal/bundle"
	"github.com/kailas-cloud/careerdex/internal/config"
	"github.com/kailas-cloud/careerdex/internal/db"
	dbBadger "github.com/kailas-cloud/careerdex/internal/db/badger"
	dbMemory "github.com/kailas-cloud/careerdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/careerdex/internal/db/redis"
	"github.com/kailas-cloud/careerdex/internal/domain/match"
	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
	logpkg "github.com/kailas-cloud/careerdex/internal/logger"
	"github.com/kailas-cloud/careerdex/internal/metrics"
	"github.com/kailas-cloud/careerdex/internal/repository/snapshot"
	"github.com/kailas-cloud/careerdex/internal/repository/userdata"
	"github.com/kailas-cloud/careerdex/internal/transport/breaker"
	chiTransport "github.com/kailas-cloud/careerdex/internal/transport/chi"
	"github.com/kailas-cloud/careerdex/internal/transport/postgres"
	"github.com/kailas-cloud/careerdex/internal/transport/rest"
	"github.com/kailas-cloud/careerdex/internal/usecase/cache"
	healthuc "github.com/kailas-cloud/careerdex/internal/usecase/health"
	"github.com/kailas-cloud/careerdex/internal/usecase/recommend"
	"github.com/kailas-cloud/careerdex/internal/usecase/refresh"
	"github.com/kailas-cloud/careerdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting careerdex",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("remote_driver", cfg.Remote.Driver),
	)

	metrics.RegisterSyncMetrics()

	store, err := buildStore(cfg.Store)
	if err != nil {
		logger.Fatal("Failed to create store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Store not ready", zap.Error(err))
	}
	logger.Info("Connected to store")

	remote, closeRemote, err := buildRemote(ctx, cfg.Remote)
	if err != nil {
		logger.Fatal("Failed to create remote provider", zap.Error(err))
	}
	defer closeRemote()

	guarded := breaker.New(remote, breaker.Config{
		Name:             cfg.Remote.Driver,
		MaxRequests:      cfg.Remote.Breaker.HalfOpenRequests,
		Timeout:          time.Duration(cfg.Remote.Breaker.OpenTimeoutSec) * time.Second,
		FailureThreshold: cfg.Remote.Breaker.FailureThreshold,
	}, logger)

	// Tiered cache: memory -> persistent store -> bundled fallback
	snapshots := snapshot.New(store)
	catalogCache := cache.New(snapshots, bundle.Load, metrics.CacheReadsTotal, logger)
	users := userdata.New(store)

	engine := refresh.New(guarded, catalogCache, logger).
		WithParallelism(cfg.Sync.Parallelism)
	monitor := refresh.NewMonitor(engine, time.Duration(cfg.Sync.MonitorIntervalSec)*time.Second, logger)

	recommendSvc := recommend.New(catalogCache, users, recommend.Config{
		DomainMultiplier: cfg.Matching.DomainMultiplier,
		BreadthBonus:     cfg.Matching.BreadthBonus,
		LikeBoost:        cfg.Matching.LikeBoost,
		Tiers:            tierTable(cfg.Matching.Tiers),
	})
	healthSvc := healthuc.New(store, guarded)

	server := chiTransport.NewServer(catalogCache, recommendSvc, engine, users, healthSvc, logger)

	if cfg.Sync.RefreshOnStartup {
		go func() {
			report := engine.Trigger(ctx, domrefresh.TriggerStartup)
			logger.Info("Startup refresh done",
				zap.Bool("skipped", report.Skipped),
				zap.Int("failed", len(report.Failed())),
			)
		}()
	}
	go monitor.Run(ctx)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildStore creates the persistent cache tier for the configured driver.
func buildStore(cfg config.StoreConfig) (db.Store, error) {
	switch cfg.Driver {
	case db.DriverBadger:
		return dbBadger.NewStore(dbBadger.Config{Path: cfg.Path})
	case db.DriverRedis, db.DriverValkey:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Addrs,
			Password:   cfg.Password,
			Standalone: cfg.Standalone,
		})
	case db.DriverMemory:
		return dbMemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// buildRemote creates the remote catalog provider and its cleanup func.
func buildRemote(ctx context.Context, cfg config.RemoteConfig) (breaker.Provider, func(), error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	switch cfg.Driver {
	case "postgres":
		p, err := postgres.New(ctx, postgres.Config{
			DSN:      cfg.DSN,
			MaxConns: cfg.MaxConns,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case "rest":
		p, err := rest.New(rest.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown remote driver %q", cfg.Driver)
	}
}

func tierTable(tiers map[string]config.TierConfig) match.TierTable {
	table := match.DefaultTierTable()
	for raw, t := range tiers {
		kind, err := match.ParseKind(raw)
		if err != nil {
			continue
		}
		table[kind] = match.Thresholds{Gold: t.Gold, Elevated: t.Elevated}
	}
	return table
}

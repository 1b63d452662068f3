// Package postgres implements the remote data provider over a Postgres
// database with pgx. Every collection query returns one JSON document per
// row with its join tables nested as arrays.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/metrics"
)

const backend = "postgres"

// pool is the subset of *pgxpool.Pool the provider uses.
type pool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// Config holds the connection settings.
type Config struct {
	DSN      string
	MaxConns int32
	// Timeout bounds every query. Zero means no limit beyond the caller's context.
	Timeout time.Duration
}

// Provider reads catalog collections from Postgres.
type Provider struct {
	pool    pool
	timeout time.Duration
}

// New opens a connection pool. The database is not contacted until first use.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	return &Provider{pool: p, timeout: cfg.Timeout}, nil
}

func newWithPool(p pool, timeout time.Duration) *Provider {
	return &Provider{pool: p, timeout: timeout}
}

// Close releases the pool.
func (p *Provider) Close() {
	p.pool.Close()
}

// Ping checks database reachability.
func (p *Provider) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemote(backend, "ping", start, err) }()

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if err = p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
	return nil
}

// FetchCollection returns the raw rows of name.
func (p *Provider) FetchCollection(ctx context.Context, name catalog.CollectionName) (out []json.RawMessage, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemote(backend, "fetch_"+string(name), start, err) }()

	query, ok := collectionQueries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, name)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc []byte
		if err = rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		out = append(out, json.RawMessage(doc))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if out == nil {
		out = []json.RawMessage{}
	}
	return out, nil
}

// FetchScoreTable returns every college/specialty score row.
func (p *Provider) FetchScoreTable(ctx context.Context) (out []catalog.ScoreRow, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemote(backend, "fetch_scores", start, err) }()

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, scoreQuery)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r catalog.ScoreRow
		if err = rows.Scan(&r.CollegeID, &r.SpecialtyID, &r.AvgScore2025); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	return out, nil
}

// IncrementVersion bumps the version counter of name.
func (p *Provider) IncrementVersion(ctx context.Context, name catalog.CollectionName) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemote(backend, "increment_version", start, err) }()

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if _, err = p.pool.Exec(ctx, incrementVersionQuery, string(name)); err != nil {
		return fmt.Errorf("increment version %s: %w", name, err)
	}
	return nil
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

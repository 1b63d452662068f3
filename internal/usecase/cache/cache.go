// Package cache implements the tiered collection cache: an in-process memory
// tier, a persistent key-value tier and a bundled fallback dataset.
//
// Every write goes through Replace, which updates the persistent tier and then
// the memory tier while holding the collection's write lock, so readers never
// observe the two tiers out of step. Reads never reach the network.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/repository/snapshot"
)

// Tier names the level a read was served from.
type Tier string

// Cache tiers, fastest first.
const (
	TierMemory     Tier = "memory"
	TierPersistent Tier = "persistent"
	TierFallback   Tier = "fallback"
)

// Read is a raw snapshot together with the tier that served it.
type Read struct {
	Data []byte
	Tier Tier
}

type entry struct {
	mu   sync.RWMutex
	data []byte
}

// Cache is the explicit, injectable cache object shared by the sync engine
// and read consumers.
type Cache struct {
	persistent SnapshotStore
	fallback   FallbackFunc
	entries    map[catalog.CollectionName]*entry
	reads      *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a Cache with an empty memory tier.
// reads is a counter vec with labels "collection" and "tier"; it may be nil.
func New(
	persistent SnapshotStore,
	fallback FallbackFunc,
	reads *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	entries := make(map[catalog.CollectionName]*entry)
	for _, name := range catalog.AllCollections() {
		entries[name] = &entry{}
	}
	return &Cache{
		persistent: persistent,
		fallback:   fallback,
		entries:    entries,
		reads:      reads,
		logger:     logger,
	}
}

// Get returns the freshest available snapshot for name without a network call.
func (c *Cache) Get(ctx context.Context, name catalog.CollectionName) (Read, error) {
	return c.resolve(ctx, name, snapshot.Count)
}

// Replace writes data to the persistent tier and then the memory tier as one
// step. On a persistent failure the memory tier keeps its previous snapshot.
func (c *Cache) Replace(ctx context.Context, name catalog.CollectionName, data []byte) error {
	e, ok := c.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCollection, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := c.persistent.Save(ctx, name, data); err != nil {
		return fmt.Errorf("persist %s: %w", name, err)
	}
	e.data = append([]byte(nil), data...)
	return nil
}

// Invalidate drops the memory tier for name. The next read goes to the
// persistent tier until a refresh repopulates memory.
func (c *Cache) Invalidate(name catalog.CollectionName) {
	e, ok := c.entries[name]
	if !ok {
		return
	}
	e.mu.Lock()
	e.data = nil
	e.mu.Unlock()
}

// resolve walks memory -> persistent -> fallback. decode validates a
// persisted snapshot and reports its record count; a failure demotes the read
// to the fallback tier. The memory tier is never back-filled here, and a
// memory hit returns a copy so callers cannot mutate the cached snapshot.
func (c *Cache) resolve(
	ctx context.Context,
	name catalog.CollectionName,
	decode func([]byte) (int, error),
) (Read, error) {
	e, ok := c.entries[name]
	if !ok {
		return Read{}, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, name)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.data != nil {
		if _, err := decode(e.data); err == nil {
			c.incRead(name, TierMemory)
			return Read{Data: append([]byte(nil), e.data...), Tier: TierMemory}, nil
		}
		c.logger.Error("Memory snapshot failed to decode", zap.String("collection", string(name)))
	}

	if data, ok := c.loadPersistent(ctx, name, decode); ok {
		c.incRead(name, TierPersistent)
		return Read{Data: data, Tier: TierPersistent}, nil
	}

	data, err := c.fallback(name)
	if err != nil {
		return Read{}, fmt.Errorf("fallback %s: %w", name, err)
	}
	if _, err := decode(data); err != nil {
		return Read{}, fmt.Errorf("fallback %s: %w", name, err)
	}
	c.incRead(name, TierFallback)
	return Read{Data: data, Tier: TierFallback}, nil
}

func (c *Cache) loadPersistent(
	ctx context.Context,
	name catalog.CollectionName,
	decode func([]byte) (int, error),
) ([]byte, bool) {
	data, err := c.persistent.Load(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("Failed to load persisted snapshot",
				zap.String("collection", string(name)), zap.Error(err))
		}
		return nil, false
	}

	n, err := decode(data)
	if err != nil {
		c.logger.Warn("Failed to parse persisted snapshot",
			zap.String("collection", string(name)), zap.Error(err))
		return nil, false
	}

	// A lone persisted news record is a placeholder left by an earlier
	// backend state; the bundled feed is preferred over it.
	if name == catalog.News && n == 1 {
		c.logger.Debug("Ignoring single-record news snapshot")
		return nil, false
	}
	return data, true
}

func (c *Cache) incRead(name catalog.CollectionName, tier Tier) {
	if c.reads != nil {
		c.reads.WithLabelValues(string(name), string(tier)).Inc()
	}
}

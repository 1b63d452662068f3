package db

import (
	"context"
	"time"
)

// Store is the persistent key-value facade the cache tiers rely on.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations over string-serialized values.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Driver names accepted by configuration.
const (
	DriverBadger = "badger"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverMemory = "memory"
)

package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"

	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
)

// DefaultMonitorInterval is how often the monitor probes the remote provider.
const DefaultMonitorInterval = 30 * time.Second

// Monitor probes the remote provider and fires a connectivity_restored
// refresh on every offline to online transition. It detects connectivity
// only; there is no staleness expiry.
type Monitor struct {
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger
}

// NewMonitor creates a connectivity monitor for engine.
func NewMonitor(engine *Engine, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	return &Monitor{engine: engine, interval: interval, logger: logger}
}

// Run probes until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe checks connectivity once. It returns the refresh report when the probe
// observed a transition back online, nil otherwise.
func (m *Monitor) Probe(ctx context.Context) *domrefresh.Report {
	err := m.engine.provider.Ping(ctx)
	online := err == nil
	was, probed := m.engine.setOnline(online)

	if !online {
		if was {
			m.logger.Warn("Remote provider went offline", zap.Error(err))
		}
		return nil
	}
	if was || !probed {
		return nil
	}

	m.logger.Info("Remote provider back online, refreshing")
	report := m.engine.Trigger(ctx, domrefresh.TriggerConnectivityRestored)
	return &report
}

package careerdex

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	cacheReads *prometheus.CounterVec
	refreshes  *prometheus.CounterVec
	refreshDur *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		cacheReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careerdex",
			Subsystem: "sdk",
			Name:      "cache_reads_total",
			Help:      "Collection reads by the tier that served them.",
		}, []string{"collection", "tier"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careerdex",
			Subsystem: "sdk",
			Name:      "refresh_total",
			Help:      "Collection refreshes by trigger and status.",
		}, []string{"collection", "trigger", "status"}),
		refreshDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "careerdex",
			Subsystem: "sdk",
			Name:      "refresh_duration_seconds",
			Help:      "Collection refresh duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
	}
	if err := registerOrReuse(reg, &m.cacheReads); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.refreshes); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.refreshDur); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("careerdex: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("careerdex: register metric: %w", err)
	}
	return nil
}

// OnOutcome records one collection refresh.
func (m *sdkMetrics) OnOutcome(trigger domrefresh.Trigger, o domrefresh.Outcome) {
	m.refreshes.WithLabelValues(string(o.Collection()), string(trigger), string(o.Status())).Inc()
	if o.Status() != domrefresh.StatusSkipped {
		m.refreshDur.WithLabelValues(string(o.Collection())).Observe(o.Duration().Seconds())
	}
}

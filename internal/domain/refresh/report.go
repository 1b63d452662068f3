package refresh

import (
	"time"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
)

// Trigger names why a refresh ran.
type Trigger string

// Refresh triggers. There is no timer-driven expiry.
const (
	TriggerStartup              Trigger = "startup"
	TriggerConnectivityRestored Trigger = "connectivity_restored"
	TriggerPostWrite            Trigger = "post_write"
	TriggerManual               Trigger = "manual"
)

// Report aggregates the outcomes of one refresh call.
type Report struct {
	Trigger    Trigger
	StartedAt  time.Time
	FinishedAt time.Time
	// Skipped is set when the remote provider was unreachable and nothing ran.
	Skipped  bool
	Outcomes []Outcome
}

// Outcome returns the outcome for name.
func (r Report) Outcome(name catalog.CollectionName) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Collection() == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// OK reports whether every attempted collection succeeded.
func (r Report) OK() bool {
	if r.Skipped {
		return false
	}
	for _, o := range r.Outcomes {
		if o.Status() != StatusOK {
			return false
		}
	}
	return true
}

// Failed returns the outcomes that did not succeed.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status() != StatusOK {
			out = append(out, o)
		}
	}
	return out
}

// SyncState is a point-in-time view for an offline/syncing indicator.
type SyncState struct {
	Online      bool
	Syncing     bool
	LastRefresh time.Time
	LastReport  *Report
}

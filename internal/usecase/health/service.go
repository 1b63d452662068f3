package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means reads are served from cache while the remote is unreachable.
	Degraded Status = "degraded"
	// Unhealthy means the persistent store is down and refreshes cannot be written.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckStore  = "store"
	CheckRemote = "remote"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store  StorePinger
	remote RemotePinger
}

// New creates a Service. remote can be nil.
func New(store StorePinger, remote RemotePinger) *Service {
	return &Service{store: store, remote: remote}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if s.remote != nil {
		if err := s.remote.Ping(ctx); err != nil {
			checks[CheckRemote] = CheckError
			status = Degraded
		} else {
			checks[CheckRemote] = CheckOK
		}
	}

	if err := s.store.Ping(ctx); err != nil {
		checks[CheckStore] = CheckError
		status = Unhealthy
	} else {
		checks[CheckStore] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}

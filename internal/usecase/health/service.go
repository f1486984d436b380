package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is down; searches still work.
	Degraded Status = "degraded"
	// Unhealthy indicates the search engine is down.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	store    StorePinger
	engine   EngineChecker
	reasoner ReasonerChecker
}

// New creates a Service. store and reasoner can be nil.
func New(store StorePinger, engine EngineChecker, reasoner ReasonerChecker) *Service {
	return &Service{store: store, engine: engine, reasoner: reasoner}
}

// Check runs health checks against all components. The engine is the only
// required one: its failure makes the whole report unhealthy, everything
// else merely degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.engine.HealthCheck(ctx); err != nil {
		checks["opensearch"] = CheckError
		status = Unhealthy
	} else {
		checks["opensearch"] = CheckOK
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks["redis"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["redis"] = CheckOK
		}
	}

	if s.reasoner != nil {
		if err := s.reasoner.HealthCheck(ctx); err != nil {
			checks["reasoning"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["reasoning"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}

package health

import "context"

// StorePinger checks cache store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EngineChecker checks search engine availability.
type EngineChecker interface {
	HealthCheck(ctx context.Context) error
}

// ReasonerChecker checks reasoning provider availability.
type ReasonerChecker interface {
	HealthCheck(ctx context.Context) error
}

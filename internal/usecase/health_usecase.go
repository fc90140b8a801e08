package usecase

import (
	"context"
	"time"
)

// HealthCheck checks one dependency. A nil error means it is reachable.
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthUsecase runs every named check on each call. Checks whose
// dependency is optional should only be registered when it is configured.
func NewHealthUsecase(checks map[string]HealthCheck, timeout time.Duration) HealthUsecase {
	return &healthUsecase{checks: checks, timeout: timeout}
}

// Check returns "ok" or the error text per dependency, and whether all passed.
func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	status := map[string]string{"status": "ok"}
	healthy := true
	for name, check := range u.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}

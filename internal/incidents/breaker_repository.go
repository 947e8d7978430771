package incidents

import (
	"context"

	"github.com/richxcame/scamwatch/internal/risk"
	"github.com/richxcame/scamwatch/pkg/resilience"
)

// GuardedRepository retries score writes through a circuit breaker. Reads go
// straight to the wrapped repository. Score writes set absolute values and
// are safe to repeat.
type GuardedRepository struct {
	RepositoryInterface
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

var _ RepositoryInterface = (*GuardedRepository)(nil)

// NewGuardedRepository wraps inner with breaker and retry
func NewGuardedRepository(inner RepositoryInterface, breaker *resilience.CircuitBreaker, retry resilience.RetryConfig) *GuardedRepository {
	return &GuardedRepository{RepositoryInterface: inner, breaker: breaker, retry: retry}
}

// UpdateRiskScores writes scores, retrying transient failures
func (g *GuardedRepository) UpdateRiskScores(ctx context.Context, scores map[string]risk.RiskScore) (int64, error) {
	result, err := resilience.RetryWithBreaker(ctx, g.retry, g.breaker, func(ctx context.Context) (interface{}, error) {
		return g.RepositoryInterface.UpdateRiskScores(ctx, scores)
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

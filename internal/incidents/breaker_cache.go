package incidents

import (
	"context"
	"errors"

	"github.com/richxcame/scamwatch/internal/risk"
	"github.com/richxcame/scamwatch/pkg/resilience"
)

// GuardedCache routes cache calls through a circuit breaker. While the
// breaker is open reads are misses and writes are skipped.
type GuardedCache struct {
	inner   BatchCache
	breaker *resilience.CircuitBreaker
}

var _ BatchCache = (*GuardedCache)(nil)

// NewGuardedCache wraps inner with breaker
func NewGuardedCache(inner BatchCache, breaker *resilience.CircuitBreaker) *GuardedCache {
	return &GuardedCache{inner: inner, breaker: breaker}
}

type cacheHit struct {
	scores map[string]risk.RiskScore
	ok     bool
}

// Get returns the cached batch for incidents
func (g *GuardedCache) Get(ctx context.Context, incidents []risk.Incident) (map[string]risk.RiskScore, bool, error) {
	result, err := g.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		scores, ok, err := g.inner.Get(ctx, incidents)
		if err != nil {
			return nil, err
		}
		return cacheHit{scores: scores, ok: ok}, nil
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, false, nil
		}
		return nil, false, err
	}

	hit := result.(cacheHit)
	return hit.scores, hit.ok, nil
}

// Set stores a batch for incidents
func (g *GuardedCache) Set(ctx context.Context, incidents []risk.Incident, scores map[string]risk.RiskScore) error {
	_, err := g.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, g.inner.Set(ctx, incidents, scores)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil
	}
	return err
}

// Invalidate drops every cached batch. An open breaker is reported as an
// error since stale batches may survive until their TTL.
func (g *GuardedCache) Invalidate(ctx context.Context) (int, error) {
	result, err := g.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return g.inner.Invalidate(ctx)
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

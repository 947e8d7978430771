package resilience

import (
	"context"

	"github.com/richxcame/scamwatch/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc is executed when the breaker is open or overloaded
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback returns ErrCircuitOpen
func NoopFallback(ctx context.Context, err error) (interface{}, error) {
	return nil, ErrCircuitOpen
}

// GracefulDegradation logs that dependency is being skipped and returns
// ErrCircuitOpen so the caller can take its own fallback path.
func GracefulDegradation(dependency string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("circuit breaker open, skipping dependency",
			zap.String("dependency", dependency),
			zap.Error(err),
		)
		return nil, ErrCircuitOpen
	}
}

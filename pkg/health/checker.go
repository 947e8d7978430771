package health

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// CheckerConfig configures dependency checks
type CheckerConfig struct {
	Timeout time.Duration
}

// DefaultCheckerConfig returns the default checker configuration
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{Timeout: 2 * time.Second}
}

// PostgresChecker returns a health check function for the PostgreSQL pool
func PostgresChecker(pool *pgxpool.Pool) func() error {
	cfg := DefaultCheckerConfig()
	return func() error {
		if pool == nil {
			return errors.New("database connection is nil")
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		return pool.Ping(ctx)
	}
}

// RedisChecker returns a health check function for Redis
func RedisChecker(client *redis.Client) func() error {
	cfg := DefaultCheckerConfig()
	return func() error {
		if client == nil {
			return errors.New("redis client is nil")
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

// NATSChecker returns a health check function for a NATS connection
func NATSChecker(conn *nats.Conn) func() error {
	return func() error {
		if conn == nil {
			return errors.New("nats connection is nil")
		}
		if !conn.IsConnected() {
			return errors.New("nats connection is " + conn.Status().String())
		}
		return nil
	}
}

package incidents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/richxcame/scamwatch/internal/risk"
	redisclient "github.com/richxcame/scamwatch/pkg/redis"
)

const batchKeyPrefix = "risk:batch:"

// ScoreCache stores batch results in Redis keyed by a hash of the incident
// snapshot they were computed from.
type ScoreCache struct {
	client *redisclient.Client
	ttl    time.Duration
}

var _ BatchCache = (*ScoreCache)(nil)

// NewScoreCache creates a new batch score cache
func NewScoreCache(client *redisclient.Client, ttl time.Duration) *ScoreCache {
	return &ScoreCache{client: client, ttl: ttl}
}

// SnapshotKey hashes every incident field the engine reads. Any change to
// the collection produces a different key.
func SnapshotKey(incidents []risk.Incident) string {
	h := sha256.New()
	for i := range incidents {
		inc := &incidents[i]
		loss := "-"
		if inc.LossAmountINR != nil {
			loss = strconv.FormatFloat(*inc.LossAmountINR, 'g', -1, 64)
		}
		fmt.Fprintf(h, "%q|%q|%d|%q|%d|%s|%q\n",
			inc.ID,
			inc.Category,
			inc.Location.Kind(),
			inc.Location.String(),
			inc.CreatedAt.UnixNano(),
			loss,
			inc.VenueName,
		)
	}
	return batchKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached batch for incidents, if present
func (c *ScoreCache) Get(ctx context.Context, incidents []risk.Incident) (map[string]risk.RiskScore, bool, error) {
	val, err := c.client.GetString(ctx, SnapshotKey(incidents))
	if err != nil {
		if errors.Is(err, redisclient.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached scores: %w", err)
	}

	var scores map[string]risk.RiskScore
	if err := json.Unmarshal([]byte(val), &scores); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached scores: %w", err)
	}
	return scores, true, nil
}

// Set stores a batch for incidents
func (c *ScoreCache) Set(ctx context.Context, incidents []risk.Incident, scores map[string]risk.RiskScore) error {
	payload, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	if err := c.client.SetWithExpiration(ctx, SnapshotKey(incidents), string(payload), c.ttl); err != nil {
		return fmt.Errorf("failed to cache scores: %w", err)
	}
	return nil
}

// Invalidate drops every cached batch
func (c *ScoreCache) Invalidate(ctx context.Context) (int, error) {
	return c.client.DeleteByPrefix(ctx, batchKeyPrefix)
}

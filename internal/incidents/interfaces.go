package incidents

import (
	"context"

	"github.com/richxcame/scamwatch/internal/risk"
)

// RepositoryInterface defines the persistence operations the service needs
type RepositoryInterface interface {
	ListIncidents(ctx context.Context, params ListParams) ([]risk.Incident, int64, error)
	GetIncidentByID(ctx context.Context, id string) (*risk.Incident, error)
	UpdateRiskScores(ctx context.Context, scores map[string]risk.RiskScore) (int64, error)
}

// BatchCache memoises batch results per incident snapshot
type BatchCache interface {
	Get(ctx context.Context, incidents []risk.Incident) (map[string]risk.RiskScore, bool, error)
	Set(ctx context.Context, incidents []risk.Incident, scores map[string]risk.RiskScore) error
	Invalidate(ctx context.Context) (int, error)
}

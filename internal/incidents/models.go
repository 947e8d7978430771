package incidents

import (
	"time"

	"github.com/richxcame/scamwatch/internal/risk"
	"github.com/richxcame/scamwatch/pkg/pagination"
)

// Event subjects
const (
	SubjectIncidents          = "incidents.>"
	SubjectRiskScoresUpdated  = "risk.scores.updated"
	EventTypeRiskScoresUpdate = "risk.scores.updated"
)

// ListParams filters and pages incident listings
type ListParams struct {
	Category risk.Category
	City     string
	Limit    int
	Offset   int
}

// RiskRequest is the body of POST /risk
type RiskRequest struct {
	ReportID  string `json:"reportId" validate:"omitempty,max=128"`
	BatchMode bool   `json:"batchMode"`
}

// ScoredIncident pairs an incident with its score and the neighbours used
type ScoredIncident struct {
	Incident  risk.Incident
	Score     risk.RiskScore
	Neighbors []risk.Incident
}

// NearbyIncident is the summary of a neighbour returned with a score
type NearbyIncident struct {
	ID            string        `json:"id"`
	Category      risk.Category `json:"category"`
	VenueName     string        `json:"venue_name,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	LossAmountINR *float64      `json:"loss_amount_inr,omitempty"`
}

// RiskResponse is the API response for a single risk score
type RiskResponse struct {
	ReportID             string           `json:"reportId"`
	RiskScore            int              `json:"risk_score"`
	RiskComponents       risk.Components  `json:"risk_components"`
	RiskLevel            risk.Level       `json:"risk_level"`
	RiskColor            string           `json:"risk_color"`
	FormattedScore       string           `json:"formatted_score"`
	Insights             []string         `json:"insights"`
	NearbyIncidentsCount int              `json:"nearby_incidents_count"`
	NearbyIncidents      []NearbyIncident `json:"nearby_incidents,omitempty"`
}

// BatchResult is one entry of a batch scoring response
type BatchResult struct {
	ID             string          `json:"id"`
	RiskScore      int             `json:"risk_score"`
	RiskComponents risk.Components `json:"risk_components"`
	RiskLevel      risk.Level      `json:"risk_level"`
}

// ReportResponse is an incident in list responses, with its current score
type ReportResponse struct {
	risk.Incident
	RiskScore int        `json:"risk_score"`
	RiskLevel risk.Level `json:"risk_level"`
}

// ReportListResponse is a page of scored reports
type ReportListResponse struct {
	Reports []ReportResponse `json:"reports"`
	Meta    *pagination.Meta `json:"meta"`
}

// CategoryCount is one row of top categories
type CategoryCount struct {
	Category risk.Category `json:"category"`
	Count    int           `json:"count"`
}

// CityCount is one row of top cities
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// Statistics summarises the incident collection
type Statistics struct {
	TotalReports       int             `json:"total_reports"`
	TotalFinancialLoss float64         `json:"total_financial_loss"`
	AvgRiskScore       int             `json:"avg_risk_score"`
	TopCategories      []CategoryCount `json:"top_categories"`
	TopCities          []CityCount     `json:"top_cities"`
}

// LevelCounts counts scores per level band
type LevelCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// HighRiskIncident is a critical incident listed in backfill output
type HighRiskIncident struct {
	ID       string        `json:"id"`
	Score    int           `json:"score"`
	Category risk.Category `json:"category"`
	Place    string        `json:"place"`
}

// BackfillSummary describes one backfill run
type BackfillSummary struct {
	Total        int64              `json:"total"`
	Processed    int                `json:"processed"`
	Persisted    int64              `json:"persisted"`
	DryRun       bool               `json:"dry_run"`
	AverageScore float64            `json:"average_score"`
	MinScore     int                `json:"min_score"`
	MaxScore     int                `json:"max_score"`
	Levels       LevelCounts        `json:"levels"`
	TopHighRisk  []HighRiskIncident `json:"top_high_risk"`
	Duration     time.Duration      `json:"duration"`
}

func toNearby(in []risk.Incident) []NearbyIncident {
	out := make([]NearbyIncident, len(in))
	for i := range in {
		out[i] = NearbyIncident{
			ID:            in[i].ID,
			Category:      in[i].Category,
			VenueName:     in[i].VenueName,
			CreatedAt:     in[i].CreatedAt,
			LossAmountINR: in[i].LossAmountINR,
		}
	}
	return out
}

// ToRiskResponse converts a scored incident for the API. Neighbour
// summaries are included only when withNearby is set.
func ToRiskResponse(s *ScoredIncident, withNearby bool) *RiskResponse {
	resp := &RiskResponse{
		ReportID:             s.Incident.ID,
		RiskScore:            s.Score.Score,
		RiskComponents:       s.Score.Components,
		RiskLevel:            s.Score.Level,
		RiskColor:            s.Score.Level.Color(),
		FormattedScore:       risk.FormatScore(s.Score.Score),
		Insights:             s.Score.Insights,
		NearbyIncidentsCount: len(s.Neighbors),
	}
	if withNearby {
		resp.NearbyIncidents = toNearby(s.Neighbors)
	}
	return resp
}

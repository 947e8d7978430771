package incidents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/scamwatch/internal/geo"
	"github.com/richxcame/scamwatch/internal/risk"
	"github.com/richxcame/scamwatch/pkg/common"
)

// Repository handles report storage in PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new incidents repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `
	id, category, location, created_at, loss_amount_inr,
	venue_name, city, address, description, evidence_ids`

// buildListQuery returns the count and page queries for params with their
// shared filter arguments. The page query takes limit and offset as the
// two trailing placeholders.
func buildListQuery(params ListParams) (countQuery, pageQuery string, args []interface{}) {
	var conds []string
	if params.Category != "" {
		args = append(args, string(params.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if params.City != "" {
		args = append(args, params.City)
		conds = append(conds, fmt.Sprintf("LOWER(city) = LOWER($%d)", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	countQuery = "SELECT COUNT(*) FROM reports" + where
	pageQuery = fmt.Sprintf(
		"SELECT %s FROM reports%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		incidentColumns, where, len(args)+1, len(args)+2,
	)
	return countQuery, pageQuery, args
}

// ListIncidents returns a page of incidents, newest first, and the total
// number matching the filters.
func (r *Repository) ListIncidents(ctx context.Context, params ListParams) ([]risk.Incident, int64, error) {
	countQuery, pageQuery, args := buildListQuery(params)

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	rows, err := r.db.Query(ctx, pageQuery, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	incidents := make([]risk.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, 0, err
		}
		incidents = append(incidents, *incident)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read reports: %w", err)
	}

	return incidents, total, nil
}

// GetIncidentByID retrieves a single incident
func (r *Repository) GetIncidentByID(ctx context.Context, id string) (*risk.Incident, error) {
	query := "SELECT " + incidentColumns + " FROM reports WHERE id = $1"

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("Report not found")
		}
		return nil, err
	}
	return incident, nil
}

// UpdateRiskScores stores computed scores on their reports in one batch
// and returns the number of rows updated.
func (r *Repository) UpdateRiskScores(ctx context.Context, scores map[string]risk.RiskScore) (int64, error) {
	if len(scores) == 0 {
		return 0, nil
	}

	query := `
		UPDATE reports
		SET risk_score = $2, risk_level = $3, risk_components = $4, risk_updated_at = $5
		WHERE id = $1
	`

	now := time.Now()
	batch := &pgx.Batch{}
	for id, score := range scores {
		components, err := json.Marshal(score.Components)
		if err != nil {
			return 0, fmt.Errorf("failed to encode components for %s: %w", id, err)
		}
		batch.Queue(query, id, score.Score, string(score.Level), components, now)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	var updated int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			return updated, fmt.Errorf("failed to update risk scores: %w", err)
		}
		updated += tag.RowsAffected()
	}
	return updated, nil
}

func scanIncident(row pgx.Row) (*risk.Incident, error) {
	var (
		incident                              risk.Incident
		category                              string
		location, venue, city, address, descr *string
		evidence                              []string
	)

	err := row.Scan(
		&incident.ID,
		&category,
		&location,
		&incident.CreatedAt,
		&incident.LossAmountINR,
		&venue,
		&city,
		&address,
		&descr,
		&evidence,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	incident.Category = risk.Category(category)
	incident.Location = geo.ParseLocation(deref(location))
	incident.VenueName = deref(venue)
	incident.City = deref(city)
	incident.Address = deref(address)
	incident.Description = deref(descr)
	incident.EvidenceIDs = evidence

	return &incident, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

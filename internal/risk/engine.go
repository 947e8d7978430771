package risk

import (
	"math"
	"sort"
	"time"

	"github.com/richxcame/scamwatch/internal/geo"
)

// Engine computes risk scores. It holds only configuration and a clock and
// is safe for concurrent use once constructed.
type Engine struct {
	cfg Config
	now func() time.Time
}

// NewEngine creates an engine over cfg
func NewEngine(cfg Config) *Engine {
	if cfg.NeighborRadiusKm <= 0 {
		cfg.NeighborRadiusKm = DefaultConfig().NeighborRadiusKm
	}
	return &Engine{
		cfg: cfg,
		now: time.Now,
	}
}

// WithNow overrides the clock used for recency and the volume window.
// Call it before the engine is shared.
func (e *Engine) WithNow(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ComputeRiskScore scores target against candidates, usually its neighbours
func (e *Engine) ComputeRiskScore(target Incident, candidates []Incident) RiskScore {
	return e.scoreAt(target, candidates, e.now())
}

func (e *Engine) scoreAt(target Incident, candidates []Incident, now time.Time) RiskScore {
	c := Components{
		Category:  e.CategoryRisk(target.Category),
		Proximity: e.ProximityRisk(target, candidates),
		Recency:   e.recencyAt(target.CreatedAt, now),
		Financial: e.FinancialRisk(target.LossAmountINR),
		Volume:    e.volumeAt(target, candidates, now),
	}

	w := e.cfg.Weights
	raw := w.Category*c.Category +
		w.Proximity*c.Proximity +
		w.Recency*c.Recency +
		w.Financial*c.Financial +
		w.Volume*c.Volume

	score := int(math.Round(math.Max(0, math.Min(100, raw*100))))

	return RiskScore{
		Score:      score,
		Components: c,
		Level:      LevelFromScore(score),
		Insights:   insights(c, len(candidates)),
	}
}

// FindNeighbors returns the incidents within maxDistanceKm of target,
// excluding target and incidents without coordinates. A non-positive
// distance uses the configured neighbour radius.
func (e *Engine) FindNeighbors(target Incident, all []Incident, maxDistanceKm float64) []Incident {
	if maxDistanceKm <= 0 {
		maxDistanceKm = e.cfg.NeighborRadiusKm
	}

	origin, ok := geo.ExtractCoordinates(target.Location)
	if !ok {
		return []Incident{}
	}

	neighbors := make([]Incident, 0)
	for i := range all {
		other := &all[i]
		if other.ID == target.ID {
			continue
		}
		p, ok := geo.ExtractCoordinates(other.Location)
		if !ok {
			continue
		}
		if geo.Distance(origin, p) <= maxDistanceKm {
			neighbors = append(neighbors, *other)
		}
	}
	return neighbors
}

// ComputeBatchRiskScores scores every incident against its neighbours in
// the full list. It compares every pair of incidents. When ids repeat, the
// last incident wins.
func (e *Engine) ComputeBatchRiskScores(incidents []Incident) map[string]RiskScore {
	now := e.now()
	results := make(map[string]RiskScore, len(incidents))

	for i := range incidents {
		neighbors := e.FindNeighbors(incidents[i], incidents, e.cfg.NeighborRadiusKm)
		results[incidents[i].ID] = e.scoreAt(incidents[i], neighbors, now)
	}
	return results
}

// ComputeIndexedBatchRiskScores returns the same results as
// ComputeBatchRiskScores but narrows each neighbour search through an H3
// index first. Incidents the index rejects are scored by a full scan, and
// radii too large for any resolution fall back to ComputeBatchRiskScores.
func (e *Engine) ComputeIndexedBatchRiskScores(incidents []Incident) map[string]RiskScore {
	now := e.now()
	radius := e.cfg.NeighborRadiusKm

	res, ok := geo.ResolutionFor(radius)
	if !ok {
		return e.ComputeBatchRiskScores(incidents)
	}
	idx, err := geo.NewIndex(res)
	if err != nil {
		return e.ComputeBatchRiskScores(incidents)
	}

	coords := make([]geo.Coordinates, len(incidents))
	located := make([]bool, len(incidents))
	for i := range incidents {
		p, ok := geo.ExtractCoordinates(incidents[i].Location)
		if !ok {
			continue
		}
		if err := idx.Insert(i, p); err != nil {
			// an unindexed point could be missed by any disk query
			return e.ComputeBatchRiskScores(incidents)
		}
		coords[i] = p
		located[i] = true
	}

	results := make(map[string]RiskScore, len(incidents))
	for i := range incidents {
		target := incidents[i]
		if !located[i] {
			results[target.ID] = e.scoreAt(target, []Incident{}, now)
			continue
		}

		cands, err := idx.Candidates(coords[i], radius)
		if err != nil {
			results[target.ID] = e.scoreAt(target, e.FindNeighbors(target, incidents, radius), now)
			continue
		}

		// keep input order so results match the full scan exactly
		sort.Ints(cands)
		neighbors := make([]Incident, 0, len(cands))
		for _, j := range cands {
			if incidents[j].ID == target.ID {
				continue
			}
			if geo.Distance(coords[i], coords[j]) <= radius {
				neighbors = append(neighbors, incidents[j])
			}
		}
		results[target.ID] = e.scoreAt(target, neighbors, now)
	}
	return results
}

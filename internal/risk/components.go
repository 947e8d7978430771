package risk

import (
	"math"
	"time"

	"github.com/richxcame/scamwatch/internal/geo"
)

// CategoryRisk returns the severity weight of a category, or the default
// weight for categories missing from the table.
func (e *Engine) CategoryRisk(c Category) float64 {
	if w, ok := e.cfg.CategoryWeights[c]; ok && w > 0 {
		return clamp01(w)
	}
	return clamp01(e.cfg.DefaultCategory)
}

// ProximityRisk measures incident density around target over the
// configured radii. Candidates without coordinates, and the target itself,
// never count.
func (e *Engine) ProximityRisk(target Incident, candidates []Incident) float64 {
	origin, ok := geo.ExtractCoordinates(target.Location)
	if !ok {
		return 0
	}

	distances := make([]float64, 0, len(candidates))
	for i := range candidates {
		other := &candidates[i]
		if other.ID == target.ID {
			continue
		}
		p, ok := geo.ExtractCoordinates(other.Location)
		if !ok {
			continue
		}
		distances = append(distances, geo.Distance(origin, p))
	}

	var total, totalWeight float64
	for _, r := range e.cfg.Radii {
		count := 0
		for _, d := range distances {
			if d <= r.Km {
				count++
			}
		}
		total += saturate(float64(count), e.cfg.ProximitySaturate) * r.Weight
		totalWeight += r.Weight
	}

	if totalWeight <= 0 {
		return 0
	}
	return clamp01(total / totalWeight)
}

// RecencyRisk decays exponentially with the age of the report
func (e *Engine) RecencyRisk(createdAt time.Time) float64 {
	return e.recencyAt(createdAt, e.now())
}

func (e *Engine) recencyAt(createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	return clamp01(math.Exp(-ageDays / e.cfg.RecencyDecayDays))
}

// FinancialRisk scales the reported loss logarithmically up to MaxLossINR.
// A nil or non-positive loss scores 0.
func (e *Engine) FinancialRisk(loss *float64) float64 {
	if loss == nil || !(*loss > 0) {
		return 0
	}
	return clamp01(math.Log10(*loss+1) / math.Log10(e.cfg.MaxLossINR+1))
}

// VolumeRisk counts recent reports naming the same venue as target
func (e *Engine) VolumeRisk(target Incident, candidates []Incident) float64 {
	return e.volumeAt(target, candidates, e.now())
}

func (e *Engine) volumeAt(target Incident, candidates []Incident, now time.Time) float64 {
	if target.VenueName == "" {
		return 0
	}

	cutoff := now.AddDate(0, 0, -e.cfg.VolumeWindowDays)
	count := 0
	for i := range candidates {
		other := &candidates[i]
		if other.ID == target.ID || other.VenueName != target.VenueName {
			continue
		}
		if other.CreatedAt.Before(cutoff) {
			continue
		}
		count++
	}
	return saturate(float64(count), e.cfg.VolumeSaturate)
}

func saturate(count, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return clamp01(count / limit)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

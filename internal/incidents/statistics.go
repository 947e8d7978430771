package incidents

import (
	"math"
	"sort"

	"github.com/richxcame/scamwatch/internal/risk"
)

func buildStatistics(all []risk.Incident, scores map[string]risk.RiskScore) *Statistics {
	stats := &Statistics{
		TotalReports:  len(all),
		TopCategories: []CategoryCount{},
		TopCities:     []CityCount{},
	}
	if len(all) == 0 {
		return stats
	}

	byCategory := make(map[risk.Category]int)
	byCity := make(map[string]int)
	scoreSum := 0

	for i := range all {
		inc := &all[i]
		if inc.LossAmountINR != nil && *inc.LossAmountINR > 0 {
			stats.TotalFinancialLoss += *inc.LossAmountINR
		}
		scoreSum += scores[inc.ID].Score
		byCategory[inc.Category]++
		if inc.City != "" {
			byCity[inc.City]++
		}
	}

	stats.AvgRiskScore = int(math.Round(float64(scoreSum) / float64(len(all))))

	for category, count := range byCategory {
		stats.TopCategories = append(stats.TopCategories, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(stats.TopCategories, func(i, j int) bool {
		a, b := stats.TopCategories[i], stats.TopCategories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})
	if len(stats.TopCategories) > topN {
		stats.TopCategories = stats.TopCategories[:topN]
	}

	for city, count := range byCity {
		stats.TopCities = append(stats.TopCities, CityCount{City: city, Count: count})
	}
	sort.Slice(stats.TopCities, func(i, j int) bool {
		a, b := stats.TopCities[i], stats.TopCities[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.City < b.City
	})
	if len(stats.TopCities) > topN {
		stats.TopCities = stats.TopCities[:topN]
	}

	return stats
}

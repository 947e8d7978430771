package risk

import "fmt"

// ScamMeterInput carries the signals behind a report's credibility score
type ScamMeterInput struct {
	Incident           Incident
	CorroborationCount int
	ModeratorReviewed  bool
	ConsistentDetails  bool
	ActiveDispute      bool
}

// ScamMeter is the credibility score shown next to a report
type ScamMeter struct {
	Score   int      `json:"score"`
	Label   string   `json:"label"`
	Reasons []string `json:"reasons"`
}

const maxCorroboration = 2

// ComputeScamMeterScore scores how well-supported a single report is
func ComputeScamMeterScore(in ScamMeterInput) ScamMeter {
	score := 20
	reasons := []string{"Base form completeness (+20)"}

	if len(in.Incident.EvidenceIDs) > 0 {
		score += 20
		reasons = append(reasons, "Evidence present (+20)")
	}

	corroboration := min(maxCorroboration, max(0, in.CorroborationCount))
	if corroboration > 0 {
		add := corroboration * 15
		score += add
		reasons = append(reasons, fmt.Sprintf("Corroboration x%d (+%d)", corroboration, add))
	}

	if in.ModeratorReviewed {
		score += 10
		reasons = append(reasons, "Moderator review passed (+10)")
	}

	if in.ConsistentDetails {
		score += 5
		reasons = append(reasons, "Consistency across details (+5)")
	}

	if in.ActiveDispute {
		score -= 15
		reasons = append(reasons, "Active dispute/flags (-15)")
	}

	score = max(0, min(100, score))

	return ScamMeter{
		Score:   score,
		Label:   scamMeterLabel(score),
		Reasons: reasons,
	}
}

func scamMeterLabel(score int) string {
	switch {
	case score < 30:
		return "Low"
	case score < 50:
		return "Medium"
	case score < 70:
		return "High"
	default:
		return "Critical"
	}
}

// CorroborationCount counts other incidents naming target's venue
func CorroborationCount(target Incident, all []Incident) int {
	if target.VenueName == "" {
		return 0
	}
	count := 0
	for i := range all {
		if all[i].ID != target.ID && all[i].VenueName == target.VenueName {
			count++
		}
	}
	return count
}

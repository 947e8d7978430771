package risk

import "fmt"

const fallbackInsight = "Standard risk profile"

// insights lists the factors that drove a score, in a fixed order.
// The result is never empty.
func insights(c Components, nearbyCount int) []string {
	var out []string

	if c.Category > 0.8 {
		out = append(out, "High-risk scam category")
	}

	if c.Proximity > 0.6 && nearbyCount > 0 {
		out = append(out, fmt.Sprintf("%d similar incidents in area", nearbyCount))
	}

	if c.Recency > 0.8 {
		out = append(out, "Very recent incident")
	} else if c.Recency > 0.5 {
		out = append(out, "Recent incident")
	}

	if c.Financial > 0.7 {
		out = append(out, "High financial impact")
	}

	if c.Volume > 0.5 {
		out = append(out, "Multiple reports from same location")
	}

	if len(out) == 0 {
		out = append(out, fallbackInsight)
	}
	return out
}

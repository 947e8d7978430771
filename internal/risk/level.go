package risk

import "fmt"

// Level buckets a risk score
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// LevelFromScore maps a 0-100 score to its level
func LevelFromScore(score int) Level {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Color returns the badge classes used to render the level
func (l Level) Color() string {
	switch l {
	case LevelCritical:
		return "bg-red-600 text-white"
	case LevelHigh:
		return "bg-red-500 text-white"
	case LevelMedium:
		return "bg-yellow-500 text-white"
	case LevelLow:
		return "bg-green-500 text-white"
	default:
		return "bg-gray-500 text-white"
	}
}

// FormatScore renders a score as "n/100"
func FormatScore(score int) string {
	return fmt.Sprintf("%d/100", score)
}

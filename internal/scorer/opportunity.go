package scorer

import "math"

// Impact, effort, and confidence point contributions for the opportunity
// score. Unknown labels contribute nothing rather than erroring.
var (
	impactPoints = map[string]float64{
		"low":  20,
		"med":  50,
		"high": 80,
	}
	effortPoints = map[string]float64{
		"S": 15,
		"M": 0,
		"L": -15,
	}
	confidencePoints = map[string]float64{
		"low":  -10,
		"med":  0,
		"high": 10,
	}
)

// ComputeJTBDOpportunityScore derives a 0-100 opportunity score from
// jobs-to-be-done importance and satisfaction ratings (each on a 1-5 scale):
// important and underserved jobs score highest.
func ComputeJTBDOpportunityScore(importance, satisfaction float64) int {
	opportunity := importance*20 + (5-satisfaction)*20
	score := math.Round(opportunity / 2)
	return int(math.Min(100, math.Max(0, score)))
}

// ComputeOpportunityScore derives a 0-100 score from impact, effort, and
// confidence labels, plus an optional linked JTBD score that contributes a
// fifth of its value.
func ComputeOpportunityScore(impact, effort, confidence string, linkedJTBDScore *int) int {
	score := impactPoints[impact] + effortPoints[effort] + confidencePoints[confidence]
	if linkedJTBDScore != nil {
		score += math.Round(float64(*linkedJTBDScore) * 0.2)
	}
	return int(math.Min(100, math.Max(0, score)))
}

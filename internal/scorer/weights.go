// Package scorer aggregates per-criterion dimension scores into weighted
// competitor totals and computes the two opportunity-scoring formulas.
package scorer

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/scoutline/compete-cli/internal/model"
)

// CompetitorScore is one competitor's weighted total on a 0-100 scale.
// Score keeps full decimal precision; rounding is a presentation concern.
type CompetitorScore struct {
	CompetitorName string  `json:"competitor_name"`
	Score          float64 `json:"score"`
	CriteriaScored int     `json:"criteria_scored"`
}

// AggregateDimensionScores collapses the five dimension scores into a single
// [0,1] value: the unweighted mean of the four positive dimensions and the
// inverted friction dimension.
func AggregateDimensionScores(dims model.CriterionDimensionScores) float64 {
	sum := dims.DiscoverySupport +
		dims.ExecutionSupport +
		dims.Reliability +
		dims.Flexibility +
		(1 - dims.Friction)
	return math.Min(1, math.Max(0, sum/5))
}

// WeightSum returns the total raw weight across criteria.
func WeightSum(criteria []model.ScoringCriterion) float64 {
	var sum float64
	for _, c := range criteria {
		sum += float64(c.Weight)
	}
	return sum
}

// ComputeWeightedCompetitorScores aggregates per-criterion dimension scores
// into one weighted 0-100 total per competitor. Criterion weights are
// normalized to sum to 1; a criterion a competitor was never scored on
// simply contributes nothing. Results are sorted by score descending, ties
// broken by name.
func ComputeWeightedCompetitorScores(criteria []model.ScoringCriterion, scores []model.CriterionScore) []CompetitorScore {
	weightSum := WeightSum(criteria)
	if weightSum <= 0 {
		// Zero total weight means no criterion can contribute.
		zap.L().Warn("scorer: criterion weights sum to zero, scores are empty")
		return nil
	}

	normalized := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		normalized[c.ID] = float64(c.Weight) / weightSum
	}

	totals := make(map[string]*CompetitorScore)
	for _, s := range scores {
		weight, ok := normalized[s.CriteriaID]
		if !ok {
			continue // score for an unknown criterion
		}
		cs, ok := totals[s.CompetitorName]
		if !ok {
			cs = &CompetitorScore{CompetitorName: s.CompetitorName}
			totals[s.CompetitorName] = cs
		}
		cs.Score += AggregateDimensionScores(s.Dimensions) * 100 * weight
		cs.CriteriaScored++
	}

	results := make([]CompetitorScore, 0, len(totals))
	for _, cs := range totals {
		results = append(results, *cs)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CompetitorName < results[j].CompetitorName
	})

	return results
}

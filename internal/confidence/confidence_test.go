package confidence

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/compete-cli/internal/model"
)

var confNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func citationsFor(n, ageDays int, types ...string) []model.Citation {
	date := confNow.AddDate(0, 0, -ageDays).Format("2006-01-02")
	cits := make([]model.Citation, n)
	for i := range cits {
		cits[i] = model.Citation{
			URL:         fmt.Sprintf("https://example.com/%d", i),
			SourceType:  types[i%len(types)],
			ExtractedAt: date,
		}
	}
	return cits
}

func TestCompute_NoEvidenceNoBreakdown(t *testing.T) {
	result := Compute(model.Opportunity{Title: "Untapped segment"}, confNow)

	assert.Equal(t, LevelExploratory, result.Level)
	assert.Equal(t, []string{"Early signal, worth validating"}, result.Reasons)
	assert.Zero(t, result.EvidenceCount)
}

func TestCompute_High(t *testing.T) {
	opp := model.Opportunity{
		Citations: citationsFor(8, 10, "pricing", "docs", "reviews"),
	}

	result := Compute(opp, confNow)

	assert.Equal(t, LevelHigh, result.Level)
	assert.Equal(t, 8, result.EvidenceCount)
	assert.Equal(t, 3, result.SourceTypeCount)
	assert.NotEmpty(t, result.Reasons)
}

func TestCompute_HighViaRecencyBreakdown(t *testing.T) {
	// Evidence is old, but the scoring breakdown vouches for recency.
	opp := model.Opportunity{
		Citations: citationsFor(8, 200, "pricing", "docs", "reviews"),
		Scoring: &model.OpportunityScoring{
			Breakdown: map[string]float64{"recency_confidence": 8.5},
		},
	}

	result := Compute(opp, confNow)

	assert.Equal(t, LevelHigh, result.Level)
	assert.Contains(t, result.Reasons[len(result.Reasons)-1], "recency confidence 8.5")
}

func TestCompute_Moderate(t *testing.T) {
	opp := model.Opportunity{
		Citations: citationsFor(4, 45, "pricing", "docs"),
	}

	result := Compute(opp, confNow)

	assert.Equal(t, LevelModerate, result.Level)
}

func TestCompute_ModerateWithNoDates(t *testing.T) {
	cits := citationsFor(4, 0, "pricing", "docs")
	for i := range cits {
		cits[i].ExtractedAt = ""
	}

	result := Compute(model.Opportunity{Citations: cits}, confNow)

	assert.Equal(t, LevelModerate, result.Level, "absent dates do not block moderate")
	assert.Contains(t, result.Reasons, "no evidence dates available")
}

func TestCompute_StaleEvidenceIsExploratory(t *testing.T) {
	opp := model.Opportunity{
		Citations: citationsFor(4, 180, "pricing", "docs"),
	}

	result := Compute(opp, confNow)

	assert.Equal(t, LevelExploratory, result.Level)
}

func TestCompute_MergesAndDedupesProofPointCitations(t *testing.T) {
	shared := model.Citation{URL: "https://example.com/shared", SourceType: "docs"}
	opp := model.Opportunity{
		ProofPoints: []model.ProofPoint{
			{Citations: []model.Citation{shared, {URL: "https://example.com/a", SourceType: "pricing"}}},
			{Citations: []model.Citation{shared}},
		},
		Citations: []model.Citation{shared, {URL: "https://example.com/b", SourceType: "reviews"}},
	}

	result := Compute(opp, confNow)

	assert.Equal(t, 3, result.EvidenceCount, "duplicate URLs count once")
	assert.Equal(t, 3, result.SourceTypeCount)
}

func TestCompute_ReasonsMatchComputedFacts(t *testing.T) {
	result := Compute(model.Opportunity{
		Citations: citationsFor(5, 12, "pricing", "docs"),
	}, confNow)

	require.Len(t, result.Reasons, 3)
	assert.Equal(t, "5 supporting sources", result.Reasons[0])
	assert.Equal(t, "evidence spans 2 source types", result.Reasons[1])
	assert.Equal(t, "newest evidence is 12 days old", result.Reasons[2])
}

func TestAggregate_HighWhenHighDominates(t *testing.T) {
	opps := []model.Opportunity{
		{Citations: citationsFor(8, 5, "pricing", "docs", "reviews")},
		{Citations: citationsFor(8, 5, "pricing", "docs", "jobs")},
		{Citations: citationsFor(8, 5, "blog", "docs", "reviews")},
	}

	agg := Aggregate(opps, confNow)

	assert.Equal(t, 3, agg.HighCount)
	assert.Equal(t, LevelHigh, agg.Level)
}

func TestAggregate_ModerateWhenMixed(t *testing.T) {
	opps := []model.Opportunity{
		{Citations: citationsFor(8, 5, "pricing", "docs", "reviews")},
		{Citations: citationsFor(4, 30, "pricing", "docs")},
		{},
		{},
		{},
		{},
	}

	agg := Aggregate(opps, confNow)

	assert.Equal(t, 1, agg.HighCount)
	assert.Equal(t, 1, agg.ModerateCount)
	assert.Equal(t, LevelModerate, agg.Level, "one high among six does not dominate")
}

func TestAggregate_ExploratoryWhenEmpty(t *testing.T) {
	agg := Aggregate(nil, confNow)
	assert.Equal(t, LevelExploratory, agg.Level)

	agg = Aggregate([]model.Opportunity{{}, {}}, confNow)
	assert.Equal(t, LevelExploratory, agg.Level)
	assert.Equal(t, 2, agg.ExploratoryCount)
}

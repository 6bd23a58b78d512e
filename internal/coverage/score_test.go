package coverage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/compete-cli/internal/model"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

func item(url string, typ model.EvidenceType, published *time.Time) model.EvidenceItem {
	return model.EvidenceItem{URL: url, Type: typ, PublishedAt: published}
}

func TestComputeScore_NilBundle(t *testing.T) {
	result := ComputeScore(nil, Options{}, testNow)

	assert.False(t, result.IsSufficient)
	assert.Equal(t, LabelInsufficient, result.ScoreLabel)
	assert.Nil(t, result.Score10, "insufficient bundles must never expose a number")
	assert.Equal(t, []string{"No evidence bundle available"}, result.Reasons.FailedChecks)
	assert.Zero(t, result.Reasons.TypeCount)
	assert.Zero(t, result.Reasons.FirstPartyRatio)
}

func TestComputeScore_EmptyBundle(t *testing.T) {
	result := ComputeScore(&model.EvidenceBundle{}, Options{}, testNow)

	assert.False(t, result.IsSufficient)
	assert.Equal(t, LabelInsufficient, result.ScoreLabel)
	assert.Nil(t, result.Score10)
}

func TestComputeScore_RichRecentBundle(t *testing.T) {
	bundle := &model.EvidenceBundle{
		PrimaryURL: "https://www.acme.io",
		Company:    "Acme",
		Items: []model.EvidenceItem{
			item("https://acme.io/pricing", model.EvidencePricing, daysAgo(5)),
			item("https://docs.acme.io/start", model.EvidenceDocs, daysAgo(5)),
			item("https://acme.io/changelog", model.EvidenceChangelog, daysAgo(5)),
			item("https://acme.io/blog/launch", model.EvidenceBlog, daysAgo(5)),
			item("https://g2.com/acme", model.EvidenceReviews, daysAgo(5)),
			item("https://boards.example.com/acme", model.EvidenceJobs, daysAgo(5)),
		},
	}

	result := ComputeScore(bundle, Options{}, testNow)

	require.True(t, result.IsSufficient, "failed checks: %v", result.Reasons.FailedChecks)
	require.NotNil(t, result.Score10)

	// coverage 6/9, recency 1.0 (5d median), first-party 4/6 over 0.6 target.
	// 0.45*0.6667 + 0.35*1.0 + 0.20*1.0 = 0.85 -> 8.5.
	assert.InDelta(t, 8.5, *result.Score10, 0.001)
	assert.Equal(t, LabelHigh, result.ScoreLabel)

	assert.Equal(t, 6, result.Reasons.TypeCount)
	assert.Equal(t, 4, result.Reasons.FirstPartyCount)
	require.NotNil(t, result.Reasons.MedianAgeDays)
	assert.InDelta(t, 5, *result.Reasons.MedianAgeDays, 0.01)
	assert.Equal(t, 1.0, result.Reasons.RecencyScore)
}

func TestComputeScore_StaleEvidenceFailsGate(t *testing.T) {
	bundle := &model.EvidenceBundle{
		PrimaryURL: "https://acme.io",
		Items: []model.EvidenceItem{
			item("https://acme.io/pricing", model.EvidencePricing, daysAgo(200)),
			item("https://acme.io/docs", model.EvidenceDocs, daysAgo(210)),
			item("https://g2.com/acme", model.EvidenceReviews, daysAgo(220)),
		},
	}

	result := ComputeScore(bundle, Options{}, testNow)

	assert.False(t, result.IsSufficient)
	assert.Nil(t, result.Score10, "gated score must be omitted entirely")
	assert.Equal(t, LabelInsufficient, result.ScoreLabel)
	assert.Equal(t, 0.0, result.Reasons.RecencyScore, "beyond cutoff age earns no recency credit")
	require.Len(t, result.Reasons.FailedChecks, 1)
	assert.Contains(t, result.Reasons.FailedChecks[0], "median evidence age")
}

func TestComputeScore_NoDatesUsesNeutralRecency(t *testing.T) {
	bundle := &model.EvidenceBundle{
		PrimaryURL: "https://acme.io",
		Items: []model.EvidenceItem{
			item("https://acme.io/pricing", model.EvidencePricing, nil),
			item("https://acme.io/docs", model.EvidenceDocs, nil),
			item("https://g2.com/acme", model.EvidenceReviews, nil),
		},
	}

	result := ComputeScore(bundle, Options{}, testNow)

	assert.Nil(t, result.Reasons.MedianAgeDays)
	assert.Equal(t, 0.5, result.Reasons.RecencyScore)
	// Unknown median age must not trip the max-age check.
	assert.True(t, result.IsSufficient, "failed checks: %v", result.Reasons.FailedChecks)
}

func TestComputeScore_RetrievedAtFallback(t *testing.T) {
	bundle := &model.EvidenceBundle{
		PrimaryURL: "https://acme.io",
		Items: []model.EvidenceItem{
			{URL: "https://acme.io/pricing", Type: model.EvidencePricing, RetrievedAt: daysAgo(3)},
		},
	}

	result := ComputeScore(bundle, Options{}, testNow)

	require.NotNil(t, result.Reasons.MedianAgeDays)
	assert.InDelta(t, 3, *result.Reasons.MedianAgeDays, 0.01)
}

func TestComputeScore_ExplicitCompetitorDomains(t *testing.T) {
	bundle := &model.EvidenceBundle{
		Items: []model.EvidenceItem{
			item("https://rival.dev/pricing", model.EvidencePricing, daysAgo(1)),
			item("https://app.rival.dev/docs", model.EvidenceDocs, daysAgo(1)),
			item("https://news.example.com/rival", model.EvidenceBlog, daysAgo(1)),
		},
	}

	result := ComputeScore(bundle, Options{CompetitorDomains: []string{"rival.dev"}}, testNow)

	assert.Equal(t, 2, result.Reasons.FirstPartyCount, "subdomains count as first-party")
}

func TestComputeScore_RecencyDecayBands(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 1.0, recencyScore(0, p))
	assert.Equal(t, 1.0, recencyScore(14, p))
	assert.InDelta(t, 0.6, recencyScore(52, p), 0.001, "midpoint of 14-90d band")
	assert.InDelta(t, 0.2, recencyScore(90, p), 0.001)
	assert.InDelta(t, 0.1, recencyScore(135, p), 0.001, "midpoint of 90-180d band")
	assert.Equal(t, 0.0, recencyScore(181, p))
}

func TestComputeScore_ScoreAlwaysInRange(t *testing.T) {
	bundles := []*model.EvidenceBundle{
		{PrimaryURL: "https://a.com", Items: []model.EvidenceItem{
			item("https://a.com/p", model.EvidencePricing, daysAgo(1)),
			item("https://a.com/d", model.EvidenceDocs, daysAgo(1)),
			item("https://a.com/c", model.EvidenceChangelog, daysAgo(1)),
			item("https://a.com/b", model.EvidenceBlog, daysAgo(1)),
			item("https://a.com/s", model.EvidenceSecurity, daysAgo(1)),
			item("https://a.com/j", model.EvidenceJobs, daysAgo(1)),
			item("https://a.com/r", model.EvidenceReviews, daysAgo(1)),
			item("https://a.com/m", model.EvidenceCommunity, daysAgo(1)),
			item("https://a.com/o", model.EvidenceOther, daysAgo(1)),
		}},
		{PrimaryURL: "https://b.com", Items: []model.EvidenceItem{
			item("https://x.com/1", model.EvidenceOther, daysAgo(100)),
			item("https://y.com/2", model.EvidenceBlog, daysAgo(100)),
			item("https://b.com/3", model.EvidencePricing, daysAgo(100)),
		}},
	}

	for _, b := range bundles {
		result := ComputeScore(b, Options{}, testNow)
		if result.Score10 != nil {
			assert.GreaterOrEqual(t, *result.Score10, 0.0)
			assert.LessOrEqual(t, *result.Score10, 10.0)
		}
	}
}

func TestMedianAgeDays_EvenCount(t *testing.T) {
	items := []model.EvidenceItem{
		item("https://a.com/1", model.EvidenceDocs, daysAgo(10)),
		item("https://a.com/2", model.EvidenceDocs, daysAgo(20)),
		item("https://a.com/3", model.EvidenceDocs, daysAgo(30)),
		item("https://a.com/4", model.EvidenceDocs, daysAgo(40)),
	}

	median := medianAgeDays(items, testNow)
	require.NotNil(t, median)
	assert.InDelta(t, 25, *median, 0.01)
}

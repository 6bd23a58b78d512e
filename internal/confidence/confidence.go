// Package confidence assigns a decision-confidence tier to generated
// opportunities based on the evidence behind their proof points.
package confidence

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scoutline/compete-cli/internal/citations"
	"github.com/scoutline/compete-cli/internal/model"
)

// Confidence levels, weakest to strongest.
const (
	LevelExploratory = "exploratory"
	LevelModerate    = "moderate"
	LevelHigh        = "high"
)

// Tier thresholds. High additionally requires fresh evidence or a strong
// recency score from the opportunity's scoring breakdown.
const (
	highMinEvidence     = 8
	highMinSourceTypes  = 3
	highMaxAgeDays      = 30
	highMinRecencyScore = 7 // on the breakdown's 0-10 scale
	moderateMinEvidence = 4
	moderateMinTypes    = 2
	moderateMaxAgeDays  = 90
)

const earlySignalReason = "Early signal, worth validating"

// Result is the confidence verdict for a single opportunity. Reasons list
// only facts actually computed from the evidence, in a fixed order.
type Result struct {
	Level           string     `json:"level"`
	EvidenceCount   int        `json:"evidence_count"`
	SourceTypeCount int        `json:"source_type_count"`
	NewestEvidence  *time.Time `json:"newest_evidence,omitempty"`
	Reasons         []string   `json:"reasons"`
}

// AggregateResult folds per-opportunity confidence over a whole run.
type AggregateResult struct {
	Level            string   `json:"level"`
	HighCount        int      `json:"high_count"`
	ModerateCount    int      `json:"moderate_count"`
	ExploratoryCount int      `json:"exploratory_count"`
	Results          []Result `json:"results"`
}

// Compute derives the confidence tier for one opportunity. Citations from
// proof points and the top level are merged and de-duplicated by URL before
// counting.
func Compute(opp model.Opportunity, now time.Time) Result {
	merged := mergeCitations(opp)

	result := Result{EvidenceCount: len(merged)}

	seenTypes := make(map[string]bool)
	for _, c := range merged {
		st := citations.NormalizeSourceType(firstNonEmpty(c.SourceType, c.SourceTypeAlt))
		seenTypes[st] = true

		if date := citations.BestDate(c); date != nil {
			if result.NewestEvidence == nil || date.After(*result.NewestEvidence) {
				result.NewestEvidence = date
			}
		}
	}
	result.SourceTypeCount = len(seenTypes)

	recency := recencyConfidence(opp.Scoring)
	hasBreakdown := opp.Scoring != nil && len(opp.Scoring.Breakdown) > 0

	if result.EvidenceCount == 0 && !hasBreakdown {
		result.Level = LevelExploratory
		result.Reasons = []string{earlySignalReason}
		return result
	}

	var newestAge *float64
	if result.NewestEvidence != nil {
		age := now.Sub(*result.NewestEvidence).Hours() / 24
		if age < 0 {
			age = 0
		}
		newestAge = &age
	}

	switch {
	case result.EvidenceCount >= highMinEvidence &&
		result.SourceTypeCount >= highMinSourceTypes &&
		((newestAge != nil && *newestAge <= highMaxAgeDays) ||
			(recency != nil && *recency >= highMinRecencyScore)):
		result.Level = LevelHigh
	case result.EvidenceCount >= moderateMinEvidence &&
		result.SourceTypeCount >= moderateMinTypes &&
		(newestAge == nil || *newestAge <= moderateMaxAgeDays):
		result.Level = LevelModerate
	default:
		result.Level = LevelExploratory
	}

	result.Reasons = buildReasons(result, newestAge, recency, hasBreakdown)
	return result
}

// Aggregate folds per-opportunity confidence into an overall level for a
// run. High wins only when high-confidence opportunities dominate.
func Aggregate(opps []model.Opportunity, now time.Time) AggregateResult {
	agg := AggregateResult{Level: LevelExploratory}

	for _, opp := range opps {
		r := Compute(opp, now)
		agg.Results = append(agg.Results, r)
		switch r.Level {
		case LevelHigh:
			agg.HighCount++
		case LevelModerate:
			agg.ModerateCount++
		default:
			agg.ExploratoryCount++
		}
	}

	n := len(opps)
	switch {
	case agg.HighCount > agg.ModerateCount+n/3:
		agg.Level = LevelHigh
	case agg.ModerateCount > 0 || agg.HighCount > 0:
		agg.Level = LevelModerate
	}

	zap.L().Debug("confidence: aggregated run",
		zap.Int("opportunities", n),
		zap.Int("high", agg.HighCount),
		zap.Int("moderate", agg.ModerateCount),
		zap.String("level", agg.Level),
	)

	return agg
}

// mergeCitations collects proof-point and top-level citations, dropping
// URL-less entries and duplicates by URL.
func mergeCitations(opp model.Opportunity) []model.Citation {
	var merged []model.Citation
	seen := make(map[string]bool)

	add := func(c model.Citation) {
		url := strings.TrimSpace(c.URL)
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		merged = append(merged, c)
	}

	for _, pp := range opp.ProofPoints {
		for _, c := range pp.Citations {
			add(c)
		}
	}
	for _, c := range opp.Citations {
		add(c)
	}

	return merged
}

// buildReasons states the computed facts behind a verdict: source count,
// source-type mix, recency, and breakdown presence, in that order.
func buildReasons(r Result, newestAge, recency *float64, hasBreakdown bool) []string {
	var reasons []string

	if r.EvidenceCount == 1 {
		reasons = append(reasons, "1 supporting source")
	} else {
		reasons = append(reasons, fmt.Sprintf("%d supporting sources", r.EvidenceCount))
	}

	if r.SourceTypeCount > 1 {
		reasons = append(reasons, fmt.Sprintf("evidence spans %d source types", r.SourceTypeCount))
	} else if r.EvidenceCount > 0 {
		reasons = append(reasons, "all evidence from a single source type")
	}

	if newestAge != nil {
		reasons = append(reasons, fmt.Sprintf("newest evidence is %.0f days old", *newestAge))
	} else if r.EvidenceCount > 0 {
		reasons = append(reasons, "no evidence dates available")
	}

	if recency != nil {
		reasons = append(reasons, fmt.Sprintf("recency confidence %.1f/10 from scoring breakdown", *recency))
	} else if hasBreakdown {
		reasons = append(reasons, "scoring breakdown present")
	}

	return reasons
}

// recencyConfidence pulls the 0-10 recency score out of an opportunity's
// scoring breakdown, if present.
func recencyConfidence(scoring *model.OpportunityScoring) *float64 {
	if scoring == nil {
		return nil
	}
	if v, ok := scoring.Breakdown["recency_confidence"]; ok {
		return &v
	}
	if v, ok := scoring.Breakdown["recencyConfidence"]; ok {
		return &v
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

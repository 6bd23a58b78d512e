package citations

import (
	"time"

	"github.com/scoutline/compete-cli/internal/model"
)

// Coverage classes for a citation set.
const (
	CoverageInsufficient = "insufficient"
	CoveragePartial      = "partial"
	CoverageComplete     = "complete"
)

// Confidence classes for a citation set.
const (
	ConfidenceLow      = "low"
	ConfidenceModerate = "moderate"
	ConfidenceHigh     = "high"
)

// Directional labels shown in place of a suppressed numeric score.
const (
	DirectionalStrong  = "strong"
	DirectionalMixed   = "mixed"
	DirectionalWeak    = "weak"
	DirectionalUnclear = "unclear"
)

// Classification thresholds. Coverage counts citations and distinct source
// types; confidence additionally looks at how recent the newest citation is.
const (
	partialMinCitations    = 2
	partialMinSourceTypes  = 2
	completeMinCitations   = 4
	completeMinSourceTypes = 3

	highMinCitations   = 8
	highMinSourceTypes = 4
	highMaxAgeDays     = 60
	moderateMaxAgeDays = 120
)

// GateResult is the full gating verdict for one competitor score.
// Directional is always derived from the original score, even when the
// numeric value is suppressed, so callers can still describe the signal
// without exposing a number they cannot defend.
type GateResult struct {
	Coverage    string                `json:"coverage"`
	Confidence  string                `json:"confidence"`
	ShowNumeric bool                  `json:"show_numeric"`
	Score       *float64              `json:"score,omitempty"`
	Directional string                `json:"directional"`
	Summary     model.EvidenceSummary `json:"summary"`
}

// ComputeCoverage classifies the breadth of a citation set.
func ComputeCoverage(summary model.EvidenceSummary) string {
	types := len(summary.SourceTypes)
	switch {
	case summary.TotalCitations < partialMinCitations || types < partialMinSourceTypes:
		return CoverageInsufficient
	case summary.TotalCitations >= completeMinCitations && types >= completeMinSourceTypes:
		return CoverageComplete
	default:
		return CoveragePartial
	}
}

// ComputeConfidence classifies how much trust the citation set supports.
// Unparseable dates are treated as absent and never fail the call.
func ComputeConfidence(summary model.EvidenceSummary, now time.Time) string {
	newestAge := newestAgeDays(summary, now)

	if summary.TotalCitations >= highMinCitations &&
		len(summary.SourceTypes) >= highMinSourceTypes &&
		newestAge != nil && *newestAge <= highMaxAgeDays {
		return ConfidenceHigh
	}

	coverage := ComputeCoverage(summary)
	if coverage == CoverageComplete && (newestAge == nil || *newestAge <= moderateMaxAgeDays) {
		return ConfidenceModerate
	}
	if summary.TotalCitations >= completeMinCitations &&
		newestAge != nil && *newestAge <= moderateMaxAgeDays {
		return ConfidenceModerate
	}

	return ConfidenceLow
}

// ShouldShowNumericScore reports whether a numeric score is defensible for
// the given coverage and confidence classes.
func ShouldShowNumericScore(coverage, confidence string) bool {
	return coverage == CoverageComplete &&
		(confidence == ConfidenceModerate || confidence == ConfidenceHigh)
}

// DirectionalFromScore maps a 0-10 score onto its qualitative stand-in.
// A nil score is unclear.
func DirectionalFromScore(score *float64) string {
	if score == nil {
		return DirectionalUnclear
	}
	switch {
	case *score >= 7:
		return DirectionalStrong
	case *score >= 4:
		return DirectionalMixed
	case *score >= 1:
		return DirectionalWeak
	default:
		return DirectionalUnclear
	}
}

// GateScore composes summarization, classification, and numeric-display
// gating for one score and its citations.
func GateScore(score *float64, cits []model.Citation, now time.Time) GateResult {
	summary := Summarize(cits)
	coverage := ComputeCoverage(summary)
	confidence := ComputeConfidence(summary, now)
	show := ShouldShowNumericScore(coverage, confidence)

	result := GateResult{
		Coverage:    coverage,
		Confidence:  confidence,
		ShowNumeric: show,
		Directional: DirectionalFromScore(score),
		Summary:     summary,
	}
	if show {
		result.Score = score
	}
	return result
}

// newestAgeDays returns the age in days of the newest citation, or nil when
// no citation carries a parseable date.
func newestAgeDays(summary model.EvidenceSummary, now time.Time) *float64 {
	if summary.NewestCitationDate == nil {
		return nil
	}
	age := now.Sub(*summary.NewestCitationDate).Hours() / 24
	if age < 0 {
		age = 0
	}
	return &age
}

package coverage

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scoutline/compete-cli/internal/model"
)

// Score labels on the 0-10 coverage score.
const (
	LabelHigh         = "High"
	LabelMedium       = "Medium"
	LabelLow          = "Low"
	LabelInsufficient = "Insufficient"
)

// Options tunes a single ComputeScore call. A zero Options uses the default
// policy and derives competitor domains from the bundle itself.
type Options struct {
	Policy            *Policy
	CompetitorDomains []string
}

// Reasons records every intermediate quantity behind a coverage score, so a
// result is fully reproducible from the bundle and policy alone.
type Reasons struct {
	TotalSources    int      `json:"total_sources"`
	TypeCount       int      `json:"type_count"`
	TypesPresent    []string `json:"types_present,omitempty"`
	FirstPartyCount int      `json:"first_party_count"`
	FirstPartyRatio float64  `json:"first_party_ratio"`
	MedianAgeDays   *float64 `json:"median_age_days,omitempty"`
	RecencyScore    float64  `json:"recency_score"`
	CoverageScore   float64  `json:"coverage_score"`
	FirstPartyScore float64  `json:"first_party_score"`
	FailedChecks    []string `json:"failed_checks,omitempty"`
}

// Result is the coverage verdict for one evidence bundle. Score10 is only
// populated when the bundle passes every sufficiency check; an insufficient
// bundle never exposes a number, even internally computed ones.
type Result struct {
	IsSufficient bool     `json:"is_sufficient"`
	Score10      *float64 `json:"score10,omitempty"`
	ScoreLabel   string   `json:"score_label"`
	Reasons      Reasons  `json:"reasons"`
}

// ComputeScore scores one evidence bundle on a 0-10 scale from type
// diversity, recency, and first-party ratio, and gates the numeric score
// behind the policy's sufficiency checks. Pure: the same bundle, options,
// and now always produce the same result.
func ComputeScore(bundle *model.EvidenceBundle, opts Options, now time.Time) Result {
	policy := DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	if bundle == nil || len(bundle.Items) == 0 {
		return Result{
			IsSufficient: false,
			ScoreLabel:   LabelInsufficient,
			Reasons: Reasons{
				FailedChecks: []string{"No evidence bundle available"},
			},
		}
	}

	reasons := Reasons{TotalSources: len(bundle.Items)}

	// Type diversity across the closed universe.
	seen := make(map[model.EvidenceType]bool)
	for _, item := range bundle.Items {
		if item.Type != "" && !seen[item.Type] {
			seen[item.Type] = true
			reasons.TypesPresent = append(reasons.TypesPresent, string(item.Type))
		}
	}
	sort.Strings(reasons.TypesPresent)
	reasons.TypeCount = len(seen)

	// First-party vs third-party split.
	domains := opts.CompetitorDomains
	if len(domains) == 0 {
		domains = deriveCompetitorDomains(bundle)
	}
	for _, item := range bundle.Items {
		if isFirstParty(item, domains) {
			reasons.FirstPartyCount++
		}
	}
	reasons.FirstPartyRatio = float64(reasons.FirstPartyCount) / float64(reasons.TotalSources)

	// Median evidence age across items with a parseable date.
	reasons.MedianAgeDays = medianAgeDays(bundle.Items, now)
	if reasons.MedianAgeDays == nil {
		reasons.RecencyScore = policy.NoDateRecencyScore
	} else {
		reasons.RecencyScore = recencyScore(*reasons.MedianAgeDays, policy)
	}

	reasons.CoverageScore = clamp01(float64(reasons.TypeCount) / float64(len(model.EvidenceTypes)))
	reasons.FirstPartyScore = clamp01(reasons.FirstPartyRatio / policy.FirstPartyTarget)

	final01 := policy.CoverageWeight*reasons.CoverageScore +
		policy.RecencyWeight*reasons.RecencyScore +
		policy.FirstPartyWeight*reasons.FirstPartyScore
	score10 := math.Round(final01*10*10) / 10

	reasons.FailedChecks = failedChecks(reasons, policy)

	result := Result{
		IsSufficient: len(reasons.FailedChecks) == 0,
		Reasons:      reasons,
	}
	if result.IsSufficient {
		result.Score10 = &score10
		result.ScoreLabel = scoreLabel(score10, policy)
	} else {
		result.ScoreLabel = LabelInsufficient
	}

	zap.L().Debug("coverage: bundle scored",
		zap.String("company", bundle.Company),
		zap.Int("sources", reasons.TotalSources),
		zap.Int("types", reasons.TypeCount),
		zap.Bool("sufficient", result.IsSufficient),
	)

	return result
}

// failedChecks evaluates the sufficiency gate, returning one human-readable
// message per failed check. An unknown median age skips the age check rather
// than failing it.
func failedChecks(r Reasons, p Policy) []string {
	var failed []string

	if r.TotalSources < p.MinTotalSources {
		failed = append(failed, fmt.Sprintf(
			"only %d sources collected (minimum %d)", r.TotalSources, p.MinTotalSources))
	}
	if r.TypeCount < p.MinEvidenceTypes {
		failed = append(failed, fmt.Sprintf(
			"only %d evidence types present (minimum %d)", r.TypeCount, p.MinEvidenceTypes))
	}
	if r.FirstPartyRatio < p.MinFirstPartyRatio {
		failed = append(failed, fmt.Sprintf(
			"first-party ratio %.2f below minimum %.2f", r.FirstPartyRatio, p.MinFirstPartyRatio))
	}
	if r.MedianAgeDays != nil && *r.MedianAgeDays > p.MaxMedianAgeDays {
		failed = append(failed, fmt.Sprintf(
			"median evidence age %.0f days exceeds %.0f days", *r.MedianAgeDays, p.MaxMedianAgeDays))
	}

	return failed
}

// recencyScore maps a median age in days onto [0,1] piecewise-linearly:
// full credit inside the fresh band, decaying to 0.2 at the stale band and
// to zero at the cutoff.
func recencyScore(ageDays float64, p Policy) float64 {
	switch {
	case ageDays <= p.FreshAgeDays:
		return 1.0
	case ageDays <= p.StaleAgeDays:
		return 1.0 - 0.8*(ageDays-p.FreshAgeDays)/(p.StaleAgeDays-p.FreshAgeDays)
	case ageDays <= p.CutoffAgeDays:
		return 0.2 - 0.2*(ageDays-p.StaleAgeDays)/(p.CutoffAgeDays-p.StaleAgeDays)
	default:
		return 0.0
	}
}

// medianAgeDays returns the median age of items carrying a parseable date
// (published_at preferred over retrieved_at), or nil when no item has one.
func medianAgeDays(items []model.EvidenceItem, now time.Time) *float64 {
	var ages []float64
	for _, item := range items {
		date := item.PublishedAt
		if date == nil {
			date = item.RetrievedAt
		}
		if date == nil {
			continue
		}
		age := now.Sub(*date).Hours() / 24
		if age < 0 {
			age = 0
		}
		ages = append(ages, age)
	}
	if len(ages) == 0 {
		return nil
	}

	sort.Float64s(ages)
	mid := len(ages) / 2
	var median float64
	if len(ages)%2 == 1 {
		median = ages[mid]
	} else {
		median = (ages[mid-1] + ages[mid]) / 2
	}
	return &median
}

// deriveCompetitorDomains builds the first-party domain set from the
// bundle's primary URL and company name when the caller supplies none.
func deriveCompetitorDomains(bundle *model.EvidenceBundle) []string {
	var domains []string
	if host := hostOf(bundle.PrimaryURL); host != "" {
		domains = append(domains, host)
	}
	if bundle.Company != "" {
		name := strings.ToLower(strings.ReplaceAll(bundle.Company, " ", ""))
		if name != "" {
			domains = append(domains, name+".com")
		}
	}
	return domains
}

// isFirstParty reports whether an item is hosted on one of the competitor's
// own domains. Subdomains count as first-party.
func isFirstParty(item model.EvidenceItem, domains []string) bool {
	host := strings.TrimPrefix(strings.ToLower(item.Domain), "www.")
	if host == "" {
		host = hostOf(item.URL)
	}
	if host == "" {
		return false
	}
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(d), "www.")
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// hostOf extracts a normalized host from a URL, stripping "www.".
func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}

// scoreLabel maps a 0-10 score onto its qualitative band.
func scoreLabel(score10 float64, p Policy) string {
	switch {
	case score10 >= p.HighBand:
		return LabelHigh
	case score10 >= p.MediumBand:
		return LabelMedium
	case score10 >= p.LowBand:
		return LabelLow
	default:
		return LabelInsufficient
	}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// Package citations reduces loosely-typed citation lists to an evidence
// summary and decides whether a numeric score may be displayed or must
// degrade to a directional label.
package citations

import (
	"strconv"
	"strings"
	"time"

	"github.com/scoutline/compete-cli/internal/model"
)

// sourceTypeSynonyms folds the source-type strings historical producers have
// emitted into the closed evidence-type vocabulary.
var sourceTypeSynonyms = map[string]string{
	"pricing":       "pricing",
	"price":         "pricing",
	"docs":          "docs",
	"doc":           "docs",
	"documentation": "docs",
	"reviews":       "reviews",
	"review":        "reviews",
	"jobs":          "jobs",
	"job":           "jobs",
	"careers":       "jobs",
	"changelog":     "changelog",
	"release_notes": "changelog",
	"releases":      "changelog",
	"blog":          "blog",
	"article":       "blog",
	"community":     "community",
	"forum":         "community",
	"security":      "security",
	"compliance":    "security",
}

// dateLayouts is the fixed set of layouts tried when parsing citation dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006",
}

// Summarize reduces a raw citation list to its evidence summary. Citations
// without a URL are dropped; malformed dates are treated as absent, never
// as errors.
func Summarize(citations []model.Citation) model.EvidenceSummary {
	summary := model.EvidenceSummary{}
	seenTypes := make(map[string]bool)

	for _, c := range citations {
		if strings.TrimSpace(c.URL) == "" {
			continue
		}
		summary.TotalCitations++

		st := NormalizeSourceType(firstNonEmpty(c.SourceType, c.SourceTypeAlt))
		if !seenTypes[st] {
			seenTypes[st] = true
			summary.SourceTypes = append(summary.SourceTypes, st)
		}

		date := BestDate(c)
		if date == nil {
			continue
		}
		if summary.NewestCitationDate == nil || date.After(*summary.NewestCitationDate) {
			summary.NewestCitationDate = date
		}
		if summary.OldestCitationDate == nil || date.Before(*summary.OldestCitationDate) {
			summary.OldestCitationDate = date
		}
	}

	if summary.NewestCitationDate != nil && summary.OldestCitationDate != nil {
		window := int(summary.NewestCitationDate.Sub(*summary.OldestCitationDate).Hours() / 24)
		summary.EvidenceWindowDays = &window
	}

	return summary
}

// NormalizeSourceType folds a raw source-type string into the closed
// vocabulary. Unknown or empty values map to "other".
func NormalizeSourceType(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if normalized, ok := sourceTypeSynonyms[key]; ok {
		return normalized
	}
	return "other"
}

// BestDate extracts the best available date from a citation, trying the
// legacy fields in a fixed priority order. Returns nil when nothing parses.
func BestDate(c model.Citation) *time.Time {
	for _, candidate := range []string{
		c.Date, c.PublishedAt, c.PublishedAlt, c.ExtractedAt, c.ExtractedAlt,
	} {
		if t := parseDate(candidate); t != nil {
			return t
		}
	}
	if c.Timestamp != "" {
		if t := parseTimestamp(string(c.Timestamp)); t != nil {
			return t
		}
	}
	return nil
}

// parseDate tries each known layout against a raw date string.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// parseTimestamp interprets a numeric timestamp as unix seconds, or unix
// milliseconds when the magnitude demands it.
func parseTimestamp(raw string) *time.Time {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return nil
	}
	if n > 1_000_000_000_000 {
		n /= 1000
	}
	t := time.Unix(n, 0).UTC()
	return &t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

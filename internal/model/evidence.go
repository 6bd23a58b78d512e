// Package model defines the shared data shapes consumed by the scoring,
// gating, and state-derivation engines. Everything here is produced upstream
// (scrapers, synthesis) and treated as immutable by the engines.
package model

import (
	"encoding/json"
	"time"
)

// EvidenceType classifies a single piece of collected source material.
type EvidenceType string

const (
	EvidencePricing   EvidenceType = "pricing"
	EvidenceDocs      EvidenceType = "docs"
	EvidenceReviews   EvidenceType = "reviews"
	EvidenceJobs      EvidenceType = "jobs"
	EvidenceChangelog EvidenceType = "changelog"
	EvidenceBlog      EvidenceType = "blog"
	EvidenceCommunity EvidenceType = "community"
	EvidenceSecurity  EvidenceType = "security"
	EvidenceOther     EvidenceType = "other"
)

// EvidenceTypes is the closed universe of evidence types. Coverage breadth
// is measured against its size.
var EvidenceTypes = []EvidenceType{
	EvidencePricing, EvidenceDocs, EvidenceReviews, EvidenceJobs,
	EvidenceChangelog, EvidenceBlog, EvidenceCommunity, EvidenceSecurity,
	EvidenceOther,
}

// EvidenceItem is one piece of collected source material about a competitor.
type EvidenceItem struct {
	ID          string       `json:"id"`
	URL         string       `json:"url"`
	Domain      string       `json:"domain,omitempty"`
	Type        EvidenceType `json:"type"`
	Title       string       `json:"title,omitempty"`
	Snippet     string       `json:"snippet,omitempty"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
	RetrievedAt *time.Time   `json:"retrieved_at,omitempty"`
	ScoreHint   *float64     `json:"score_hint,omitempty"`
}

// EvidenceBundle is the full set of evidence collected for one competitor.
// The engines only read it; ownership stays with the caller.
type EvidenceBundle struct {
	Items      []EvidenceItem `json:"items"`
	PrimaryURL string         `json:"primary_url,omitempty"`
	Company    string         `json:"company,omitempty"`
}

// Citation is a loosely-typed reference attached to generated opportunities.
// Upstream producers have used several field names for the source type and
// date over time; all are tolerated and normalized downstream.
type Citation struct {
	URL           string      `json:"url"`
	SourceType    string      `json:"source_type,omitempty"`
	SourceTypeAlt string      `json:"sourceType,omitempty"`
	Date          string      `json:"date,omitempty"`
	PublishedAt   string      `json:"published_at,omitempty"`
	PublishedAlt  string      `json:"publishedAt,omitempty"`
	ExtractedAt   string      `json:"extracted_at,omitempty"`
	ExtractedAlt  string      `json:"extractedAt,omitempty"`
	Timestamp     json.Number `json:"timestamp,omitempty"`
}

// EvidenceSummary is the derived rollup of a citation list. Computed, never
// stored.
type EvidenceSummary struct {
	TotalCitations     int        `json:"total_citations"`
	SourceTypes        []string   `json:"source_types"`
	NewestCitationDate *time.Time `json:"newest_citation_date,omitempty"`
	OldestCitationDate *time.Time `json:"oldest_citation_date,omitempty"`
	EvidenceWindowDays *int       `json:"evidence_window_days,omitempty"`
}

// CoverageLite is the cheap coverage readout used by the run state machine.
type CoverageLite struct {
	CompetitorIDsWithEvidence []string `json:"competitor_ids_with_evidence"`
	EvidenceTypesPresent      []string `json:"evidence_types_present"`
	IsEvidenceSufficient      bool     `json:"is_evidence_sufficient"`
	ReasonsMissing            []string `json:"reasons_missing,omitempty"`
}

package model

import "time"

// Run is one end-to-end execution of the analysis pipeline for a project.
// Status strings come straight from the run repository; historical rows use
// a few synonyms ("complete", "succeeded") that the state machine folds
// together.
type Run struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Competitor is a tracked rival within a project.
type Competitor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
}

// OpportunityCounts carries pre-normalized opportunity counts per artifact
// generation. The v3 count wins when both are present.
type OpportunityCounts struct {
	V3 int `json:"v3"`
	V2 int `json:"v2"`
}

// ProofPoint is one claim inside a generated opportunity, backed by
// citations.
type ProofPoint struct {
	Claim     string     `json:"claim,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

// OpportunityScoring is the optional scoring breakdown attached to a
// generated opportunity. Breakdown values are on a 0-10 scale.
type OpportunityScoring struct {
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// Opportunity is one generated strategic opportunity as consumed by the
// decision-confidence engine. Citations may appear per proof point, at the
// top level, or both.
type Opportunity struct {
	ID          string              `json:"id,omitempty"`
	Title       string              `json:"title,omitempty"`
	ProofPoints []ProofPoint        `json:"proof_points,omitempty"`
	Citations   []Citation          `json:"citations,omitempty"`
	Scoring     *OpportunityScoring `json:"scoring,omitempty"`
}

// Derived run-state enums. These are the only values the state machine
// emits; callers must not reconstruct them from raw rows.
const (
	RunStatusNone     = "none"
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
	RunStatusFailed   = "failed"

	EvidenceNotStarted = "not_started"
	EvidenceCollecting = "collecting"
	EvidencePartial    = "partial"
	EvidenceComplete   = "complete"

	OpportunitiesNone      = "none"
	OpportunitiesGenerated = "generated"

	RouteOpportunities = "opportunities"
	RouteCompetitors   = "competitors"

	CtaViewResults      = "view_results"
	CtaRunEvidence      = "run_evidence"
	CtaGenerateAnalysis = "generate_analysis"
)

// DecisionRunState is the canonical answer to "where does this analysis
// stand". It is recomputed from snapshot data on every read and is the
// single source of truth for run progress across all consumers.
type DecisionRunState struct {
	ProjectID           string  `json:"project_id"`
	RunID               string  `json:"run_id,omitempty"`
	RunStatus           string  `json:"run_status"`
	EvidenceStatus      string  `json:"evidence_status"`
	OpportunitiesStatus string  `json:"opportunities_status"`
	PrimaryRoute        string  `json:"primary_route"`
	PrimaryCta          *string `json:"primary_cta,omitempty"`
	Summary             string  `json:"summary"`
}

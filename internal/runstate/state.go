// Package runstate derives the canonical DecisionRunState for a project
// from a consistent snapshot of its run, competitors, artifacts, and
// evidence. The derived state is recomputed on every read and is the single
// source of truth for "where does this analysis stand".
package runstate

import (
	"fmt"

	"github.com/scoutline/compete-cli/internal/model"
)

// Coverage and CTA gates.
const (
	// MinEvidenceCoverage is the evidence item count required before
	// evidence collection counts as complete.
	MinEvidenceCoverage = 5
	// MinCompetitorsCovered is how many distinct competitors must have
	// evidence before collection counts as complete.
	MinCompetitorsCovered = 2
	// MinCompetitorsForAnalysis gates the generate-analysis CTA.
	MinCompetitorsForAnalysis = 3
)

// Snapshot captures the four upstream reads the state machine derives from.
// Any field may carry its zero value when the corresponding read failed;
// derivation still produces a well-typed state.
type Snapshot struct {
	Run           *model.Run
	Competitors   []model.Competitor
	Opportunities model.OpportunityCounts
	Bundle        *model.EvidenceBundle
	Coverage      model.CoverageLite
}

// DeriveState computes the canonical run state from a snapshot. Pure: no
// reads, no clock, no hidden state.
func DeriveState(projectID string, snap Snapshot) model.DecisionRunState {
	runStatus := deriveRunStatus(snap.Run)
	evidenceCount := 0
	if snap.Bundle != nil {
		evidenceCount = len(snap.Bundle.Items)
	}
	evidenceStatus := deriveEvidenceStatus(runStatus, evidenceCount, len(snap.Coverage.CompetitorIDsWithEvidence))

	opportunityCount := snap.Opportunities.V3
	if opportunityCount == 0 {
		opportunityCount = snap.Opportunities.V2
	}
	opportunitiesStatus := model.OpportunitiesNone
	if opportunityCount > 0 {
		opportunitiesStatus = model.OpportunitiesGenerated
	}

	state := model.DecisionRunState{
		ProjectID:           projectID,
		RunStatus:           runStatus,
		EvidenceStatus:      evidenceStatus,
		OpportunitiesStatus: opportunitiesStatus,
	}
	if snap.Run != nil {
		state.RunID = snap.Run.ID
	}

	resultsReady := opportunitiesStatus == model.OpportunitiesGenerated || runStatus == model.RunStatusComplete
	if resultsReady {
		state.PrimaryRoute = model.RouteOpportunities
	} else {
		state.PrimaryRoute = model.RouteCompetitors
	}

	state.PrimaryCta = deriveCta(runStatus, evidenceStatus, resultsReady, len(snap.Competitors))
	state.Summary = summarize(state, evidenceCount, opportunityCount, len(snap.Competitors))

	return state
}

// deriveRunStatus folds raw run rows into the four canonical statuses.
// Historical rows use "complete" or "succeeded" and may carry either
// completion timestamp column.
func deriveRunStatus(run *model.Run) string {
	if run == nil {
		return model.RunStatusNone
	}
	if run.Status == "failed" {
		return model.RunStatusFailed
	}
	if run.CompletedAt != nil || run.FinishedAt != nil ||
		run.Status == "complete" || run.Status == "succeeded" {
		return model.RunStatusComplete
	}
	return model.RunStatusRunning
}

func deriveEvidenceStatus(runStatus string, evidenceCount, competitorsCovered int) string {
	switch {
	case evidenceCount == 0 && runStatus == model.RunStatusNone:
		return model.EvidenceNotStarted
	case evidenceCount == 0 && runStatus == model.RunStatusRunning:
		return model.EvidenceCollecting
	case evidenceCount >= MinEvidenceCoverage && competitorsCovered >= MinCompetitorsCovered:
		return model.EvidenceComplete
	case evidenceCount > 0:
		return model.EvidencePartial
	default:
		return model.EvidenceNotStarted
	}
}

// deriveCta picks the next recommended action. Rule order matters: results
// win over everything, a still-running run suppresses prompts, and evidence
// gaps outrank analysis generation.
func deriveCta(runStatus, evidenceStatus string, resultsReady bool, competitorCount int) *string {
	cta := func(s string) *string { return &s }

	switch {
	case resultsReady:
		return cta(model.CtaViewResults)
	case runStatus == model.RunStatusRunning:
		return nil
	case evidenceStatus == model.EvidenceNotStarted || evidenceStatus == model.EvidencePartial:
		return cta(model.CtaRunEvidence)
	case (evidenceStatus == model.EvidenceComplete || evidenceStatus == model.EvidenceCollecting) &&
		competitorCount >= MinCompetitorsForAnalysis:
		return cta(model.CtaGenerateAnalysis)
	default:
		return nil
	}
}

func summarize(state model.DecisionRunState, evidenceCount, opportunityCount, competitorCount int) string {
	switch {
	case state.RunStatus == model.RunStatusFailed:
		return "Last analysis run failed"
	case state.OpportunitiesStatus == model.OpportunitiesGenerated:
		return fmt.Sprintf("%d opportunities ready across %d competitors", opportunityCount, competitorCount)
	case state.RunStatus == model.RunStatusRunning:
		return fmt.Sprintf("Analysis running, %d evidence items collected", evidenceCount)
	case state.EvidenceStatus == model.EvidenceNotStarted:
		return "No evidence collected yet"
	case state.EvidenceStatus == model.EvidencePartial:
		return fmt.Sprintf("Partial evidence: %d items collected", evidenceCount)
	default:
		return fmt.Sprintf("Evidence complete: %d items across %d competitors", evidenceCount, competitorCount)
	}
}

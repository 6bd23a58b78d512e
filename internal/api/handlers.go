package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scoutline/compete-cli/internal/citations"
	"github.com/scoutline/compete-cli/internal/confidence"
	"github.com/scoutline/compete-cli/internal/coverage"
	"github.com/scoutline/compete-cli/internal/model"
	"github.com/scoutline/compete-cli/internal/runstate"
	"github.com/scoutline/compete-cli/internal/scorer"
)

// StateHandler serves the derived run state.
type StateHandler struct {
	repos runstate.Repos
}

func NewStateHandler(repos runstate.Repos) *StateHandler {
	return &StateHandler{repos: repos}
}

// Get returns the canonical DecisionRunState for a project.
// GET /api/v1/projects/{projectID}/state
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "projectID is required"})
		return
	}

	state := runstate.GetDecisionRunState(r.Context(), h.repos, projectID)
	writeJSON(w, http.StatusOK, state)
}

// ScoreHandler serves the pure scoring engines. Stateless; the only
// configuration is the coverage policy chosen at startup.
type ScoreHandler struct {
	policy coverage.Policy
}

func NewScoreHandler(policy coverage.Policy) *ScoreHandler {
	return &ScoreHandler{policy: policy}
}

// Coverage scores an evidence bundle.
// POST /api/v1/score/coverage
func (h *ScoreHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bundle            *model.EvidenceBundle `json:"bundle"`
		CompetitorDomains []string              `json:"competitor_domains,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result := coverage.ComputeScore(req.Bundle, coverage.Options{
		Policy:            &h.policy,
		CompetitorDomains: req.CompetitorDomains,
	}, time.Now().UTC())

	writeJSON(w, http.StatusOK, result)
}

// Gate runs the citation gate over a competitor score.
// POST /api/v1/score/gate
func (h *ScoreHandler) Gate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Score     *float64         `json:"score"`
		Citations []model.Citation `json:"citations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result := citations.GateScore(req.Score, req.Citations, time.Now().UTC())
	writeJSON(w, http.StatusOK, result)
}

// Opportunities assigns a confidence tier to each opportunity plus an
// aggregate for the whole list.
// POST /api/v1/score/opportunities
func (h *ScoreHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Opportunities []model.Opportunity `json:"opportunities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	writeJSON(w, http.StatusOK, confidence.Aggregate(req.Opportunities, time.Now().UTC()))
}

// Competitors computes weighted competitor totals from criteria and
// per-criterion dimension scores.
// POST /api/v1/score/competitors
func (h *ScoreHandler) Competitors(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Criteria []model.ScoringCriterion `json:"criteria"`
		Scores   []model.CriterionScore   `json:"scores"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	results := scorer.ComputeWeightedCompetitorScores(req.Criteria, req.Scores)
	if results == nil {
		results = []scorer.CompetitorScore{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

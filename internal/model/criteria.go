package model

// ScoringCriterion is one axis on which competitors are compared.
// Weight is a 1-5 importance multiplier set by the analyst.
type ScoringCriterion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Weight      int    `json:"weight"`
	HowToScore  string `json:"how_to_score,omitempty"`
}

// CriterionDimensionScores holds the five dimension scores for one
// competitor on one criterion, each in [0,1]. Friction is a negative
// dimension: higher means worse.
type CriterionDimensionScores struct {
	DiscoverySupport float64 `json:"discovery_support"`
	ExecutionSupport float64 `json:"execution_support"`
	Reliability      float64 `json:"reliability"`
	Flexibility      float64 `json:"flexibility"`
	Friction         float64 `json:"friction"`
}

// CriterionScore binds dimension scores to a competitor and criterion.
type CriterionScore struct {
	CompetitorName string                   `json:"competitor_name"`
	CriteriaID     string                   `json:"criteria_id"`
	Dimensions     CriterionDimensionScores `json:"dimensions"`
}

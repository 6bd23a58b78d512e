// Package coverage scores how much and how trustworthy the evidence
// collected for a competitor is, and gates whether a numeric score is
// defensible enough to surface at all.
package coverage

import (
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Policy holds every tunable constant of the coverage score. Defaults match
// the shipped scoring behavior; analysts can override them from YAML.
type Policy struct {
	// Blend weights for the final 0-1 score.
	CoverageWeight   float64 `yaml:"coverage_weight"`
	RecencyWeight    float64 `yaml:"recency_weight"`
	FirstPartyWeight float64 `yaml:"first_party_weight"`

	// Recency bands, in days of median evidence age.
	FreshAgeDays  float64 `yaml:"fresh_age_days"`
	StaleAgeDays  float64 `yaml:"stale_age_days"`
	CutoffAgeDays float64 `yaml:"cutoff_age_days"`

	// Recency score assigned when no item carries a parseable date.
	NoDateRecencyScore float64 `yaml:"no_date_recency_score"`

	// First-party ratio that earns full first-party credit.
	FirstPartyTarget float64 `yaml:"first_party_target"`

	// Label bands on the 0-10 score.
	HighBand   float64 `yaml:"high_band"`
	MediumBand float64 `yaml:"medium_band"`
	LowBand    float64 `yaml:"low_band"`

	// Sufficiency gate. A bundle failing any check never shows a number.
	MinTotalSources    int     `yaml:"min_total_sources"`
	MinEvidenceTypes   int     `yaml:"min_evidence_types"`
	MinFirstPartyRatio float64 `yaml:"min_first_party_ratio"`
	MaxMedianAgeDays   float64 `yaml:"max_median_age_days"`
}

// DefaultPolicy returns the shipped coverage policy.
func DefaultPolicy() Policy {
	return Policy{
		CoverageWeight:   0.45,
		RecencyWeight:    0.35,
		FirstPartyWeight: 0.20,

		FreshAgeDays:  14,
		StaleAgeDays:  90,
		CutoffAgeDays: 180,

		NoDateRecencyScore: 0.5,
		FirstPartyTarget:   0.6,

		HighBand:   7.5,
		MediumBand: 5.0,
		LowBand:    2.5,

		MinTotalSources:    3,
		MinEvidenceTypes:   2,
		MinFirstPartyRatio: 0.2,
		MaxMedianAgeDays:   120,
	}
}

// Validate checks that a Policy is internally consistent.
func (p Policy) Validate() error {
	if p.CoverageWeight < 0 || p.RecencyWeight < 0 || p.FirstPartyWeight < 0 {
		return eris.New("coverage: blend weights must be >= 0")
	}
	if p.CoverageWeight+p.RecencyWeight+p.FirstPartyWeight <= 0 {
		return eris.New("coverage: blend weight sum must be > 0")
	}
	if p.FreshAgeDays < 0 || p.StaleAgeDays <= p.FreshAgeDays || p.CutoffAgeDays <= p.StaleAgeDays {
		return eris.New("coverage: recency bands must be ordered fresh < stale < cutoff")
	}
	if p.FirstPartyTarget <= 0 {
		return eris.New("coverage: first_party_target must be > 0")
	}
	if math.IsNaN(p.NoDateRecencyScore) || p.NoDateRecencyScore < 0 || p.NoDateRecencyScore > 1 {
		return eris.New("coverage: no_date_recency_score must be in [0,1]")
	}
	if p.HighBand < p.MediumBand || p.MediumBand < p.LowBand {
		return eris.New("coverage: label bands must be ordered high >= medium >= low")
	}
	return nil
}

// LoadPolicy reads a coverage policy from a YAML file. Fields omitted in the
// file keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, eris.Wrapf(err, "coverage: read policy %s", path)
	}

	// The YAML has a top-level "coverage" key.
	wrapper := struct {
		Coverage Policy `yaml:"coverage"`
	}{Coverage: DefaultPolicy()}

	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Policy{}, eris.Wrap(err, "coverage: parse policy")
	}

	p := wrapper.Coverage
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

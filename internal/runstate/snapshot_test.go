package runstate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/compete-cli/internal/model"
)

// fakeRepos implements every repo interface with canned data and per-read
// failure switches.
type fakeRepos struct {
	run         *model.Run
	competitors []model.Competitor
	counts      model.OpportunityCounts
	bundle      *model.EvidenceBundle
	coverage    model.CoverageLite

	failRuns        bool
	failCompetitors bool
	failArtifacts   bool
	failEvidence    bool
	failCoverage    bool
}

var errDown = errors.New("store unavailable")

func (f *fakeRepos) LatestRun(context.Context, string) (*model.Run, error) {
	if f.failRuns {
		return nil, errDown
	}
	return f.run, nil
}

func (f *fakeRepos) LatestRunningRun(context.Context, string) (*model.Run, error) {
	return nil, nil
}

func (f *fakeRepos) ListCompetitors(context.Context, string) ([]model.Competitor, error) {
	if f.failCompetitors {
		return nil, errDown
	}
	return f.competitors, nil
}

func (f *fakeRepos) OpportunityCounts(context.Context, string) (model.OpportunityCounts, error) {
	if f.failArtifacts {
		return model.OpportunityCounts{}, errDown
	}
	return f.counts, nil
}

func (f *fakeRepos) LatestBundle(context.Context, string) (*model.EvidenceBundle, error) {
	if f.failEvidence {
		return nil, errDown
	}
	return f.bundle, nil
}

func (f *fakeRepos) CoverageLite(context.Context, string) (model.CoverageLite, error) {
	if f.failCoverage {
		return model.CoverageLite{}, errDown
	}
	return f.coverage, nil
}

func (f *fakeRepos) repos() Repos {
	return Repos{Runs: f, Competitors: f, Artifacts: f, Evidence: f, Coverage: f}
}

func TestLoadSnapshot_AllReadsSucceed(t *testing.T) {
	f := &fakeRepos{
		run:         &model.Run{ID: "r1", Status: "running"},
		competitors: competitors(3),
		counts:      model.OpportunityCounts{V3: 2},
		bundle:      bundleWith(6),
		coverage:    model.CoverageLite{CompetitorIDsWithEvidence: []string{"c1", "c2"}},
	}

	snap := LoadSnapshot(context.Background(), f.repos(), "p1")

	require.NotNil(t, snap.Run)
	assert.Equal(t, "r1", snap.Run.ID)
	assert.Len(t, snap.Competitors, 3)
	assert.Equal(t, 2, snap.Opportunities.V3)
	require.NotNil(t, snap.Bundle)
	assert.Len(t, snap.Bundle.Items, 6)
}

func TestLoadSnapshot_EachReadFailsIndependently(t *testing.T) {
	base := func() *fakeRepos {
		return &fakeRepos{
			run:         &model.Run{ID: "r1", Status: "complete"},
			competitors: competitors(3),
			counts:      model.OpportunityCounts{V3: 2},
			bundle:      bundleWith(6),
			coverage:    model.CoverageLite{CompetitorIDsWithEvidence: []string{"c1", "c2"}},
		}
	}

	t.Run("runs down", func(t *testing.T) {
		f := base()
		f.failRuns = true
		snap := LoadSnapshot(context.Background(), f.repos(), "p1")
		assert.Nil(t, snap.Run)
		assert.Len(t, snap.Competitors, 3, "other reads unaffected")
	})

	t.Run("competitors down", func(t *testing.T) {
		f := base()
		f.failCompetitors = true
		snap := LoadSnapshot(context.Background(), f.repos(), "p1")
		assert.Empty(t, snap.Competitors)
		assert.NotNil(t, snap.Run)
	})

	t.Run("artifacts down", func(t *testing.T) {
		f := base()
		f.failArtifacts = true
		snap := LoadSnapshot(context.Background(), f.repos(), "p1")
		assert.Zero(t, snap.Opportunities)
	})

	t.Run("evidence down", func(t *testing.T) {
		f := base()
		f.failEvidence = true
		snap := LoadSnapshot(context.Background(), f.repos(), "p1")
		assert.Nil(t, snap.Bundle)
	})

	t.Run("coverage down", func(t *testing.T) {
		f := base()
		f.failCoverage = true
		snap := LoadSnapshot(context.Background(), f.repos(), "p1")
		assert.Empty(t, snap.Coverage.CompetitorIDsWithEvidence)
	})
}

func TestGetDecisionRunState_EverythingDown(t *testing.T) {
	f := &fakeRepos{
		failRuns:        true,
		failCompetitors: true,
		failArtifacts:   true,
		failEvidence:    true,
		failCoverage:    true,
	}

	state := GetDecisionRunState(context.Background(), f.repos(), "p1")

	assert.Equal(t, model.RunStatusNone, state.RunStatus)
	assert.Equal(t, model.EvidenceNotStarted, state.EvidenceStatus)
	assert.Equal(t, model.OpportunitiesNone, state.OpportunitiesStatus)
	assert.Equal(t, model.RouteCompetitors, state.PrimaryRoute,
		"total store outage still yields a well-typed state")
}

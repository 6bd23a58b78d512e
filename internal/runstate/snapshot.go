package runstate

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scoutline/compete-cli/internal/model"
	"github.com/scoutline/compete-cli/internal/store"
)

// Repos bundles the upstream readers the snapshot loader pulls from. A full
// Store satisfies all of them.
type Repos struct {
	Runs        store.RunRepo
	Competitors store.CompetitorRepo
	Artifacts   store.ArtifactRepo
	Evidence    store.EvidenceRepo
	Coverage    store.CoverageLiteRepo
}

// LoadSnapshot fetches the state machine's inputs with unsynchronized
// parallel reads. Each read tolerates failure independently: a failed read
// is logged and replaced with its safe default, so derivation always gets a
// complete snapshot. No read-after-write consistency is assumed between the
// reads; transient mismatches resolve on the next poll.
func LoadSnapshot(ctx context.Context, repos Repos, projectID string) Snapshot {
	var snap Snapshot

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		run, err := repos.Runs.LatestRun(gCtx, projectID)
		if err != nil {
			zap.L().Warn("runstate: latest run read failed",
				zap.String("project_id", projectID), zap.Error(err))
			return nil
		}
		snap.Run = run
		return nil
	})

	g.Go(func() error {
		competitors, err := repos.Competitors.ListCompetitors(gCtx, projectID)
		if err != nil {
			zap.L().Warn("runstate: competitor list read failed",
				zap.String("project_id", projectID), zap.Error(err))
			return nil
		}
		snap.Competitors = competitors
		return nil
	})

	g.Go(func() error {
		counts, err := repos.Artifacts.OpportunityCounts(gCtx, projectID)
		if err != nil {
			zap.L().Warn("runstate: opportunity counts read failed",
				zap.String("project_id", projectID), zap.Error(err))
			return nil
		}
		snap.Opportunities = counts
		return nil
	})

	g.Go(func() error {
		bundle, err := repos.Evidence.LatestBundle(gCtx, projectID)
		if err != nil {
			zap.L().Warn("runstate: evidence bundle read failed",
				zap.String("project_id", projectID), zap.Error(err))
			return nil
		}
		snap.Bundle = bundle
		return nil
	})

	g.Go(func() error {
		coverage, err := repos.Coverage.CoverageLite(gCtx, projectID)
		if err != nil {
			zap.L().Warn("runstate: coverage read failed",
				zap.String("project_id", projectID), zap.Error(err))
			snap.Coverage = model.CoverageLite{}
			return nil
		}
		snap.Coverage = coverage
		return nil
	})

	// Reads never propagate errors; Wait only synchronizes.
	_ = g.Wait()

	return snap
}

// GetDecisionRunState loads a snapshot and derives the canonical state in
// one call. This is the entry point every consumer should use.
func GetDecisionRunState(ctx context.Context, repos Repos, projectID string) model.DecisionRunState {
	return DeriveState(projectID, LoadSnapshot(ctx, repos, projectID))
}

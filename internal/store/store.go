// Package store provides the persistence interfaces and implementations
// backing run-state derivation. Every reader is safe to fail independently:
// callers substitute empty defaults rather than aborting.
package store

import (
	"context"

	"github.com/scoutline/compete-cli/internal/model"
)

// RunRepo reads analysis runs.
type RunRepo interface {
	// LatestRun returns the most recent run for a project, or nil when the
	// project has never been run.
	LatestRun(ctx context.Context, projectID string) (*model.Run, error)
	// LatestRunningRun returns the most recent still-running run, or nil.
	LatestRunningRun(ctx context.Context, projectID string) (*model.Run, error)
}

// CompetitorRepo reads the tracked competitors of a project.
type CompetitorRepo interface {
	ListCompetitors(ctx context.Context, projectID string) ([]model.Competitor, error)
}

// ArtifactRepo reads generated analysis artifacts. Opportunity counts are
// pre-normalized per artifact generation; callers never parse artifact JSON.
type ArtifactRepo interface {
	OpportunityCounts(ctx context.Context, projectID string) (model.OpportunityCounts, error)
}

// EvidenceRepo reads collected evidence bundles.
type EvidenceRepo interface {
	// LatestBundle returns the most recent evidence bundle for a project,
	// or nil when none has been collected.
	LatestBundle(ctx context.Context, projectID string) (*model.EvidenceBundle, error)
}

// CoverageLiteRepo reads the cheap per-project coverage rollup.
type CoverageLiteRepo interface {
	CoverageLite(ctx context.Context, projectID string) (model.CoverageLite, error)
}

// EvidenceWriter records collector output: raw bundles and the coverage
// rollup derived from them.
type EvidenceWriter interface {
	SaveBundle(ctx context.Context, projectID string, bundle *model.EvidenceBundle) error
	SaveCoverage(ctx context.Context, projectID string, cov model.CoverageLite) error
}

// Store is the full persistence surface: every repository plus lifecycle.
type Store interface {
	RunRepo
	CompetitorRepo
	ArtifactRepo
	EvidenceRepo
	CoverageLiteRepo
	EvidenceWriter

	Migrate(ctx context.Context) error
	Close() error
}

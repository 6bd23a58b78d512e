package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/scoutline/compete-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. Narrowed so unit
// tests can substitute pgxmock.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	project_id   TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
	finished_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project_id, created_at DESC);

CREATE TABLE IF NOT EXISTS competitors (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	domain     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_competitors_project ON competitors(project_id);

CREATE TABLE IF NOT EXISTS artifacts (
	id                TEXT PRIMARY KEY,
	project_id        TEXT NOT NULL,
	kind              TEXT NOT NULL,
	opportunity_count INT NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_artifacts_project ON artifacts(project_id, kind, created_at DESC);

CREATE TABLE IF NOT EXISTS evidence_bundles (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_evidence_project ON evidence_bundles(project_id, created_at DESC);

CREATE TABLE IF NOT EXISTS evidence_coverage (
	project_id     TEXT PRIMARY KEY,
	competitor_ids JSONB NOT NULL DEFAULT '[]',
	types_present  JSONB NOT NULL DEFAULT '[]',
	is_sufficient  BOOLEAN NOT NULL DEFAULT false,
	reasons        JSONB NOT NULL DEFAULT '[]',
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// LatestRun returns the most recent run for a project, or nil when the
// project has never been run.
func (s *PostgresStore) LatestRun(ctx context.Context, projectID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, project_id, status, created_at, completed_at, finished_at
		 FROM runs WHERE project_id = $1 ORDER BY created_at DESC LIMIT 1`,
		projectID)

	run, err := scanRun(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: latest run")
	}
	return run, nil
}

// LatestRunningRun returns the most recent still-running run, or nil.
func (s *PostgresStore) LatestRunningRun(ctx context.Context, projectID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, project_id, status, created_at, completed_at, finished_at
		 FROM runs
		 WHERE project_id = $1
		   AND status NOT IN ('failed', 'complete', 'succeeded')
		   AND completed_at IS NULL AND finished_at IS NULL
		 ORDER BY created_at DESC LIMIT 1`,
		projectID)

	run, err := scanRun(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: latest running run")
	}
	return run, nil
}

func scanRun(row pgx.Row) (*model.Run, error) {
	var run model.Run
	err := row.Scan(&run.ID, &run.ProjectID, &run.Status, &run.CreatedAt,
		&run.CompletedAt, &run.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListCompetitors returns the tracked competitors of a project.
func (s *PostgresStore) ListCompetitors(ctx context.Context, projectID string) ([]model.Competitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, domain FROM competitors WHERE project_id = $1 ORDER BY name`,
		projectID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list competitors")
	}
	defer rows.Close()

	var competitors []model.Competitor
	for rows.Next() {
		var c model.Competitor
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain); err != nil {
			return nil, eris.Wrap(err, "postgres: scan competitor")
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate competitors")
	}
	return competitors, nil
}

// OpportunityCounts returns the latest pre-normalized opportunity count per
// artifact generation.
func (s *PostgresStore) OpportunityCounts(ctx context.Context, projectID string) (model.OpportunityCounts, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (kind) kind, opportunity_count
		 FROM artifacts
		 WHERE project_id = $1 AND kind IN ('opportunities_v3', 'opportunities_v2')
		 ORDER BY kind, created_at DESC`,
		projectID)
	if err != nil {
		return model.OpportunityCounts{}, eris.Wrap(err, "postgres: opportunity counts")
	}
	defer rows.Close()

	var counts model.OpportunityCounts
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return model.OpportunityCounts{}, eris.Wrap(err, "postgres: scan artifact")
		}
		switch kind {
		case "opportunities_v3":
			counts.V3 = n
		case "opportunities_v2":
			counts.V2 = n
		}
	}
	if err := rows.Err(); err != nil {
		return model.OpportunityCounts{}, eris.Wrap(err, "postgres: iterate artifacts")
	}
	return counts, nil
}

// LatestBundle returns the most recent evidence bundle, or nil when none
// has been collected.
func (s *PostgresStore) LatestBundle(ctx context.Context, projectID string) (*model.EvidenceBundle, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM evidence_bundles
		 WHERE project_id = $1 ORDER BY created_at DESC LIMIT 1`,
		projectID).Scan(&payload)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: latest bundle")
	}

	var bundle model.EvidenceBundle
	if err := json.Unmarshal(payload, &bundle); err != nil {
		return nil, eris.Wrap(err, "postgres: decode bundle")
	}
	return &bundle, nil
}

// CoverageLite returns the per-project coverage rollup, or its zero value
// when none has been recorded.
func (s *PostgresStore) CoverageLite(ctx context.Context, projectID string) (model.CoverageLite, error) {
	var (
		competitorIDs []byte
		typesPresent  []byte
		reasons       []byte
		cov           model.CoverageLite
	)
	err := s.pool.QueryRow(ctx,
		`SELECT competitor_ids, types_present, is_sufficient, reasons
		 FROM evidence_coverage WHERE project_id = $1`,
		projectID).Scan(&competitorIDs, &typesPresent, &cov.IsEvidenceSufficient, &reasons)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return model.CoverageLite{}, nil
		}
		return model.CoverageLite{}, eris.Wrap(err, "postgres: coverage lite")
	}

	for _, pair := range []struct {
		raw []byte
		out *[]string
	}{
		{competitorIDs, &cov.CompetitorIDsWithEvidence},
		{typesPresent, &cov.EvidenceTypesPresent},
		{reasons, &cov.ReasonsMissing},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.out); err != nil {
			return model.CoverageLite{}, eris.Wrap(err, "postgres: decode coverage")
		}
	}
	return cov, nil
}

// SaveBundle stores a newly collected evidence bundle.
func (s *PostgresStore) SaveBundle(ctx context.Context, projectID string, bundle *model.EvidenceBundle) error {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return eris.Wrap(err, "postgres: encode bundle")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO evidence_bundles (id, project_id, payload, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), projectID, payload, time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "postgres: save bundle")
	}
	return nil
}

// SaveCoverage upserts the per-project coverage rollup.
func (s *PostgresStore) SaveCoverage(ctx context.Context, projectID string, cov model.CoverageLite) error {
	competitorIDs, err := json.Marshal(orEmpty(cov.CompetitorIDsWithEvidence))
	if err != nil {
		return eris.Wrap(err, "postgres: encode coverage")
	}
	typesPresent, err := json.Marshal(orEmpty(cov.EvidenceTypesPresent))
	if err != nil {
		return eris.Wrap(err, "postgres: encode coverage")
	}
	reasons, err := json.Marshal(orEmpty(cov.ReasonsMissing))
	if err != nil {
		return eris.Wrap(err, "postgres: encode coverage")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO evidence_coverage (project_id, competitor_ids, types_present, is_sufficient, reasons, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (project_id) DO UPDATE SET
		   competitor_ids = EXCLUDED.competitor_ids,
		   types_present  = EXCLUDED.types_present,
		   is_sufficient  = EXCLUDED.is_sufficient,
		   reasons        = EXCLUDED.reasons,
		   updated_at     = EXCLUDED.updated_at`,
		projectID, competitorIDs, typesPresent, cov.IsEvidenceSufficient, reasons, time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "postgres: save coverage")
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/scoutline/compete-cli/internal/model"
)

// SQLiteStore implements Store on an embedded SQLite database. Used for
// local single-user setups and tests; ":memory:" works as a path.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// The driver is not safe for concurrent writers on one connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: ping")
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	project_id   TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	created_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP,
	finished_at  TIMESTAMP
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
	opportunity_count INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_artifacts_project ON artifacts(project_id, kind, created_at DESC);

CREATE TABLE IF NOT EXISTS evidence_bundles (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evidence_project ON evidence_bundles(project_id, created_at DESC);

CREATE TABLE IF NOT EXISTS evidence_coverage (
	project_id     TEXT PRIMARY KEY,
	competitor_ids TEXT NOT NULL DEFAULT '[]',
	types_present  TEXT NOT NULL DEFAULT '[]',
	is_sufficient  INTEGER NOT NULL DEFAULT 0,
	reasons        TEXT NOT NULL DEFAULT '[]',
	updated_at     TIMESTAMP NOT NULL
);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for seeding in tests and tooling.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) LatestRun(ctx context.Context, projectID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, status, created_at, completed_at, finished_at
		 FROM runs WHERE project_id = ? ORDER BY created_at DESC LIMIT 1`,
		projectID)

	run, err := scanSQLRun(row)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: latest run")
	}
	return run, nil
}

func (s *SQLiteStore) LatestRunningRun(ctx context.Context, projectID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, status, created_at, completed_at, finished_at
		 FROM runs
		 WHERE project_id = ?
		   AND status NOT IN ('failed', 'complete', 'succeeded')
		   AND completed_at IS NULL AND finished_at IS NULL
		 ORDER BY created_at DESC LIMIT 1`,
		projectID)

	run, err := scanSQLRun(row)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: latest running run")
	}
	return run, nil
}

func scanSQLRun(row *sql.Row) (*model.Run, error) {
	var (
		run         model.Run
		completedAt sql.NullTime
		finishedAt  sql.NullTime
	)
	err := row.Scan(&run.ID, &run.ProjectID, &run.Status, &run.CreatedAt,
		&completedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return &run, nil
}

func (s *SQLiteStore) ListCompetitors(ctx context.Context, projectID string) ([]model.Competitor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, domain FROM competitors WHERE project_id = ? ORDER BY name`,
		projectID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list competitors")
	}
	defer rows.Close()

	var competitors []model.Competitor
	for rows.Next() {
		var c model.Competitor
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan competitor")
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate competitors")
	}
	return competitors, nil
}

func (s *SQLiteStore) OpportunityCounts(ctx context.Context, projectID string) (model.OpportunityCounts, error) {
	var counts model.OpportunityCounts
	for _, q := range []struct {
		kind string
		out  *int
	}{
		{"opportunities_v3", &counts.V3},
		{"opportunities_v2", &counts.V2},
	} {
		err := s.db.QueryRowContext(ctx,
			`SELECT opportunity_count FROM artifacts
			 WHERE project_id = ? AND kind = ?
			 ORDER BY created_at DESC LIMIT 1`,
			projectID, q.kind).Scan(q.out)
		if err != nil && !eris.Is(err, sql.ErrNoRows) {
			return model.OpportunityCounts{}, eris.Wrap(err, "sqlite: opportunity counts")
		}
	}
	return counts, nil
}

func (s *SQLiteStore) LatestBundle(ctx context.Context, projectID string) (*model.EvidenceBundle, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM evidence_bundles
		 WHERE project_id = ? ORDER BY created_at DESC LIMIT 1`,
		projectID).Scan(&payload)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: latest bundle")
	}

	var bundle model.EvidenceBundle
	if err := json.Unmarshal(payload, &bundle); err != nil {
		return nil, eris.Wrap(err, "sqlite: decode bundle")
	}
	return &bundle, nil
}

func (s *SQLiteStore) CoverageLite(ctx context.Context, projectID string) (model.CoverageLite, error) {
	var (
		competitorIDs []byte
		typesPresent  []byte
		reasons       []byte
		cov           model.CoverageLite
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT competitor_ids, types_present, is_sufficient, reasons
		 FROM evidence_coverage WHERE project_id = ?`,
		projectID).Scan(&competitorIDs, &typesPresent, &cov.IsEvidenceSufficient, &reasons)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return model.CoverageLite{}, nil
		}
		return model.CoverageLite{}, eris.Wrap(err, "sqlite: coverage lite")
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
			return model.CoverageLite{}, eris.Wrap(err, "sqlite: decode coverage")
		}
	}
	return cov, nil
}

func (s *SQLiteStore) SaveBundle(ctx context.Context, projectID string, bundle *model.EvidenceBundle) error {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return eris.Wrap(err, "sqlite: encode bundle")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evidence_bundles (id, project_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), projectID, string(payload), time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "sqlite: save bundle")
	}
	return nil
}

func (s *SQLiteStore) SaveCoverage(ctx context.Context, projectID string, cov model.CoverageLite) error {
	competitorIDs, err := json.Marshal(orEmpty(cov.CompetitorIDsWithEvidence))
	if err != nil {
		return eris.Wrap(err, "sqlite: encode coverage")
	}
	typesPresent, err := json.Marshal(orEmpty(cov.EvidenceTypesPresent))
	if err != nil {
		return eris.Wrap(err, "sqlite: encode coverage")
	}
	reasons, err := json.Marshal(orEmpty(cov.ReasonsMissing))
	if err != nil {
		return eris.Wrap(err, "sqlite: encode coverage")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evidence_coverage (project_id, competitor_ids, types_present, is_sufficient, reasons, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (project_id) DO UPDATE SET
		   competitor_ids = excluded.competitor_ids,
		   types_present  = excluded.types_present,
		   is_sufficient  = excluded.is_sufficient,
		   reasons        = excluded.reasons,
		   updated_at     = excluded.updated_at`,
		projectID, string(competitorIDs), string(typesPresent), cov.IsEvidenceSufficient,
		string(reasons), time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "sqlite: save coverage")
	}
	return nil
}

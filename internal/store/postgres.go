package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/urbanform/walkability/internal/db"
	"github.com/urbanform/walkability/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":   `INSERT INTO runs (id, status, config, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"complete_run": `UPDATE runs SET status = $1, stats = $2, updated_at = $3 WHERE id = $4`,
	"fail_run":     `UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
	"get_run":      `SELECT id, status, config, stats, error, created_at, updated_at FROM runs WHERE id = $1`,
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

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'running',
	config     JSONB,
	stats      JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS segments (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	path_id         TEXT NOT NULL,
	category        TEXT NOT NULL,
	rating          DOUBLE PRECISION NOT NULL,
	surface_quality TEXT NOT NULL,
	included        BOOLEAN NOT NULL,
	connectivity    DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, path_id)
);

CREATE TABLE IF NOT EXISTS cells (
	run_id        TEXT NOT NULL REFERENCES runs(id),
	q             INTEGER NOT NULL,
	r             INTEGER NOT NULL,
	detour_factor DOUBLE PRECISION,
	walkable      BOOLEAN NOT NULL,
	displayed     BOOLEAN NOT NULL,
	PRIMARY KEY (run_id, q, r)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_segments_run_id ON segments(run_id);
CREATE INDEX IF NOT EXISTS idx_cells_run_id ON cells(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, runID string, config json.RawMessage) (*model.Run, error) {
	now := time.Now().UTC()

	var configArg any
	if len(config) > 0 {
		configArg = []byte(config)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, status, config, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		runID, string(model.RunStatusRunning), configArg, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert run %s", runID)
	}

	return &model.Run{
		ID:        runID,
		Status:    model.RunStatusRunning,
		Config:    config,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, stats *model.RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stats")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, stats = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusComplete), statsJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var configJSON, statsJSON []byte
	var errMsg *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, status, config, stats, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Status, &configJSON, &statsJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if len(configJSON) > 0 {
		r.Config = json.RawMessage(configJSON)
	}
	if len(statsJSON) > 0 {
		r.Stats = &model.RunStats{}
		if err := json.Unmarshal(statsJSON, r.Stats); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal stats")
		}
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, status, config, stats, error, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var configJSON, statsJSON []byte
		var errMsg *string
		if err := rows.Scan(&r.ID, &r.Status, &configJSON, &statsJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if len(configJSON) > 0 {
			r.Config = json.RawMessage(configJSON)
		}
		if len(statsJSON) > 0 {
			r.Stats = &model.RunStats{}
			if err := json.Unmarshal(statsJSON, r.Stats); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal stats")
			}
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveSegments(ctx context.Context, runID string, segments []model.Segment) error {
	rows := make([][]any, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, []any{
			runID, seg.PathID, seg.Category, seg.Rating, seg.SurfaceQuality, seg.Included, seg.Connectivity,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "segments",
		[]string{"run_id", "path_id", "category", "rating", "surface_quality", "included", "connectivity"},
		rows,
	)
	return eris.Wrapf(err, "postgres: save segments %s", runID)
}

func (s *PostgresStore) SaveCells(ctx context.Context, runID string, cells []model.Cell) error {
	rows := make([][]any, 0, len(cells))
	for _, cell := range cells {
		rows = append(rows, []any{
			runID, cell.Q, cell.R, cell.DetourFactor, cell.Walkable, cell.Displayed,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "cells",
		[]string{"run_id", "q", "r", "detour_factor", "walkable", "displayed"},
		rows,
	)
	return eris.Wrapf(err, "postgres: save cells %s", runID)
}

func (s *PostgresStore) GetSegments(ctx context.Context, runID string) ([]model.Segment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, path_id, category, rating, surface_quality, included, connectivity
		 FROM segments WHERE run_id = $1 ORDER BY path_id`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get segments %s", runID)
	}
	defer rows.Close()

	var segments []model.Segment
	for rows.Next() {
		var seg model.Segment
		if err := rows.Scan(&seg.RunID, &seg.PathID, &seg.Category, &seg.Rating, &seg.SurfaceQuality, &seg.Included, &seg.Connectivity); err != nil {
			return nil, eris.Wrap(err, "postgres: scan segment")
		}
		segments = append(segments, seg)
	}
	return segments, eris.Wrap(rows.Err(), "postgres: segments iterate")
}

func (s *PostgresStore) GetCells(ctx context.Context, runID string) ([]model.Cell, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, q, r, detour_factor, walkable, displayed
		 FROM cells WHERE run_id = $1 ORDER BY q, r`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get cells %s", runID)
	}
	defer rows.Close()

	var cells []model.Cell
	for rows.Next() {
		var cell model.Cell
		if err := rows.Scan(&cell.RunID, &cell.Q, &cell.R, &cell.DetourFactor, &cell.Walkable, &cell.Displayed); err != nil {
			return nil, eris.Wrap(err, "postgres: scan cell")
		}
		cells = append(cells, cell)
	}
	return cells, eris.Wrap(rows.Err(), "postgres: cells iterate")
}

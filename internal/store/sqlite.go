package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/urbanform/walkability/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'running',
	config     TEXT,
	stats      TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS segments (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	path_id         TEXT NOT NULL,
	category        TEXT NOT NULL,
	rating          REAL NOT NULL,
	surface_quality TEXT NOT NULL,
	included        INTEGER NOT NULL,
	connectivity    REAL NOT NULL,
	PRIMARY KEY (run_id, path_id)
);

CREATE TABLE IF NOT EXISTS cells (
	run_id        TEXT NOT NULL REFERENCES runs(id),
	q             INTEGER NOT NULL,
	r             INTEGER NOT NULL,
	detour_factor REAL,
	walkable      INTEGER NOT NULL,
	displayed     INTEGER NOT NULL,
	PRIMARY KEY (run_id, q, r)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_segments_run_id ON segments(run_id);
CREATE INDEX IF NOT EXISTS idx_cells_run_id ON cells(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, runID string, config json.RawMessage) (*model.Run, error) {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, config, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, string(model.RunStatusRunning), nullableJSON(config), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert run %s", runID)
	}

	return &model.Run{
		ID:        runID,
		Status:    model.RunStatusRunning,
		Config:    config,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, stats *model.RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stats")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, stats = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), string(statsJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, config, stats, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, status, config, stats, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveSegments(ctx context.Context, runID string, segments []model.Segment) error {
	if len(segments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segments (run_id, path_id, category, rating, surface_quality, included, connectivity)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare segment insert")
	}
	defer stmt.Close()

	for _, seg := range segments {
		if _, err := stmt.ExecContext(ctx,
			runID, seg.PathID, seg.Category, seg.Rating, seg.SurfaceQuality, seg.Included, seg.Connectivity,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert segment %s", seg.PathID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit segments")
}

func (s *SQLiteStore) SaveCells(ctx context.Context, runID string, cells []model.Cell) error {
	if len(cells) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cells (run_id, q, r, detour_factor, walkable, displayed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare cell insert")
	}
	defer stmt.Close()

	for _, cell := range cells {
		if _, err := stmt.ExecContext(ctx,
			runID, cell.Q, cell.R, cell.DetourFactor, cell.Walkable, cell.Displayed,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert cell %d/%d", cell.Q, cell.R)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit cells")
}

func (s *SQLiteStore) GetSegments(ctx context.Context, runID string) ([]model.Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path_id, category, rating, surface_quality, included, connectivity
		 FROM segments WHERE run_id = ? ORDER BY path_id`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get segments %s", runID)
	}
	defer rows.Close()

	var segments []model.Segment
	for rows.Next() {
		var seg model.Segment
		if err := rows.Scan(&seg.RunID, &seg.PathID, &seg.Category, &seg.Rating, &seg.SurfaceQuality, &seg.Included, &seg.Connectivity); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan segment")
		}
		segments = append(segments, seg)
	}
	return segments, eris.Wrap(rows.Err(), "sqlite: segments iterate")
}

func (s *SQLiteStore) GetCells(ctx context.Context, runID string) ([]model.Cell, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, q, r, detour_factor, walkable, displayed
		 FROM cells WHERE run_id = ? ORDER BY q, r`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get cells %s", runID)
	}
	defer rows.Close()

	var cells []model.Cell
	for rows.Next() {
		var cell model.Cell
		if err := rows.Scan(&cell.RunID, &cell.Q, &cell.R, &cell.DetourFactor, &cell.Walkable, &cell.Displayed); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cell")
		}
		cells = append(cells, cell)
	}
	return cells, eris.Wrap(rows.Err(), "sqlite: cells iterate")
}

// helpers

func nullableJSON(data json.RawMessage) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var configJSON, statsJSON, errMsg sql.NullString

	err := row.Scan(&r.ID, &r.Status, &configJSON, &statsJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if configJSON.Valid {
		r.Config = json.RawMessage(configJSON.String)
	}
	if statsJSON.Valid {
		r.Stats = &model.RunStats{}
		if err := json.Unmarshal([]byte(statsJSON.String), r.Stats); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal stats")
		}
	}
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	return &r, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/rarity/pkg/rarity/internalerr"
	"github.com/cognicore/rarity/pkg/rarity/rank"
	"github.com/cognicore/rarity/pkg/rarity/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and creates the schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	algorithm TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	token_count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_collection ON runs(collection, algorithm, created_at);

CREATE TABLE IF NOT EXISTS run_tokens (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	token_id TEXT NOT NULL,
	score REAL,
	rank INTEGER NOT NULL,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_tokens_token ON run_tokens(run_id, token_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun writes a run and its ranked tokens in one transaction,
// replacing any run with the same id.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("run id required: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_tokens WHERE run_id = ?`, r.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, collection, algorithm, created_at, token_count)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	collection=excluded.collection,
	algorithm=excluded.algorithm,
	created_at=excluded.created_at,
	token_count=excluded.token_count;
`, r.ID, r.Collection, r.Algorithm, r.CreatedAt.UTC().UnixNano(), len(r.Tokens))
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_tokens (run_id, position, token_id, score, rank)
VALUES (?, ?, ?, ?, ?);
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range r.Tokens {
		if _, err := stmt.ExecContext(ctx, r.ID, i, t.ID, scoreValue(t.Score), t.Rank); err != nil {
			return fmt.Errorf("insert token %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run with its ranked tokens in rank order
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `
SELECT id, collection, algorithm, created_at, token_count
FROM runs
WHERE id = ?;
`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT token_id, score, rank
FROM run_tokens
WHERE run_id = ?
ORDER BY position;
`, id)
	if err != nil {
		return store.Run{}, err
	}
	defer rows.Close()

	r.Tokens = make([]rank.RankedToken, 0, r.TokenCount)
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return store.Run{}, err
		}
		r.Tokens = append(r.Tokens, t)
	}
	return r, rows.Err()
}

// LatestRun returns the newest run for a collection and algorithm
func (s *sqliteStore) LatestRun(ctx context.Context, collection, algorithm string) (store.Run, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
SELECT id FROM runs
WHERE collection = ? AND algorithm = ?
ORDER BY created_at DESC, id DESC
LIMIT 1;
`, collection, algorithm).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}

	r, err := s.GetRun(ctx, id)
	if err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

// ListRuns returns run summaries for a collection, newest first
func (s *sqliteStore) ListRuns(ctx context.Context, collection string, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, collection, algorithm, created_at, token_count
FROM runs
WHERE collection = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, collection, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// TokenRank looks up a single token in a run
func (s *sqliteStore) TokenRank(ctx context.Context, runID, tokenID string) (rank.RankedToken, error) {
	t, err := scanToken(s.db.QueryRowContext(ctx, `
SELECT token_id, score, rank
FROM run_tokens
WHERE run_id = ? AND token_id = ?
ORDER BY position
LIMIT 1;
`, runID, tokenID))
	if errors.Is(err, sql.ErrNoRows) {
		return rank.RankedToken{}, fmt.Errorf("token %s in run %s: %w", tokenID, runID, internalerr.ErrNotFound)
	}
	return t, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (store.Run, error) {
	var r store.Run
	var createdAt int64
	if err := row.Scan(&r.ID, &r.Collection, &r.Algorithm, &createdAt, &r.TokenCount); err != nil {
		return store.Run{}, err
	}
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return r, nil
}

func scanToken(row scanner) (rank.RankedToken, error) {
	var t rank.RankedToken
	var sc sql.NullFloat64
	if err := row.Scan(&t.ID, &sc, &t.Rank); err != nil {
		return rank.RankedToken{}, err
	}
	t.Score = math.NaN()
	if sc.Valid {
		t.Score = sc.Float64
	}
	return t, nil
}

// scoreValue stores NaN as NULL, which SQLite would do anyway
func scoreValue(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// Package sqlite persists run records in a SQLite database so that run
// history survives process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/viant/simrun/model"
	"github.com/viant/simrun/service/dao"
	"github.com/viant/simrun/service/dao/criteria"
)

const schema = `CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	pool_size INTEGER NOT NULL,
	iterations INTEGER NOT NULL,
	shards INTEGER NOT NULL,
	result TEXT,
	error TEXT,
	started_at DATETIME NOT NULL,
	ended_at DATETIME
)`

const selectRun = `SELECT run_id, state, pool_size, iterations, shards, result, error, started_at, ended_at FROM runs`

// Service implements dao.Service for run records on SQLite.
type Service struct {
	db *sql.DB
}

var _ dao.Service[string, model.Run] = (*Service)(nil)

// New opens (and migrates) the database identified by dsn, e.g. "runs.db"
// or ":memory:".
func New(dsn string) (*Service, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to an in-memory database is a separate database
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	ret := &Service{db: db}
	if err = ret.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return ret, nil
}

func (s *Service) migrate() error {
	for _, statement := range []string{
		schema,
		`CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state, started_at)`,
	} {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Service) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a run record.
func (s *Service) Save(ctx context.Context, run *model.Run) error {
	if run == nil {
		return dao.ErrNilEntity
	}
	if run.ID == "" {
		return dao.ErrInvalidID
	}
	var result, runErr sql.NullString
	if run.Result != nil {
		data, err := json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("failed to encode run %v result: %w", run.ID, err)
		}
		result = sql.NullString{String: string(data), Valid: true}
	}
	if run.Error != "" {
		runErr = sql.NullString{String: run.Error, Valid: true}
	}
	var endedAt sql.NullTime
	if run.EndedAt != nil {
		endedAt = sql.NullTime{Time: *run.EndedAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs (run_id, state, pool_size, iterations, shards, result, error, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET state = excluded.state, pool_size = excluded.pool_size,
			iterations = excluded.iterations, shards = excluded.shards, result = excluded.result,
			error = excluded.error, started_at = excluded.started_at, ended_at = excluded.ended_at`,
		run.ID, run.State, run.PoolSize, run.Iterations, run.Shards, result, runErr, run.StartedAt, endedAt)
	if err != nil {
		return fmt.Errorf("failed to save run %v: %w", run.ID, err)
	}
	return nil
}

// Load returns the run record.
func (s *Service) Load(ctx context.Context, id string) (*model.Run, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	run, err := scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dao.ErrNotFound
	}
	return run, err
}

// Delete removes the run record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %v: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return dao.ErrNotFound
	}
	return nil
}

// List returns run records matching parameters, oldest first.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Run, error) {
	query := selectRun
	var args []interface{}
	if states, ok := criteria.States(parameters); ok {
		if len(states) == 0 {
			return []*model.Run{}, nil
		}
		placeholders := make([]string, len(states))
		for i, state := range states {
			placeholders[i] = "?"
			args = append(args, state)
		}
		query += ` WHERE state IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY started_at, run_id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()
	ret := []*model.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, run)
	}
	return ret, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*model.Run, error) {
	run := &model.Run{}
	var result, runErr sql.NullString
	var endedAt sql.NullTime
	if err := row.Scan(&run.ID, &run.State, &run.PoolSize, &run.Iterations, &run.Shards, &result, &runErr, &run.StartedAt, &endedAt); err != nil {
		return nil, err
	}
	if result.Valid {
		run.Result = &model.Aggregate{}
		if err := json.Unmarshal([]byte(result.String), run.Result); err != nil {
			return nil, fmt.Errorf("failed to decode run %v result: %w", run.ID, err)
		}
	}
	run.Error = runErr.String
	if endedAt.Valid {
		ended := endedAt.Time
		run.EndedAt = &ended
	}
	return run, nil
}
